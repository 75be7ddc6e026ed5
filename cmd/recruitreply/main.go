// Command recruitreply runs the document ingestion and retrieval
// service.
package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/lifeodyssey/recruitreply/internal/adapters/driving/cli"
)

func main() {
	// Optional; real deployments set environment variables directly.
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
