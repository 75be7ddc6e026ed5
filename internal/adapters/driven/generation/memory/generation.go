// Package memory provides a canned-response generation service for
// development mode and tests.
package memory

import (
	"context"

	"github.com/lifeodyssey/recruitreply/internal/core/ports/driven"
)

var _ driven.GenerationService = (*GenerationService)(nil)

// GenerationService returns a fixed answer regardless of the prompt.
type GenerationService struct {
	answer string
}

// NewGenerationService creates a generation service that always
// returns answer. An empty answer gets a sensible placeholder.
func NewGenerationService(answer string) *GenerationService {
	if answer == "" {
		answer = "This is a development-mode answer; no language model is configured."
	}
	return &GenerationService{answer: answer}
}

// Generate returns the canned answer.
func (s *GenerationService) Generate(_ context.Context, _ string, _ driven.GenerateOptions) (string, error) {
	return s.answer, nil
}

// ModelName returns a fixed identifier.
func (s *GenerationService) ModelName() string {
	return "memory-canned"
}

// Ping always succeeds.
func (s *GenerationService) Ping(_ context.Context) error {
	return nil
}

// Close releases resources.
func (s *GenerationService) Close() error {
	return nil
}
