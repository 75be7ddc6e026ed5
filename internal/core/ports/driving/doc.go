// Package driving provides interfaces for inbound adapters (primary ports).
//
// The HTTP API and the CLI depend on these interfaces; the service
// implementations live in internal/core/services.
package driving
