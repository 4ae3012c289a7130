// Package errors provides standardized error definitions for the presence
// relay. All error definitions are centralized here to ensure consistency
// across the transport adapters, registry, and reaper.
package errors
