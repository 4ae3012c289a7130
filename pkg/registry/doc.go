// Package registry holds the in-memory presence record store shared by
// both transport adapters and the reaper. It has no transport or protocol
// knowledge beyond the non-owning connection handle stored per push record.
package registry
