// Package protocol defines the message envelope exchanged with push
// connections. It provides the typed message structures, constructors,
// and a parse step that validates frames before any handler logic runs.
package protocol
