// Package session runs one navigation session as a single-writer event loop.
//
// A Session owns the navigation state store, the map viewport controller and
// the loaded facility and room sets. Everything that can change them (user
// input, location changes, facility loads, timers) arrives as a Command on
// one FIFO queue and is applied on one goroutine:
//
//	Enqueue(cmd) ──► queue ──► Run / Step ──► navstate.Store ──► History
//	                   ▲                     │
//	clock timers ──────┘                     └──► viewport.Controller ──► Camera
//
// After every command the session notifies the viewport of the current
// selection and publishes an immutable View with the filtered map and
// directory results. Snapshot is safe from any goroutine.
//
// Timers armed by the store (search settle, guard windows) never run on the
// clock's goroutine: the session's clock wraps each callback in a command,
// so they are serialized with everything else.
//
// Thread-safety model:
//   - Enqueue, Submit, Snapshot, Load: safe from any goroutine
//   - Run: must be called from exactly one goroutine
//   - Step: for tests and the harness, instead of Run
package session
