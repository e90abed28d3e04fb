// Package navstate owns the shared navigation state of one browsing session:
// the selected facility, the pending facility id, the search text (raw and
// settled), the category filter and the active tab.
//
// ARCHITECTURE:
//
// Single funnel of mutation:
// Store is the only writer. Views read immutable snapshots from State() and
// request changes through the named transition methods. Every transition is
// followed by an explicit reconcile step (resolve pending selection, then
// sync state to the URL) instead of reactive effects.
//
// Requested vs confirmed selection:
// A selection is first requested (PendingFacilityID) and only becomes the
// SelectedFacility once a loaded facility with that id is confirmed. Facility
// data and navigation intent (deep links, back/forward) arrive independently
// and in any order; splitting the two lets late data resolve an earlier
// request without the navigation layer blocking or retrying.
//
// GUARDS:
//
// Closing guard: raised for a short window after the user clears the
// selection. While up, system-driven resolution and URL-driven selection
// changes are ignored so a late async result cannot reopen what the user
// just closed.
//
// Navigation guard: raised when the store issues its own route change. While
// up, state-to-URL sync is suppressed and location events are treated as the
// store's own navigation. It drops when the location reaches the recorded
// target (or after a timeout if the route never commits).
//
// Last-synced marker: the URL state the store itself last wrote. Incoming
// location fields equal to it are echoes of our own writes and are not
// re-applied, which breaks the state -> URL -> state loop.
//
// Store is not safe for concurrent use. session.Session drives it from a
// single goroutine and delivers timer callbacks on that goroutine.
package navstate
