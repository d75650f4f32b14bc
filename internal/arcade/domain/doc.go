// Package domain defines the core entities of the arcade client engine:
// game sessions, seats, boards, phases, and outcomes. The ledger is the
// source of truth for all of them; this package only models that truth
// and the small amount of client-side bookkeeping (pending actions,
// ephemeral selections) layered on top of it.
package domain
