package feed

import "github.com/gxscan/gxscan/internal/token"

// Event is delivered on the actor's outbound channel. Events are
// emitted in order by a single goroutine: a ConnectionStatus for one
// epoch never interleaves with batches of a later epoch.
type Event interface{ feedEvent() }

// ConnectionStatus reports a connection-state transition. Epoch
// increments once per established connection so consumers can discard
// stale disconnect notices.
type ConnectionStatus struct {
	Connected bool
	Err       string
	Epoch     uint64
}

// Batch carries coalesced records decoded from the wire. Exactly one
// Batch is emitted per flush window.
type Batch struct {
	Records []token.Record
	Epoch   uint64
}

func (ConnectionStatus) feedEvent() {}
func (Batch) feedEvent()            {}

type commandKind int

// Close is not a command: it cancels the actor context directly so a
// reconnect backoff in progress terminates too.
const (
	cmdInit commandKind = iota
	cmdRequestInitial
)

type command struct {
	kind commandKind
	url  string
}
