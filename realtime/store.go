// Package realtime provides the live-sync layer of the dashboard: a
// path-addressable snapshot store with subscribe/publish semantics, plus a
// WebSocket hub that fans snapshots out to browser clients.
//
// Every publish replaces the full value at a path and delivers that full value
// to all subscribers of the path (snapshot semantics, no diffs). Subscribers
// also receive the current value immediately on subscribe when one exists.
package realtime

import (
	"context"
)

// Snapshot is the full JSON-encoded value at a path.
type Snapshot []byte

// UnsubscribeFunc detaches a subscription. Safe to call more than once.
type UnsubscribeFunc func()

// Store is the observation service the flows publish through. Flows depend on
// this interface only, never on a concrete backend, so tests substitute the
// in-memory implementation.
type Store interface {
	// Subscribe registers fn for the path. If a value is already present it is
	// delivered before Subscribe returns.
	Subscribe(path string, fn func(Snapshot)) UnsubscribeFunc

	// Publish replaces the value at path and notifies all subscribers with the
	// new full value. The value is JSON-encoded by the store.
	Publish(ctx context.Context, path string, value any) error
}
