// Package store persists collection snapshots for later querying and for
// multi-machine viewer deployments.
//
// Three backends are provided:
//   - file: timestamped JSON files in a directory (CLI default)
//   - redis: the latest snapshot under a single key, for viewers that
//     always want the current state of a host
//   - mongo: full snapshot history in a collection
//
// The engine itself never reads a store during collection — a snapshot is
// rebuilt from scratch on every run and published afterwards.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/pacscope/pacscope/pkg/snapshot"
)

// ErrNoSnapshot is returned by Latest when the store holds no snapshot.
var ErrNoSnapshot = errors.New("no snapshot available")

// Meta summarizes one stored snapshot for listings.
type Meta struct {
	ID        string    `json:"id" bson:"_id"`
	Hostname  string    `json:"hostname" bson:"hostname"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
	Packages  int       `json:"packages" bson:"packages"`
}

// Store is the interface for snapshot persistence backends.
type Store interface {
	// Save persists a snapshot.
	Save(ctx context.Context, s *snapshot.Snapshot) error

	// Latest returns the most recently saved snapshot, or ErrNoSnapshot.
	Latest(ctx context.Context) (*snapshot.Snapshot, error)

	// Get returns the snapshot with the given envelope ID, or
	// ErrNoSnapshot when no stored snapshot has it.
	Get(ctx context.Context, id string) (*snapshot.Snapshot, error)

	// List returns summaries of the stored snapshots, newest first.
	List(ctx context.Context) ([]Meta, error)

	// Close releases backend resources.
	Close(ctx context.Context) error
}

func metaOf(s *snapshot.Snapshot) Meta {
	return Meta{
		ID:        s.ID,
		Hostname:  s.Hostname,
		Timestamp: s.Timestamp,
		Packages:  len(s.Packages),
	}
}
