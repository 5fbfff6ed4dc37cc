// Package sync defines the outbound ports for the remote record sheet and
// the factory that selects an adapter.
package sync

import (
	"context"

	"ridelog/internal/core"
)

// Ports for outbound adapters.
type (
	// RecordPuller fetches the full remote collection. Adapters coerce
	// whatever the remote serves into records with defaulted numeric
	// fields; a pull never fails on a malformed cell, only on transport.
	RecordPuller interface {
		Pull(ctx context.Context) ([]core.Record, error)
	}

	// RecordPusher appends one record to the remote sheet. The remote is
	// append-only from this side; reconciliation happens on the next pull.
	RecordPusher interface {
		Push(ctx context.Context, r core.Record) error
	}

	// Backend is a full remote adapter.
	Backend interface {
		RecordPuller
		RecordPusher
	}
)
