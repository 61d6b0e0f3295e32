package service

import (
	"context"
	"time"
)

// Clock supplies the current time; injectable for tests.
type Clock func() time.Time

// TxRunner executes fn inside a store transaction. Implemented by
// persistence.Mongo; tests substitute a pass-through.
type TxRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Lease is the per-request advisory lock taken around dispatch
// read-modify-write cycles. Implemented by persistence.RequestLease.
type Lease interface {
	Acquire(ctx context.Context, requestID string) (string, error)
	Release(ctx context.Context, requestID, token string) error
}
