// Package blobstore reads and writes whole JSON documents in an object
// store. It never invents content: a missing key is reported as ErrNotFound
// and callers decide what that means. Failures are not retried here.
package blobstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no object exists under the key.
var ErrNotFound = errors.New("blob not found")

// Object is a stored document together with the version token the store
// assigned to it (the ETag on S3).
type Object struct {
	Data    []byte
	Version string
}

// PutOptions make a write conditional.
//
// IfMatch: only replace the object if its current version equals the value.
// IfNoneMatch: only create the object if nothing exists under the key.
// A failed precondition is reported as common.ErrStaleWrite.
type PutOptions struct {
	IfMatch     string
	IfNoneMatch bool
}

// Store is the contract every backend satisfies. Other errors wrap
// common.ErrStoreUnavailable.
type Store interface {
	Get(ctx context.Context, key string) (*Object, error)
	Put(ctx context.Context, key string, data []byte, opts PutOptions) (string, error)
	Ping(ctx context.Context) error
}
