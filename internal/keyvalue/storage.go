package keyvalue

import (
	"context"
	"errors"
)

// ErrClosed is returned when a storage is used after Close.
var ErrClosed = errors.New("key-value storage is closed")

// Storage is a persistent key-value store with atomic multi-key writes.
type Storage interface {
	// Get returns the value stored under key.
	// The boolean is false if the key is absent.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// GetMany reads several keys from one consistent view of the storage,
	// so a concurrent Apply is seen either entirely or not at all. Absent
	// keys are left out of the result.
	GetMany(ctx context.Context, keys ...string) (map[string][]byte, error)

	// Apply performs every operation in the batch atomically.
	// Either all operations are visible afterwards or none are.
	Apply(ctx context.Context, batch *Batch) error

	// Close releases the storage.
	Close() error
}

// opKind distinguishes puts from deletes inside a Batch.
type opKind int

const (
	opPut opKind = iota
	opDelete
)

// op is a single operation inside a Batch.
type op struct {
	kind  opKind
	key   string
	value []byte
}

// Batch collects puts and deletes to be applied atomically.
type Batch struct {
	ops []op
}

// NewBatch creates an empty batch.
func NewBatch() *Batch {
	return &Batch{}
}

// Put records a write of value under key.
func (b *Batch) Put(key string, value []byte) *Batch {
	v := make([]byte, len(value))
	copy(v, value)
	b.ops = append(b.ops, op{kind: opPut, key: key, value: v})
	return b
}

// Delete records a removal of key.
func (b *Batch) Delete(key string) *Batch {
	b.ops = append(b.ops, op{kind: opDelete, key: key})
	return b
}

// Len returns the number of recorded operations.
func (b *Batch) Len() int {
	return len(b.ops)
}
