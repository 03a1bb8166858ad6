package repository

import (
	"context"
	"errors"
	"sync"
)

// ErrSlotEmpty is returned by Get when nothing is stored under the key.
var ErrSlotEmpty = errors.New("slot empty")

// SlotRepository is durable single-value key storage for session state.
type SlotRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	// Delete is idempotent: deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

type memorySlotRepository struct {
	mu    sync.RWMutex
	slots map[string]string
}

// NewMemorySlotRepository returns a process-local implementation.
func NewMemorySlotRepository() SlotRepository {
	return &memorySlotRepository{slots: make(map[string]string)}
}

func (r *memorySlotRepository) Get(_ context.Context, key string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.slots[key]
	if !ok {
		return "", ErrSlotEmpty
	}
	return v, nil
}

func (r *memorySlotRepository) Set(_ context.Context, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slots[key] = value
	return nil
}

func (r *memorySlotRepository) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.slots, key)
	return nil
}
