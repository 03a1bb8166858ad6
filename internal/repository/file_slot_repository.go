package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// ErrSlotFileUnreadable reports a session file that exists but cannot be opened
// or decoded, typically after truncation or a passphrase change.
var ErrSlotFileUnreadable = errors.New("session file unreadable")

// Sealer encrypts the slot file at rest.
type Sealer interface {
	Seal(plaintext []byte) ([]byte, error)
	Open(sealed []byte) ([]byte, error)
}

type fileSlotRepository struct {
	mu     sync.Mutex
	path   string
	sealer Sealer
	logger *zap.Logger
}

// NewFileSlotRepository stores every slot in one JSON document at path.
// sealer may be nil, in which case the document is written in clear.
// An unreadable document is reported by Get, replaced by Set and removed by Delete.
func NewFileSlotRepository(path string, sealer Sealer, logger *zap.Logger) SlotRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &fileSlotRepository{path: path, sealer: sealer, logger: logger}
}

func (r *fileSlotRepository) Get(_ context.Context, key string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	slots, err := r.load()
	if err != nil {
		return "", err
	}
	v, ok := slots[key]
	if !ok {
		return "", ErrSlotEmpty
	}
	return v, nil
}

func (r *fileSlotRepository) Set(_ context.Context, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	slots, err := r.load()
	if errors.Is(err, ErrSlotFileUnreadable) {
		r.logger.Warn("replacing unreadable session file", zap.String("path", r.path), zap.Error(err))
		slots, err = map[string]string{}, nil
	}
	if err != nil {
		return err
	}
	slots[key] = value
	return r.save(slots)
}

func (r *fileSlotRepository) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	slots, err := r.load()
	if errors.Is(err, ErrSlotFileUnreadable) {
		r.logger.Warn("removing unreadable session file", zap.String("path", r.path), zap.Error(err))
		if err := os.Remove(r.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove session file: %w", err)
		}
		return nil
	}
	if err != nil {
		return err
	}
	if _, ok := slots[key]; !ok {
		return nil
	}
	delete(slots, key)
	return r.save(slots)
}

func (r *fileSlotRepository) load() (map[string]string, error) {
	raw, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}
	if len(raw) == 0 {
		return map[string]string{}, nil
	}
	if r.sealer != nil {
		if raw, err = r.sealer.Open(raw); err != nil {
			return nil, fmt.Errorf("%w: open: %w", ErrSlotFileUnreadable, err)
		}
	}

	var slots map[string]string
	if err := json.Unmarshal(raw, &slots); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ErrSlotFileUnreadable, err)
	}
	if slots == nil {
		slots = map[string]string{}
	}
	return slots, nil
}

func (r *fileSlotRepository) save(slots map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o700); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}

	raw, err := json.MarshalIndent(slots, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session file: %w", err)
	}
	if r.sealer != nil {
		if raw, err = r.sealer.Seal(raw); err != nil {
			return fmt.Errorf("seal session file: %w", err)
		}
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}
