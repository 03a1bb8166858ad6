package repository

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseSlots(t *testing.T, repo SlotRepository) {
	t.Helper()
	ctx := context.Background()

	_, err := repo.Get(ctx, "token")
	require.ErrorIs(t, err, ErrSlotEmpty)

	require.NoError(t, repo.Set(ctx, "token", "a.b.c"))
	require.NoError(t, repo.Set(ctx, "pending_email", "p@example.com"))

	v, err := repo.Get(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, "a.b.c", v)

	require.NoError(t, repo.Set(ctx, "token", ""))
	v, err = repo.Get(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, "", v)

	require.NoError(t, repo.Delete(ctx, "token"))
	require.NoError(t, repo.Delete(ctx, "token"))
	_, err = repo.Get(ctx, "token")
	require.ErrorIs(t, err, ErrSlotEmpty)

	v, err = repo.Get(ctx, "pending_email")
	require.NoError(t, err)
	assert.Equal(t, "p@example.com", v)
}

func TestMemorySlotRepository(t *testing.T) {
	exerciseSlots(t, NewMemorySlotRepository())
}

func TestFileSlotRepository(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	exerciseSlots(t, NewFileSlotRepository(path, nil, nil))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileSlotRepositorySurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")

	require.NoError(t, NewFileSlotRepository(path, nil, nil).Set(ctx, "token", `"x.y.z"`))

	v, err := NewFileSlotRepository(path, nil, nil).Get(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, `"x.y.z"`, v)
}

type xorSealer struct{}

func (xorSealer) Seal(p []byte) ([]byte, error) { return xor(p), nil }
func (xorSealer) Open(p []byte) ([]byte, error) { return xor(p), nil }

func xor(p []byte) []byte {
	out := bytes.Clone(p)
	for i := range out {
		out[i] ^= 0x5a
	}
	return out
}

func TestFileSlotRepositoryUsesSealer(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")
	repo := NewFileSlotRepository(path, xorSealer{}, nil)

	require.NoError(t, repo.Set(ctx, "token", "a.b.c"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "a.b.c")

	v, err := repo.Get(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, "a.b.c", v)

	_, err = NewFileSlotRepository(path, nil, nil).Get(ctx, "token")
	assert.ErrorIs(t, err, ErrSlotFileUnreadable)
}

func TestFileSlotRepositoryRecoversUnreadableDocument(t *testing.T) {
	cases := map[string][]byte{
		"json null": []byte("null"),
		"truncated": []byte(`{"token":"a.b`),
		"garbage":   []byte("{garbage"),
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			path := filepath.Join(t.TempDir(), "session.json")
			require.NoError(t, os.WriteFile(path, content, 0o600))
			repo := NewFileSlotRepository(path, nil, nil)

			require.NotPanics(t, func() { require.NoError(t, repo.Set(ctx, "token", "x.y.z")) })
			v, err := repo.Get(ctx, "token")
			require.NoError(t, err)
			assert.Equal(t, "x.y.z", v)
		})
	}
}

func TestFileSlotRepositoryDeleteClearsUnreadableDocument(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{garbage"), 0o600))
	repo := NewFileSlotRepository(path, nil, nil)

	require.NoError(t, repo.Delete(ctx, "token"))
	require.NoError(t, repo.Delete(ctx, "token"))
	_, err := repo.Get(ctx, "token")
	assert.ErrorIs(t, err, ErrSlotEmpty)
}

func TestFileSlotRepositoryAfterPassphraseChange(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, NewFileSlotRepository(path, xorSealer{}, nil).Set(ctx, "token", "old.cred.x"))

	rekeyed := NewFileSlotRepository(path, otherSealer{}, nil)
	_, err := rekeyed.Get(ctx, "token")
	require.ErrorIs(t, err, ErrSlotFileUnreadable)

	require.NoError(t, rekeyed.Delete(ctx, "token"))
	require.NoError(t, rekeyed.Set(ctx, "token", "new.cred.y"))
	v, err := rekeyed.Get(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, "new.cred.y", v)
}

// otherSealer rejects anything it did not seal itself.
type otherSealer struct{}

func (otherSealer) Seal(p []byte) ([]byte, error) { return append([]byte("v2:"), p...), nil }

func (otherSealer) Open(p []byte) ([]byte, error) {
	if !bytes.HasPrefix(p, []byte("v2:")) {
		return nil, errors.New("message authentication failed")
	}
	return p[len("v2:"):], nil
}
