package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/vitalmotion-client/internal/domain"
	"github.com/spec-kit/vitalmotion-client/internal/repository"
)

func newStore() *CredentialStore {
	return NewCredentialStore(repository.NewMemorySlotRepository(), nil)
}

func TestSetGetClearRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newStore()

	inputs := []string{"", "null", `"quoted"`, "a.b.c", gofakeit.Sentence(6), gofakeit.UUID()}
	for _, in := range inputs {
		require.NoError(t, store.Set(ctx, in))
		got, err := store.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, in, got)
	}

	require.NoError(t, store.Clear(ctx))
	_, err := store.Get(ctx)
	assert.ErrorIs(t, err, ErrNoCredential)
}

func TestClearIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newStore()

	require.NoError(t, store.Clear(ctx))
	require.NoError(t, store.Set(ctx, "a.b.c"))
	require.NoError(t, store.Clear(ctx))
	require.NoError(t, store.Clear(ctx))
	_, err := store.Get(ctx)
	assert.ErrorIs(t, err, ErrNoCredential)
}

func TestClearAllRemovesEverySessionSlot(t *testing.T) {
	ctx := context.Background()
	store := newStore()

	require.NoError(t, store.Set(ctx, "a.b.c"))
	require.NoError(t, store.SetProfile(ctx, domain.Profile{Role: "doctor"}))
	require.NoError(t, store.SetPendingEmail(ctx, gofakeit.Email()))

	require.NoError(t, store.ClearAll(ctx))
	require.NoError(t, store.ClearAll(ctx))

	_, err := store.Get(ctx)
	assert.ErrorIs(t, err, ErrNoCredential)
	_, ok := store.Profile(ctx)
	assert.False(t, ok)
	_, err = store.PendingEmail(ctx)
	assert.ErrorIs(t, err, ErrNoPendingEmail)
}

func TestProfileAndPendingEmail(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	email := gofakeit.Email()

	_, err := store.PendingEmail(ctx)
	require.ErrorIs(t, err, ErrNoPendingEmail)

	require.NoError(t, store.SetPendingEmail(ctx, email))
	got, err := store.PendingEmail(ctx)
	require.NoError(t, err)
	assert.Equal(t, email, got)
	require.NoError(t, store.ClearPendingEmail(ctx))
	_, err = store.PendingEmail(ctx)
	require.ErrorIs(t, err, ErrNoPendingEmail)

	require.NoError(t, store.SetProfile(ctx, domain.Profile{Email: email, Role: "Doctor"}))
	p, ok := store.Profile(ctx)
	require.True(t, ok)
	assert.Equal(t, domain.RoleDoctor, p.LandingRole())
}

func TestCurrentStates(t *testing.T) {
	ctx := context.Background()
	store := newStore()

	assert.Equal(t, StateAbsent, store.Current(ctx).State)

	require.NoError(t, store.Set(ctx, "garbage"))
	s := store.Current(ctx)
	assert.Equal(t, StateUnparseable, s.State)
	assert.Equal(t, domain.Role(""), s.Role())

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"role": "user"}).SignedString([]byte("k"))
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, tok))
	s = store.Current(ctx)
	assert.Equal(t, StatePresent, s.State)
	assert.Equal(t, domain.RoleUser, s.Role())

	// Claims follow the credential: a new credential is decoded afresh.
	tok, err = jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"role": "admin"}).SignedString([]byte("k"))
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, tok))
	assert.Equal(t, domain.RoleAdmin, store.Current(ctx).Role())
}

type failingSlots struct{ repository.SlotRepository }

func (failingSlots) Get(context.Context, string) (string, error) { return "", errors.New("redis down") }
func (failingSlots) Delete(context.Context, string) error { return errors.New("redis down") }

func TestCurrentWithFailingBackendIsAbsent(t *testing.T) {
	store := NewCredentialStore(failingSlots{repository.NewMemorySlotRepository()}, nil)

	s := store.Current(context.Background())
	assert.Equal(t, StateAbsent, s.State)
	assert.Error(t, s.Err)

	err := store.ClearAll(context.Background())
	assert.Error(t, err)
}

func TestClearAllRecoversCorruptSessionFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"token":`), 0o600))
	store := NewCredentialStore(repository.NewFileSlotRepository(path, nil, nil), nil)

	assert.Equal(t, StateAbsent, store.Current(ctx).State)
	require.NoError(t, store.ClearAll(ctx))
	require.NoError(t, store.ClearAll(ctx))

	require.NoError(t, store.Set(ctx, "a.b.c"))
	got, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a.b.c", got)
}

type erroringSlots struct{ err error }

func (f erroringSlots) Get(context.Context, string) (string, error) { return "", f.err }
func (f erroringSlots) Set(context.Context, string, string) error { return f.err }
func (f erroringSlots) Delete(context.Context, string) error { return f.err }

func TestSlotErrorsAreWrapped(t *testing.T) {
	ctx := context.Background()
	cause := errors.New("disk full")
	store := NewCredentialStore(erroringSlots{err: cause}, nil)

	err := store.SetProfile(ctx, domain.Profile{Role: string(domain.RoleUser)})
	require.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "store profile")

	err = store.SetPendingEmail(ctx, gofakeit.Email())
	require.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "store pending email")

	err = store.ClearPendingEmail(ctx)
	require.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "clear pending email")
}
