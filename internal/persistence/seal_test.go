package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPassphraseSealerRoundTrip(t *testing.T) {
	s, err := NewPassphraseSealer("correct horse")
	require.NoError(t, err)

	sealed, err := s.Seal([]byte(`{"token":"a.b.c"}`))
	require.NoError(t, err)
	assert.NotContains(t, string(sealed), "a.b.c")

	plain, err := s.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, `{"token":"a.b.c"}`, string(plain))
}

func TestPassphraseSealerRejectsWrongKeyAndGarbage(t *testing.T) {
	s, err := NewPassphraseSealer("one")
	require.NoError(t, err)
	other, err := NewPassphraseSealer("two")
	require.NoError(t, err)

	sealed, err := s.Seal([]byte("secret"))
	require.NoError(t, err)

	_, err = other.Open(sealed)
	assert.Error(t, err)
	_, err = s.Open([]byte("short"))
	assert.Error(t, err)

	_, err = NewPassphraseSealer("")
	assert.Error(t, err)
}
