package session_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/idewave/tine/internal/session"
)

func TestStore_CreateThenSetKey(t *testing.T) {
	s := session.NewStore()
	s.Create("127.0.0.1:5555")

	key, ok := s.Key("127.0.0.1:5555")
	require.True(t, ok)
	require.Nil(t, key)

	s.SetKey("127.0.0.1:5555", []byte("session-key"))
	key, ok = s.Key("127.0.0.1:5555")
	require.True(t, ok)
	require.Equal(t, []byte("session-key"), key)
}

func TestStore_Delete(t *testing.T) {
	s := session.NewStore()
	s.Create("127.0.0.1:5555")
	s.Delete("127.0.0.1:5555")

	_, ok := s.Key("127.0.0.1:5555")
	require.False(t, ok)
}

func TestStore_UnknownPeer(t *testing.T) {
	s := session.NewStore()
	_, ok := s.Key("127.0.0.1:9999")
	require.False(t, ok)
}
