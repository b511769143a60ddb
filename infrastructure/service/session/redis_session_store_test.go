package session

import (
	"context"
	"strings"
	"testing"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisSessionStore_Key(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	defer client.Close()

	store := NewRedisSessionStore(client, "", 0, logrus.New())

	key := store.Key("tok-1")
	assert.True(t, strings.HasPrefix(key, "session:"))
	assert.Len(t, key, len("session:")+64)
	assert.Equal(t, key, store.Key("tok-1"))
	assert.NotEqual(t, key, store.Key("tok-2"))
	assert.NotContains(t, key, "tok-1")
}

func TestRedisSessionStore_EmptyCredential(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	defer client.Close()

	store := NewRedisSessionStore(client, "s:", 0, logrus.New())

	session, err := store.LookupSession(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestNewSessionLookup_Disabled(t *testing.T) {
	lookup, err := NewSessionLookup(SessionStoreConfig{Enabled: false}, logrus.New())
	require.NoError(t, err)

	session, err := lookup.LookupSession(context.Background(), "anything")
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestNewSessionLookup_BadURL(t *testing.T) {
	_, err := NewSessionLookup(SessionStoreConfig{Enabled: true, RedisURL: "://nope"}, logrus.New())
	assert.Error(t, err)
}
