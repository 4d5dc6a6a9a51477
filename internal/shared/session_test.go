package shared_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/lexvault/lexvault/internal/shared"
)

func newManager(t *testing.T, ttl time.Duration) (*shared.SessionManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return shared.NewSessionManager(client, "test_session", ttl), mr
}

func TestIssueAndGet(t *testing.T) {
	sm, _ := newManager(t, time.Hour)

	claims := shared.Claims{
		UserID:         "u1",
		Role:           "ASSOCIATE",
		SeparationMode: "OPEN",
		Permissions:    []string{"view_matter"},
	}
	sess, err := sm.Issue(context.Background(), claims)
	require.NoError(t, err)
	require.NotEmpty(t, sess.Token)

	loaded, err := sm.Get(context.Background(), sess.Token)
	require.NoError(t, err)
	require.Equal(t, claims, loaded.Claims)
}

func TestGetUnknownToken(t *testing.T) {
	sm, _ := newManager(t, time.Hour)

	_, err := sm.Get(context.Background(), "nope")
	require.ErrorIs(t, err, shared.ErrUnauthorized)

	_, err = sm.Get(context.Background(), "")
	require.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestSessionExpires(t *testing.T) {
	sm, mr := newManager(t, time.Minute)

	sess, err := sm.Issue(context.Background(), shared.Claims{UserID: "u1", Role: "X"})
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = sm.Get(context.Background(), sess.Token)
	require.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestUpdatePersistsClaims(t *testing.T) {
	sm, _ := newManager(t, time.Hour)

	sess, err := sm.Issue(context.Background(), shared.Claims{UserID: "u1", Role: "OLD"})
	require.NoError(t, err)

	sess.Claims.Role = "NEW"
	require.NoError(t, sm.Update(context.Background(), sess))

	loaded, err := sm.Get(context.Background(), sess.Token)
	require.NoError(t, err)
	require.Equal(t, "NEW", loaded.Claims.Role)
}

func TestDestroy(t *testing.T) {
	sm, _ := newManager(t, time.Hour)

	sess, err := sm.Issue(context.Background(), shared.Claims{UserID: "u1", Role: "X"})
	require.NoError(t, err)
	require.NoError(t, sm.Destroy(context.Background(), sess.Token))

	_, err = sm.Get(context.Background(), sess.Token)
	require.ErrorIs(t, err, shared.ErrUnauthorized)

	// Destroying twice is a no-op.
	require.NoError(t, sm.Destroy(context.Background(), sess.Token))
}
