package shared

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Claims are the resolved identity attributes supplied at login. The
// authorization core consumes them as-is; credential validation and token
// issuance happen upstream.
type Claims struct {
	UserID         string   `json:"user_id"`
	TenantID       string   `json:"tenant_id"`
	Role           string   `json:"role"`
	Department     string   `json:"department,omitempty"`
	SeparationMode string   `json:"separation_mode"`
	Permissions    []string `json:"permissions"`
}

// Session is a server-side session record keyed by an opaque bearer token.
// The permission snapshot stored here is resolved once at hydration and is
// not refreshed when roles change; holders keep it until re-authentication.
type Session struct {
	Token    string
	Claims   Claims
	IssuedAt time.Time
}

type sessionPayload struct {
	Claims   Claims    `json:"claims"`
	IssuedAt time.Time `json:"issued_at"`
}

// SessionManager stores bearer-token sessions in Redis.
type SessionManager struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewSessionManager constructs a SessionManager.
func NewSessionManager(client *redis.Client, prefix string, ttl time.Duration) *SessionManager {
	if prefix == "" {
		prefix = "session"
	}
	return &SessionManager{client: client, prefix: prefix, ttl: ttl}
}

// TTL returns the configured session lifetime.
func (sm *SessionManager) TTL() time.Duration {
	return sm.ttl
}

// Issue creates a new session for the given claims and returns its token.
func (sm *SessionManager) Issue(ctx context.Context, claims Claims) (*Session, error) {
	token, err := generateToken()
	if err != nil {
		return nil, err
	}
	sess := &Session{Token: token, Claims: claims, IssuedAt: time.Now().UTC()}
	if err := sm.save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Get loads the session for a bearer token. Returns ErrUnauthorized when the
// token is unknown or expired.
func (sm *SessionManager) Get(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	raw, err := sm.client.Get(ctx, sm.key(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	var stored sessionPayload
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, err
	}
	return &Session{Token: token, Claims: stored.Claims, IssuedAt: stored.IssuedAt}, nil
}

// Update persists modified claims back to the session record, keeping the
// remaining TTL behavior simple: the lifetime restarts on update.
func (sm *SessionManager) Update(ctx context.Context, sess *Session) error {
	if sess == nil || sess.Token == "" {
		return ErrUnauthorized
	}
	return sm.save(ctx, sess)
}

// Destroy removes the session record.
func (sm *SessionManager) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := sm.client.Del(ctx, sm.key(token)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}

func (sm *SessionManager) save(ctx context.Context, sess *Session) error {
	payload, err := json.Marshal(sessionPayload{Claims: sess.Claims, IssuedAt: sess.IssuedAt})
	if err != nil {
		return err
	}
	return sm.client.Set(ctx, sm.key(sess.Token), payload, sm.ttl).Err()
}

func (sm *SessionManager) key(token string) string {
	return sm.prefix + ":" + token
}

func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
