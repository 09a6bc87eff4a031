package application

import (
	"encoding/hex"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/crypto/blake2b"
)

// SessionCache keeps sessions in process memory with a bounded size and TTL.
// Tokens are never stored; entries are keyed by their BLAKE2b digest.
type SessionCache struct {
	entries *expirable.LRU[string, Session]
	ttl     time.Duration
}

// NewSessionCache returns a cache holding at most capacity sessions for ttl each.
func NewSessionCache(capacity int, ttl time.Duration) *SessionCache {
	if capacity <= 0 {
		capacity = 1024
	}
	return &SessionCache{entries: expirable.NewLRU[string, Session](capacity, nil, ttl), ttl: ttl}
}

// TTL returns the configured session lifetime.
func (c *SessionCache) TTL() time.Duration {
	return c.ttl
}

// Put stores session under its token.
func (c *SessionCache) Put(session Session) {
	c.entries.Add(sessionKey(session.Token), session)
}

// Get returns the session for token when present and not evicted.
func (c *SessionCache) Get(token string) (Session, bool) {
	if token == "" {
		return Session{}, false
	}
	return c.entries.Get(sessionKey(token))
}

// Remove forgets the session for token and reports whether it existed.
func (c *SessionCache) Remove(token string) bool {
	return c.entries.Remove(sessionKey(token))
}

// Len returns the number of cached sessions.
func (c *SessionCache) Len() int {
	return c.entries.Len()
}

func sessionKey(token string) string {
	sum := blake2b.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
