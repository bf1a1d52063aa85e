package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	domainauth "flatfinder/internal/domain/auth"
	domainuser "flatfinder/internal/domain/user"
)

// SessionStore keeps bearer sessions as JSON values that expire with the
// session, keyed by token digest. A per-user set indexes the digests for
// DeleteByUser.
type SessionStore struct {
	rdb    redis.Cmdable
	prefix string
	now    func() time.Time
}

func NewSessionStore(rdb redis.Cmdable, prefix string) *SessionStore {
	return &SessionStore{rdb: rdb, prefix: prefixed(prefix, "sess"), now: time.Now}
}

type sessionValue struct {
	UserID    string    `json:"user_id"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *SessionStore) tokenKey(digest string) string {
	return s.prefix + ":token:" + digest
}

func (s *SessionStore) userKey(id domainuser.ID) string {
	return s.prefix + ":user:" + string(id)
}

func (s *SessionStore) Save(ctx context.Context, session *domainauth.Session) error {
	if session == nil {
		return domainauth.ErrTokenRequired
	}
	ttl := session.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return domainauth.ErrTTLInvalid
	}
	roles := make([]string, 0, len(session.Roles))
	for _, r := range session.Roles {
		roles = append(roles, string(r))
	}
	payload, err := json.Marshal(sessionValue{
		UserID:    string(session.UserID),
		Roles:     roles,
		CreatedAt: session.CreatedAt,
		ExpiresAt: session.ExpiresAt,
	})
	if err != nil {
		return err
	}
	digest := session.Token.Digest()
	userKey := s.userKey(session.UserID)
	_, err = s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, s.tokenKey(digest), payload, ttl)
		p.SAdd(ctx, userKey, digest)
		p.Expire(ctx, userKey, ttl)
		return nil
	})
	return err
}

func (s *SessionStore) Get(ctx context.Context, token domainauth.Token) (*domainauth.Session, error) {
	raw, err := s.rdb.Get(ctx, s.tokenKey(token.Digest())).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domainauth.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	var v sessionValue
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	session := &domainauth.Session{
		Token:     token,
		UserID:    domainuser.ID(v.UserID),
		CreatedAt: v.CreatedAt,
		ExpiresAt: v.ExpiresAt,
	}
	for _, r := range v.Roles {
		session.Roles = append(session.Roles, domainuser.Role(r))
	}
	if session.Expired(s.now()) {
		return nil, domainauth.ErrSessionNotFound
	}
	return session, nil
}

func (s *SessionStore) Delete(ctx context.Context, token domainauth.Token) error {
	return s.rdb.Del(ctx, s.tokenKey(token.Digest())).Err()
}

func (s *SessionStore) DeleteByUser(ctx context.Context, userID domainuser.ID) error {
	userKey := s.userKey(userID)
	digests, err := s.rdb.SMembers(ctx, userKey).Result()
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(digests)+1)
	for _, d := range digests {
		keys = append(keys, s.tokenKey(d))
	}
	keys = append(keys, userKey)
	return s.rdb.Del(ctx, keys...).Err()
}

var _ domainauth.SessionStore = (*SessionStore)(nil)
