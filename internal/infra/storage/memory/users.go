package memory

import (
	"context"
	"sync"
	"time"

	domainauth "flatfinder/internal/domain/auth"
	domainuser "flatfinder/internal/domain/user"
)

// UserRepository keeps accounts in process. Email uniqueness is enforced
// through a secondary index.
type UserRepository struct {
	mu      sync.RWMutex
	users   map[domainuser.ID]*domainuser.User
	byEmail map[string]domainuser.ID
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		users:   map[domainuser.ID]*domainuser.User{},
		byEmail: map[string]domainuser.ID{},
	}
}

func (r *UserRepository) ByID(_ context.Context, id domainuser.ID) (*domainuser.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lookup(id)
}

func (r *UserRepository) ByEmail(_ context.Context, email string) (*domainuser.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[domainuser.NormalizeEmail(email)]
	if !ok {
		return nil, domainuser.ErrNotFound
	}
	return r.lookup(id)
}

func (r *UserRepository) lookup(id domainuser.ID) (*domainuser.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domainuser.ErrNotFound
	}
	return u.Clone(), nil
}

func (r *UserRepository) Save(_ context.Context, u *domainuser.User) error {
	if u == nil || u.ID == "" {
		return domainuser.ErrIDRequired
	}
	email := domainuser.NormalizeEmail(u.Email)
	if email == "" {
		return domainuser.ErrEmailRequired
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if owner, taken := r.byEmail[email]; taken && owner != u.ID {
		return domainuser.ErrEmailAlreadyUsed
	}
	if prev, ok := r.users[u.ID]; ok && prev.Email != email {
		delete(r.byEmail, prev.Email)
	}
	stored := u.Clone()
	stored.Email = email
	r.users[u.ID] = stored
	r.byEmail[email] = u.ID
	return nil
}

// SessionStore keeps sessions keyed by token digest. Expired sessions are
// dropped on read and swept on every save.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*domainauth.Session
	now      func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: map[string]*domainauth.Session{}, now: time.Now}
}

func (s *SessionStore) Save(_ context.Context, session *domainauth.Session) error {
	if session == nil || session.Token == "" {
		return domainauth.ErrTokenRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for digest, existing := range s.sessions {
		if existing.Expired(now) {
			delete(s.sessions, digest)
		}
	}
	stored := session.Clone()
	stored.Token = ""
	s.sessions[session.Token.Digest()] = stored
	return nil
}

func (s *SessionStore) Get(_ context.Context, token domainauth.Token) (*domainauth.Session, error) {
	digest := token.Digest()
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.sessions[digest]
	if !ok {
		return nil, domainauth.ErrSessionNotFound
	}
	if stored.Expired(s.now()) {
		delete(s.sessions, digest)
		return nil, domainauth.ErrSessionNotFound
	}
	out := stored.Clone()
	out.Token = token
	return out, nil
}

func (s *SessionStore) Delete(_ context.Context, token domainauth.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token.Digest())
	return nil
}

func (s *SessionStore) DeleteByUser(_ context.Context, userID domainuser.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for digest, stored := range s.sessions {
		if stored.UserID == userID {
			delete(s.sessions, digest)
		}
	}
	return nil
}

var (
	_ domainuser.Repository   = (*UserRepository)(nil)
	_ domainauth.SessionStore = (*SessionStore)(nil)
)
