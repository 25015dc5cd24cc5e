package auth

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"
)

// Chaves fixas do token e do usuário, iguais em todos os backends de armazenamento
const (
	KeyToken = "auth_token"
	KeyUser  = "auth_user"
)

// ErrNoToken: nenhuma sessão armazenada
var ErrNoToken = errors.New("no auth token stored")

type User struct {
	ID                 string     `json:"id"`
	Email              string     `json:"email"`
	Role               string     `json:"role"` // admin | user
	Permissions        []string   `json:"permissions"`
	MustChangePassword bool       `json:"mustChangePassword,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	LastLogin          *time.Time `json:"lastLogin,omitempty"`
}

func (u *User) IsAdmin() bool { return u != nil && u.Role == "admin" }

// Store guarda token e usuário da sessão. É injetado nos clientes que precisam
// de Authorization; nunca é global.
type Store interface {
	Token(ctx context.Context) (string, error)
	User(ctx context.Context) (*User, error)
	Set(ctx context.Context, token string, user *User) error
	Clear(ctx context.Context) error
}

// BearerHeader lê o token a cada request. Sem token devolve header vazio.
func BearerHeader(ctx context.Context, s Store) (http.Header, error) {
	h := http.Header{}
	if s == nil {
		return h, nil
	}
	tok, err := s.Token(ctx)
	if errors.Is(err, ErrNoToken) {
		return h, nil
	}
	if err != nil {
		return nil, err
	}
	if tok != "" {
		h.Set("Authorization", "Bearer "+tok)
	}
	return h, nil
}

// MemoryStore mantém a sessão só no processo
type MemoryStore struct {
	mu    sync.RWMutex
	token string
	user  *User
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (m *MemoryStore) Token(context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.token == "" {
		return "", ErrNoToken
	}
	return m.token, nil
}

func (m *MemoryStore) User(context.Context) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return nil, ErrNoToken
	}
	u := *m.user
	return &u, nil
}

func (m *MemoryStore) Set(_ context.Context, token string, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	if user != nil {
		u := *user
		m.user = &u
	} else {
		m.user = nil
	}
	return nil
}

func (m *MemoryStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token, m.user = "", nil
	return nil
}
