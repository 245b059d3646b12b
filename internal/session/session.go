// Package session owns the authentication state container and the
// reconciler that brings local and remote aggregates into agreement when
// a session becomes authenticated.
package session

import "sync"

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Tokens struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Manager is the session state container. Token issuance belongs to the
// auth collaborator; the engine only reads the authenticated flag and the
// access token.
type Manager struct {
	mu     sync.RWMutex
	user   *User
	tokens *Tokens
}

func NewManager() *Manager {
	return &Manager{}
}

func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tokens != nil
}

func (m *Manager) User() *User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

// Token returns the current access token, or "" for an anonymous session.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.tokens == nil {
		return ""
	}
	return m.tokens.Access
}

func (m *Manager) set(user *User, tokens *Tokens) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = user
	m.tokens = tokens
}

func (m *Manager) clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = nil
	m.tokens = nil
}
