package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tablero/pkg/domain/model/auth"
)

// tokenStore keeps login sessions by token ID. Values are copied on the way
// in and out so callers never share a session with the store.
type tokenStore struct {
	mu       sync.RWMutex
	sessions map[auth.TokenID]auth.Token
}

func newTokenStore() *tokenStore {
	return &tokenStore{sessions: make(map[auth.TokenID]auth.Token)}
}

func (s *tokenStore) put(token auth.Token) {
	s.mu.Lock()
	s.sessions[token.ID] = token
	s.mu.Unlock()
}

func (s *tokenStore) get(id auth.TokenID) (auth.Token, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	token, ok := s.sessions[id]
	return token, ok
}

func (s *tokenStore) remove(id auth.TokenID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	return true
}

func (m *Memory) PutToken(ctx context.Context, token *auth.Token) error {
	if err := token.Validate(); err != nil {
		return goerr.Wrap(err, "invalid token")
	}
	m.tokens.put(*token)
	return nil
}

func (m *Memory) GetToken(ctx context.Context, tokenID auth.TokenID) (*auth.Token, error) {
	if err := tokenID.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid token ID")
	}
	token, ok := m.tokens.get(tokenID)
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "session not found", goerr.V("token_id", tokenID))
	}
	return &token, nil
}

func (m *Memory) DeleteToken(ctx context.Context, tokenID auth.TokenID) error {
	if err := tokenID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid token ID")
	}
	if !m.tokens.remove(tokenID) {
		return goerr.Wrap(ErrNotFound, "session not found", goerr.V("token_id", tokenID))
	}
	return nil
}
