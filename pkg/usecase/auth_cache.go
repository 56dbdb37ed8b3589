package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tablero/pkg/domain/interfaces"
	"github.com/secmon-lab/tablero/pkg/domain/model/auth"
)

const (
	sessionCacheSize = 1024
	sessionCacheTTL  = 5 * time.Minute
)

// sessionCache holds recently validated sessions so that every API call does
// not hit the repository. Entries older than sessionCacheTTL are evicted, so a
// session deleted on another instance stays usable here for at most that long.
type sessionCache struct {
	lru *expirable.LRU[auth.TokenID, *auth.Token]
}

func newSessionCache() *sessionCache {
	return &sessionCache{
		lru: expirable.NewLRU[auth.TokenID, *auth.Token](sessionCacheSize, nil, sessionCacheTTL),
	}
}

func (c *sessionCache) get(id auth.TokenID) (*auth.Token, bool) {
	return c.lru.Get(id)
}

func (c *sessionCache) add(token *auth.Token) {
	c.lru.Add(token.ID, token)
}

func (c *sessionCache) remove(id auth.TokenID) {
	c.lru.Remove(id)
}

// lookupSession returns the live session for tokenID, from cache when
// possible. Expired sessions are deleted from the repository.
func (uc *AuthUseCase) lookupSession(ctx context.Context, tokenID auth.TokenID) (*auth.Token, error) {
	now := uc.now()

	token, ok := uc.cache.get(tokenID)
	if !ok {
		found, err := uc.repo.GetToken(ctx, tokenID)
		if err != nil {
			return nil, goerr.Wrap(ErrUnauthenticated, "unknown session",
				goerr.V("token_id", tokenID), goerr.V("cause", err.Error()))
		}
		token = found
	}

	if token.IsExpired(now) {
		uc.cache.remove(tokenID)
		if err := uc.repo.DeleteToken(ctx, tokenID); err != nil && !errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(err, "failed to delete expired session", goerr.V("token_id", tokenID))
		}
		return nil, goerr.Wrap(ErrUnauthenticated, "session expired", goerr.V("token_id", tokenID))
	}

	if !ok {
		uc.cache.add(token)
	}
	return token, nil
}
