package memory

import (
	"context"
	"sync"

	"quiz-session-service/internal/domain"
)

// StaticVerifier resolves bearer tokens from a fixed map (dev mode and tests).
type StaticVerifier struct {
	mu         sync.RWMutex
	principals map[string]domain.Principal
}

func NewStaticVerifier(principals map[string]domain.Principal) *StaticVerifier {
	if principals == nil {
		principals = make(map[string]domain.Principal)
	}
	return &StaticVerifier{principals: principals}
}

func (v *StaticVerifier) Verify(_ context.Context, token string) (domain.Principal, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	principal, ok := v.principals[token]
	if !ok {
		return domain.Principal{}, domain.ErrInvalidToken
	}
	return principal, nil
}

// Grant registers a token at runtime.
func (v *StaticVerifier) Grant(token string, principal domain.Principal) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.principals[token] = principal
}
