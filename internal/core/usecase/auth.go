package usecase

import (
	"context"
	"fmt"

	"github.com/ekipteam/ekip/internal/core/domain"
	"github.com/ekipteam/ekip/internal/core/ports"
)

type AuthUseCase struct {
	users  ports.UserRepository
	tokens ports.AuthTokens
}

func NewAuthUseCase(users ports.UserRepository, tokens ports.AuthTokens) *AuthUseCase {
	return &AuthUseCase{users: users, tokens: tokens}
}

// Login exchanges a registered email for a bearer token plus the user's
// context. Unknown emails are an authorization failure, not a lookup error.
func (uc *AuthUseCase) Login(ctx context.Context, email string) (string, *domain.UserContext, error) {
	user, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		if domain.IsKind(err, domain.ErrNotFound) {
			return "", nil, domain.WrapError(domain.ErrUnauthorized, "login", fmt.Errorf("unknown user: %s", email))
		}
		return "", nil, fmt.Errorf("lookup user by email: %w", err)
	}

	token, err := uc.tokens.Sign(user.UserID)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}

	userCtx, err := uc.users.GetContext(ctx, user.UserID)
	if err != nil {
		return "", nil, fmt.Errorf("load user context: %w", err)
	}
	return token, userCtx, nil
}

// Authenticate validates a bearer token and resolves the caller's context.
// Every failure mode maps to ErrUnauthorized so the HTTP surface rejects the
// request before any retrieval work begins.
func (uc *AuthUseCase) Authenticate(ctx context.Context, token string) (*domain.UserContext, error) {
	userID, err := uc.tokens.Verify(token)
	if err != nil {
		return nil, domain.WrapError(domain.ErrUnauthorized, "authenticate", err)
	}

	userCtx, err := uc.users.GetContext(ctx, userID)
	if err != nil {
		if domain.IsKind(err, domain.ErrNotFound) {
			return nil, domain.WrapError(domain.ErrUnauthorized, "authenticate", err)
		}
		return nil, fmt.Errorf("load user context: %w", err)
	}
	return userCtx, nil
}
