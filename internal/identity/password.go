// Package identity signs collaborators in through the Identity Toolkit REST API.
package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
	identitytoolkit "google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"

	"couple-plans-backend-go/internal/core"
)

// PasswordVerifier implements core.PasswordVerifier with the verifyPassword endpoint.
type PasswordVerifier struct {
	svc *identitytoolkit.Service
}

// NewPasswordVerifier creates a verifier authenticated with the project's web API key.
func NewPasswordVerifier(ctx context.Context, apiKey string, opts ...option.ClientOption) (*PasswordVerifier, error) {
	if apiKey == "" {
		return nil, errors.New("identity: web API key is required")
	}
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := identitytoolkit.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("identity: create identitytoolkit service: %w", err)
	}
	return &PasswordVerifier{svc: svc}, nil
}

// VerifyPassword exchanges email and password for an ID token.
func (v *PasswordVerifier) VerifyPassword(ctx context.Context, email, password string) (*core.SignIn, error) {
	req := &identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}
	resp, err := v.svc.Relyingparty.VerifyPassword(req).Context(ctx).Do()
	if err != nil {
		return nil, mapError(err)
	}
	return &core.SignIn{
		UID:          resp.LocalId,
		Email:        resp.Email,
		IDToken:      resp.IdToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    fmt.Sprint(resp.ExpiresIn),
	}, nil
}

// mapError turns provider credential rejections into core.ErrInvalidCredentials.
func mapError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusBadRequest {
		msg := apiErr.Message
		switch {
		case strings.Contains(msg, "INVALID_PASSWORD"),
			strings.Contains(msg, "EMAIL_NOT_FOUND"),
			strings.Contains(msg, "INVALID_LOGIN_CREDENTIALS"),
			strings.Contains(msg, "USER_DISABLED"):
			return fmt.Errorf("%w: %s", core.ErrInvalidCredentials, msg)
		}
	}
	return fmt.Errorf("identity: verify password: %w", err)
}
