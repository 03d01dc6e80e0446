package credential

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"

	"n8n-restore/src/errdefs"
)

// DefaultTokenURL is the Google OAuth2 token endpoint used by the drive
// backend. Tests point this at an httptest server via the tokenURL argument.
const DefaultTokenURL = "https://oauth2.googleapis.com/token"

// Refresh exchanges the refresh token for a short-lived access token.
// The access token is valid for one session only; callers must not cache
// it beyond that.
func (o OAuth) Refresh(ctx context.Context, tokenURL string) (*oauth2.Token, error) {
	if err := o.validate(); err != nil {
		return nil, err
	}
	tok, err := o.tokenSource(ctx, tokenURL).Token()
	if err != nil {
		return nil, classifyOAuthErr(err)
	}
	return tok, nil
}

// Client returns an HTTP client that injects a bearer token on every
// request, refreshing it as needed.
func (o OAuth) Client(ctx context.Context, tokenURL string) (*http.Client, error) {
	if err := o.validate(); err != nil {
		return nil, err
	}
	return oauth2.NewClient(ctx, o.tokenSource(ctx, tokenURL)), nil
}

func (o OAuth) tokenSource(ctx context.Context, tokenURL string) oauth2.TokenSource {
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}
	cfg := &oauth2.Config{
		ClientID:     o.ClientID,
		ClientSecret: o.ClientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: tokenURL},
	}
	return cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: o.RefreshToken})
}

func classifyOAuthErr(err error) error {
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		code := 0
		if rerr.Response != nil {
			code = rerr.Response.StatusCode
		}
		if code >= 400 && code < 500 {
			return fmt.Errorf("token exchange rejected (%d): %w", code, errdefs.ErrAuth)
		}
		return fmt.Errorf("token endpoint error (%d): %w", code, errdefs.ErrTransientNetwork)
	}
	return fmt.Errorf("token exchange: %v: %w", err, errdefs.ErrTransientNetwork)
}
