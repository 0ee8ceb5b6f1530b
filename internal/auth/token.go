// Package auth resolves Google credentials into OAuth2 token sources for the
// Generative Language API.
package auth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// scope grants access to the Generative Language API, the same scope the
// interactive Gemini login flow requests.
const scope = "https://www.googleapis.com/auth/generative-language"

// TokenSource turns a service-account or authorized-user credential JSON blob
// into a self-refreshing token source. Refresh happens lazily on use, so a
// bad-but-parseable credential surfaces on the first API call rather than
// here.
func TokenSource(ctx context.Context, credentialsJSON []byte) (oauth2.TokenSource, error) {
	creds, err := google.CredentialsFromJSON(ctx, credentialsJSON, scope)
	if err != nil {
		return nil, fmt.Errorf("parse google credentials: %w", err)
	}
	return creds.TokenSource, nil
}
