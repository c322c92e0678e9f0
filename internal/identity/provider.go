package identity

import (
	"context"

	"github.com/google/uuid"
)

// Identity is the externally confirmed user the reconciliation flow
// receives: the provider's subject id and verified email.
type Identity struct {
	ID    uuid.UUID
	Email string
}

// Provider is the hosted identity service PTime delegates authentication
// to. PTime never sees credentials; it only verifies the provider's
// tokens and asks it to terminate sessions.
type Provider interface {
	// AuthCodeURL returns the provider's authorization URL carrying state.
	AuthCodeURL(state string) string
	// Exchange trades an authorization code for the provider's access token.
	Exchange(ctx context.Context, code string) (string, error)
	// VerifyAccessToken validates a provider access token against the
	// provider's published keys and extracts the identity.
	VerifyAccessToken(ctx context.Context, accessToken string) (*Identity, error)
	// SignOut terminates the provider session behind accessToken. Every
	// reconciliation rejection calls this so no authenticated-but-invalid
	// state survives a page reload.
	SignOut(ctx context.Context, accessToken string) error
}
