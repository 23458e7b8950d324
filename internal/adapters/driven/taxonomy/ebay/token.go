package ebay

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	// ProductionTokenURL is the production OAuth2 token endpoint.
	ProductionTokenURL = "https://api.ebay.com/identity/v1/oauth2/token"

	// SandboxTokenURL is the sandbox OAuth2 token endpoint.
	SandboxTokenURL = "https://api.sandbox.ebay.com/identity/v1/oauth2/token"

	// APIScope is the public application scope the taxonomy API accepts.
	APIScope = "https://api.ebay.com/oauth/api_scope"
)

// NewTokenClient returns an http.Client that attaches an eBay
// application access token to every request. The client-credentials
// grant mints the token and the oauth2 transport refreshes it before
// expiry, so callers never handle tokens directly.
//
// eBay expects the client id and secret basic-authenticated on the
// token request, which is oauth2.AuthStyleInHeader.
func NewTokenClient(ctx context.Context, clientID, clientSecret, tokenURL string) *http.Client {
	cfg := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
		Scopes:       []string{APIScope},
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	return cfg.Client(ctx)
}
