package external

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"casenotify/internal/types"
)

// Authorizer sets the credentials of an outbound request.
type Authorizer interface {
	Authorize(req *http.Request) error
}

// ZGWTokenAuthorizer signs a short-lived HS256 JWT per request, as expected by
// the case registry and the legacy party and contact moment registries.
type ZGWTokenAuthorizer struct {
	ClientID string
	Secret   types.SecretString
	UserID   string
	UserName string
	Clock    types.Clock
}

// Authorize sets "Authorization: Bearer <jwt>" and the CRS headers the
// registries require on every call.
func (a *ZGWTokenAuthorizer) Authorize(req *http.Request) error {
	token, err := a.Token()
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept-Crs", "EPSG:4326")
	req.Header.Set("Content-Crs", "EPSG:4326")
	return nil
}

// Token returns a freshly signed JWT.
func (a *ZGWTokenAuthorizer) Token() (string, error) {
	clock := a.Clock
	if clock == nil {
		clock = types.SystemClock{}
	}

	claims := jwt.MapClaims{
		"iss":                 a.ClientID,
		"iat":                 clock.Now().Unix(),
		"client_id":           a.ClientID,
		"user_id":             a.UserID,
		"user_representation": a.UserName,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(a.Secret.Unmask()))
	if err != nil {
		return "", fmt.Errorf("signing ZGW token: %w", err)
	}
	return signed, nil
}

// StaticTokenAuthorizer sends a fixed API token ("Authorization: Token <t>"),
// as expected by the object registry and the relational party registry.
type StaticTokenAuthorizer struct {
	Token types.SecretString
}

// Authorize sets the token header.
func (a StaticTokenAuthorizer) Authorize(req *http.Request) error {
	req.Header.Set("Authorization", "Token "+a.Token.Unmask())
	return nil
}

// notifyTokenLifetime bounds how long a provider JWT is accepted; the
// provider rejects tokens whose iat is more than 30 seconds off.
const notifyTokenLifetime = 30 * time.Second

// NotifyTokenAuthorizer signs the per-request JWT expected by the
// notification provider: iss is the service id, the key is the API secret.
type NotifyTokenAuthorizer struct {
	ServiceID string
	Secret    types.SecretString
	Clock     types.Clock
}

// Authorize sets "Authorization: Bearer <jwt>".
func (a *NotifyTokenAuthorizer) Authorize(req *http.Request) error {
	clock := a.Clock
	if clock == nil {
		clock = types.SystemClock{}
	}
	now := clock.Now()

	claims := jwt.RegisteredClaims{
		Issuer:    a.ServiceID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(notifyTokenLifetime)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(a.Secret.Unmask()))
	if err != nil {
		return fmt.Errorf("signing notify token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+signed)
	return nil
}
