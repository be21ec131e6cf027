package middleware

import (
	"errors"
	"net/http"
	"strings"

	"devplan/internal/domain"
	"devplan/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

var ErrUnauthorized = errors.New("unauthorized")

// TokenVerifier is the part of jwt.Service the authenticator needs.
type TokenVerifier interface {
	VerifyAccessToken(token string) (domain.Identity, error)
}

// Authenticator turns an Authorization header into an Identity.
type Authenticator struct {
	verifier TokenVerifier
}

func NewAuthenticator(verifier TokenVerifier) *Authenticator {
	return &Authenticator{verifier: verifier}
}

// Authenticate accepts exactly "Bearer <token>": the scheme, one space and a
// non-empty token with no further parts. Everything else is ErrUnauthorized.
func (a *Authenticator) Authenticate(header string) (domain.Identity, error) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return domain.Identity{}, ErrUnauthorized
	}
	id, err := a.verifier.VerifyAccessToken(parts[1])
	if err != nil || id.IsZero() {
		return domain.Identity{}, ErrUnauthorized
	}
	return id, nil
}

// JWTAuth rejects requests without a valid access token.
func JWTAuth(auth *Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.AbortError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authorization header is required")
			return
		}
		id, err := auth.Authenticate(header)
		if err != nil {
			response.AbortError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token")
			return
		}
		SetIdentity(c, id)
		c.Next()
	}
}

// OptionalJWTAuth sets the identity when a valid token is present and lets
// anonymous requests through. A header that is present but invalid is still
// rejected.
func OptionalJWTAuth(auth *Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}
		id, err := auth.Authenticate(header)
		if err != nil {
			response.AbortError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token")
			return
		}
		SetIdentity(c, id)
		c.Next()
	}
}

func SetIdentity(c *gin.Context, id domain.Identity) {
	c.Set(identityKey, id)
	c.Set("user_id", id.UserID)
	c.Set("role", id.Role.String())
}

// IdentityFrom returns the caller set by JWTAuth, or the zero Identity.
func IdentityFrom(c *gin.Context) domain.Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return domain.Identity{}
	}
	id, _ := v.(domain.Identity)
	return id
}
