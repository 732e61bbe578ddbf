// Package identity resolves the authenticated caller of a request. Tokens
// are issued elsewhere; this package only verifies them.
package identity

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// ErrUnauthenticated is returned when a request carries no valid token.
var ErrUnauthenticated = errors.New("unauthenticated")

const (
	issuer          = "auctionhouse"
	contextKeyUser  = "user_id"
	queryTokenParam = "access_token"
)

// Claims is the token payload. The subject is the user id.
type Claims struct {
	jwt.RegisteredClaims
}

// JWTResolver verifies HS256 tokens signed with a shared secret.
type JWTResolver struct {
	secret []byte
	clock  clockwork.Clock
}

func NewJWTResolver(secret string, clock clockwork.Clock) (*JWTResolver, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	return &JWTResolver{secret: []byte(secret), clock: clock}, nil
}

// Issue signs a token for userID valid for ttl. Used by tooling and tests.
func (j *JWTResolver) Issue(userID uuid.UUID, ttl time.Duration) (string, error) {
	now := j.clock.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse validates token and returns the user id it was issued for.
func (j *JWTResolver) Parse(token string) (uuid.UUID, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return j.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.clock.Now),
	)
	if err != nil || !parsed.Valid {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid subject", ErrUnauthenticated)
	}
	return userID, nil
}

// Resolve reads the bearer token from the Authorization header, falling
// back to the access_token query parameter browsers use for websockets.
func (j *JWTResolver) Resolve(r *http.Request) (uuid.UUID, error) {
	token := r.URL.Query().Get(queryTokenParam)
	if header := r.Header.Get("Authorization"); header != "" {
		bearer, found := strings.CutPrefix(header, "Bearer ")
		if !found {
			return uuid.Nil, fmt.Errorf("%w: malformed authorization header", ErrUnauthenticated)
		}
		token = bearer
	}
	if token == "" {
		return uuid.Nil, ErrUnauthenticated
	}
	return j.Parse(token)
}

// Middleware rejects unauthenticated requests with 401 and stores the
// caller id on the gin context.
func (j *JWTResolver) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := j.Resolve(c.Request)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
			})
			return
		}
		c.Set(contextKeyUser, userID)
		c.Next()
	}
}

// UserID returns the caller id set by Middleware.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(contextKeyUser)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
