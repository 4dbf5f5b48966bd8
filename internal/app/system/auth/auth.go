// internal/app/system/auth/auth.go
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/studyhub/internal/app/system/jsonio"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const issuer = "studyhub"

// ErrInvalidToken covers malformed, forged and expired tokens alike.
var ErrInvalidToken = errors.New("invalid or expired token")

// Authorizer issues and verifies bearer tokens and hashes passwords.
type Authorizer struct {
	secret []byte
	ttl    time.Duration
	cost   int
	log    *zap.Logger
	now    func() time.Time
}

// NewAuthorizer builds an Authorizer. cost outside bcrypt's range falls back
// to bcrypt.DefaultCost.
func NewAuthorizer(secret string, ttl time.Duration, cost int, logger *zap.Logger) (*Authorizer, error) {
	if secret == "" {
		return nil, errors.New("auth: empty signing secret")
	}
	if ttl <= 0 {
		return nil, errors.New("auth: token ttl must be positive")
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Authorizer{
		secret: []byte(secret),
		ttl:    ttl,
		cost:   cost,
		log:    logger,
		now:    time.Now,
	}, nil
}

// HashPassword returns the bcrypt hash of pw.
func (a *Authorizer) HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), a.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword reports whether pw matches hash.
func (a *Authorizer) CheckPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// Issue signs a token whose subject is userID.
func (a *Authorizer) Issue(userID primitive.ObjectID) (string, error) {
	now := a.now()
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   userID.Hex(),
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Parse verifies raw and returns the user id in its subject.
func (a *Authorizer) Parse(raw string) (primitive.ObjectID, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims,
		func(*jwt.Token) (any, error) { return a.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidToken
	}
	id, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidToken
	}
	return id, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Current-User helper                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionUser is the authenticated caller injected into r.Context().
type SessionUser struct {
	ID primitive.ObjectID
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// WithUser returns ctx carrying userID as the caller.
func WithUser(ctx context.Context, userID primitive.ObjectID) context.Context {
	return context.WithValue(ctx, currentUserKey, SessionUser{ID: userID})
}

// CurrentUser returns the caller and a found flag.
func CurrentUser(r *http.Request) (SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(SessionUser)
	return u, ok
}

// CallerID returns the authenticated caller's id. When the request carries
// none it writes a 401 and reports false.
func CallerID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	u, ok := CurrentUser(r)
	if !ok {
		jsonio.Error(w, http.StatusUnauthorized, "Authorization token missing")
		return primitive.NilObjectID, false
	}
	return u.ID, true
}

// RequireBearer rejects requests without a valid "Authorization: Bearer"
// token and injects the caller for the rest.
func (a *Authorizer) RequireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r)
		if !ok {
			jsonio.Error(w, http.StatusUnauthorized, "Authorization token missing")
			return
		}
		userID, err := a.Parse(raw)
		if err != nil {
			a.log.Debug("bearer token rejected", zap.String("path", r.URL.Path), zap.Error(err))
			jsonio.Error(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), userID)))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, tok, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	tok = strings.TrimSpace(tok)
	return tok, tok != ""
}
