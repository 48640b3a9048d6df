package jwt

import (
	"fmt"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/auth"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/user"
)

const (
	tokenTypeAccess = "access"
	tokenTypeSSE    = "sse"

	sseTokenLifetime = 5 * time.Minute
)

// Service verifies the access tokens issued by the identity provider and mints the
// short-lived tokens used by EventSource clients, which cannot send headers.
type Service interface {
	JWTAuth() *jwtauth.JWTAuth
	SessionFromClaims(claims map[string]interface{}) (auth.Session, error)
	GenerateAccessToken(sess auth.Session) (token string, expiresAt int64, err error)
	GenerateSSEToken(sess auth.Session) (token string, expiresIn int, err error)
	ValidateSSEToken(tokenString string) (auth.Session, error)
}

type JWTService struct {
	tokenAuth        *jwtauth.JWTAuth
	issuer           string
	accessExpiration time.Duration
	now              func() time.Time
}

func NewJWTService(secretKey, issuer string, accessExpiration time.Duration) Service {
	opts := []jwt.ValidateOption{jwt.WithAcceptableSkew(30 * time.Second)}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	return &JWTService{
		tokenAuth:        jwtauth.New("HS256", []byte(secretKey), nil, opts...),
		issuer:           issuer,
		accessExpiration: accessExpiration,
		now:              time.Now,
	}
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

// SessionFromClaims maps verified claims to a session. The user id is read from
// "user_id", falling back to "sub"; a missing role means RoleUser.
func (j *JWTService) SessionFromClaims(claims map[string]interface{}) (auth.Session, error) {
	if typ, ok := claims["type"].(string); ok && typ != tokenTypeAccess {
		return auth.Session{}, auth.ErrInvalidToken
	}

	userID, _ := claims["user_id"].(string)
	if userID == "" {
		userID, _ = claims["sub"].(string)
	}
	if userID == "" {
		return auth.Session{}, auth.ErrInvalidToken
	}

	sess := auth.Session{UserID: userID, Role: user.RoleUser}
	sess.Email, _ = claims["email"].(string)

	if role, ok := claims["role"].(string); ok && role != "" {
		switch user.Role(role) {
		case user.RoleUser, user.RoleAdmin:
			sess.Role = user.Role(role)
		default:
			return auth.Session{}, fmt.Errorf("%w: unknown role %q", auth.ErrInvalidToken, role)
		}
	}
	return sess, nil
}

// GenerateAccessToken mints a token the way the identity provider does. Used by the
// admin CLI and tests.
func (j *JWTService) GenerateAccessToken(sess auth.Session) (string, int64, error) {
	expiresAt := j.now().Add(j.accessExpiration).Unix()
	return j.encode(sess, tokenTypeAccess, expiresAt)
}

func (j *JWTService) GenerateSSEToken(sess auth.Session) (string, int, error) {
	expiresAt := j.now().Add(sseTokenLifetime).Unix()
	token, _, err := j.encode(sess, tokenTypeSSE, expiresAt)
	if err != nil {
		return "", 0, err
	}
	return token, int(sseTokenLifetime.Seconds()), nil
}

func (j *JWTService) encode(sess auth.Session, typ string, expiresAt int64) (string, int64, error) {
	claims := map[string]interface{}{
		"user_id": sess.UserID,
		"email":   sess.Email,
		"role":    string(sess.Role),
		"type":    typ,
		"exp":     expiresAt,
	}
	if j.issuer != "" {
		claims["iss"] = j.issuer
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	if err != nil {
		return "", 0, err
	}
	return tokenString, expiresAt, nil
}

// ValidateSSEToken verifies signature and expiry of an SSE token.
func (j *JWTService) ValidateSSEToken(tokenString string) (auth.Session, error) {
	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		return auth.Session{}, fmt.Errorf("%w: %v", auth.ErrInvalidToken, err)
	}

	claims, err := token.AsMap(nil)
	if err != nil {
		return auth.Session{}, auth.ErrInvalidToken
	}
	if typ, _ := claims["type"].(string); typ != tokenTypeSSE {
		return auth.Session{}, auth.ErrInvalidToken
	}

	// SessionFromClaims only accepts access tokens.
	claims["type"] = tokenTypeAccess
	return j.SessionFromClaims(claims)
}
