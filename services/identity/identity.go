// Package identity turns bearer credentials into principal ids.
package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"harvestmap/apperrors"

	"firebase.google.com/go/v4/auth"
	"github.com/golang-jwt/jwt"
)

// Verifier checks a credential and returns the principal it was issued to.
// Every failure is an Unauthenticated error.
type Verifier interface {
	Verify(ctx context.Context, credential string) (string, error)
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return token, token != ""
}

// idTokenVerifier is the subset of *auth.Client used here.
type idTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// FirebaseVerifier accepts Firebase ID tokens.
type FirebaseVerifier struct {
	client idTokenVerifier
}

func NewFirebaseVerifier(client *auth.Client) *FirebaseVerifier {
	return &FirebaseVerifier{client: client}
}

func (v *FirebaseVerifier) Verify(ctx context.Context, credential string) (string, error) {
	if credential == "" {
		return "", apperrors.Unauthenticated("Missing token", nil)
	}
	token, err := v.client.VerifyIDToken(ctx, credential)
	if err != nil {
		return "", apperrors.Unauthenticated("Invalid token", err)
	}
	if token.UID == "" {
		return "", apperrors.Unauthenticated("Invalid token", errors.New("token has no uid"))
	}
	return token.UID, nil
}

// JWTVerifier accepts HS256 tokens signed with a shared secret. The principal
// is the "sub" claim.
type JWTVerifier struct {
	secret []byte
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

func (v *JWTVerifier) Verify(_ context.Context, credential string) (string, error) {
	if credential == "" {
		return "", apperrors.Unauthenticated("Missing token", nil)
	}
	if len(v.secret) == 0 {
		return "", apperrors.Unauthenticated("Invalid token", errors.New("no signing secret configured"))
	}

	token, err := jwt.Parse(credential, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return "", apperrors.Unauthenticated("Invalid token", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", apperrors.Unauthenticated("Invalid token", errors.New("unexpected claims type"))
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", apperrors.Unauthenticated("Invalid token", errors.New("token does not contain a valid 'sub' claim"))
	}
	return sub, nil
}

// Issue signs a token for subject that expires after ttl. Used for local
// development and tests against JWTVerifier.
func (v *JWTVerifier) Issue(subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": subject,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
