package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kp9community/portal/internal/core/domain"
)

func newAuthSvc(users ...domain.User) *AuthService {
	dir := NewUserDirectory(newStubStore(users...), PlaintextHasher{}, false, discardLogger)
	return NewAuthService(dir, "secret", time.Hour, discardLogger)
}

func TestAuthService_Login_Success(t *testing.T) {
	svc := newAuthSvc(domain.User{Username: "carol", Password: "s3cret", Name: "Carol", Role: domain.RoleSO})

	token, user, err := svc.Login(context.Background(), "carol", "s3cret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token, got empty")
	}
	if user == nil || user.Username != "carol" {
		t.Fatalf("unexpected user: %+v", user)
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	if claims["role"] != domain.RoleSO {
		t.Fatalf("expected role %s, got %v", domain.RoleSO, claims["role"])
	}
	if sid, _ := claims["sid"].(string); sid == "" {
		t.Fatalf("expected session id claim")
	}
}

func TestAuthService_Login_InvalidPassword(t *testing.T) {
	svc := newAuthSvc(domain.User{Username: "dave", Password: "goodpass", Role: "DEV"})

	if _, _, err := svc.Login(context.Background(), "dave", "badpass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	svc := newAuthSvc()

	if _, _, err := svc.Login(context.Background(), "ghost", "pass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_ParseSession(t *testing.T) {
	svc := newAuthSvc(domain.User{Username: "erin", Password: "pw", Role: "VIP"})

	token, _, err := svc.Login(context.Background(), "erin", "pw")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	id, err := svc.ParseSession(token)
	if err != nil {
		t.Fatalf("ParseSession: %v", err)
	}
	if id != (domain.Identity{Username: "erin", Role: "VIP"}) {
		t.Fatalf("unexpected identity: %+v", id)
	}
}

func TestAuthService_ParseSession_Rejects(t *testing.T) {
	svc := newAuthSvc()

	other := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"username": "x", "role": domain.RoleSO})
	forged, _ := other.SignedString([]byte("wrong-secret"))

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": "x",
		"role":     domain.RoleSO,
		"exp":      time.Now().Add(-time.Minute).Unix(),
	})
	stale, _ := expired.SignedString([]byte("secret"))

	anonymous := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"role": domain.RoleSO})
	noUser, _ := anonymous.SignedString([]byte("secret"))

	for name, token := range map[string]string{
		"garbage": "not-a-token",
		"forged":  forged,
		"expired": stale,
		"no user": noUser,
	} {
		if _, err := svc.ParseSession(token); !errors.Is(err, domain.ErrUnauthenticated) {
			t.Fatalf("%s: expected ErrUnauthenticated, got %v", name, err)
		}
	}
}

func TestNewAuthService_DefaultTTL(t *testing.T) {
	svc := NewAuthService(nil, "secret", 0, discardLogger)
	if svc.SessionTTL() != 24*time.Hour {
		t.Fatalf("expected default TTL of 24h, got %s", svc.SessionTTL())
	}
}
