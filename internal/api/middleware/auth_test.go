package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/kp9community/portal/internal/core/domain"
)

type stubParser struct {
	tokens map[string]domain.Identity
}

func (p stubParser) ParseSession(token string) (domain.Identity, error) {
	id, ok := p.tokens[token]
	if !ok {
		return domain.Identity{}, errors.New("bad token")
	}
	return id, nil
}

var parser = stubParser{tokens: map[string]domain.Identity{
	"good": {Username: "alice", Role: "SO"},
}}

func TestSession_BearerToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Session(parser, zerolog.Nop())(func(c echo.Context) error {
		called = true
		id := Identity(c)
		if id == nil || id.Username != "alice" || id.Role != "SO" {
			t.Fatalf("identity not set: %+v", id)
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
}

func TestSession_Cookie(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "good"})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Session(parser, zerolog.Nop())(func(c echo.Context) error {
		if Identity(c) == nil {
			t.Fatalf("identity not set from cookie")
		}
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
}

func TestSession_AnonymousPassesThrough(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Session(parser, zerolog.Nop())(func(c echo.Context) error {
		called = true
		if Identity(c) != nil {
			t.Fatalf("expected no identity")
		}
		return nil
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
}

func TestSession_InvalidTokenIsAnonymous(t *testing.T) {
	for name, header := range map[string]string{
		"invalid token":  "Bearer not-a-token",
		"invalid format": "Token abc",
	} {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		called := false
		handler := Session(parser, zerolog.Nop())(func(c echo.Context) error {
			called = true
			if Identity(c) != nil {
				t.Fatalf("%s: expected no identity", name)
			}
			return nil
		})
		if err := handler(c); err != nil {
			t.Fatalf("%s: handler error: %v", name, err)
		}
		if !called {
			t.Fatalf("%s: next not called", name)
		}
	}
}

func TestRequireSession(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := RequireSession()(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
