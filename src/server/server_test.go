package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"journalapi/src/auth"
	"journalapi/src/model"

	"github.com/stretchr/testify/assert"
)

type mockUserResolver struct {
	user *model.User
	err  error
}

func (m *mockUserResolver) FindByAPIToken(ctx context.Context, token string) (*model.User, error) {
	return m.user, m.err
}

func okIfAuthed() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.GetUserFromContext(r.Context())
		if !ok || user == nil {
			http.Error(w, "no user in context", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestTokenAuth_MissingToken(t *testing.T) {
	mw := TokenAuth(&mockUserResolver{user: &model.User{ID: 1}})

	req := httptest.NewRequest(http.MethodGet, "/api/trades", nil)
	rr := httptest.NewRecorder()

	mw(okIfAuthed()).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rr.Code)
	}
}

func TestTokenAuth_UnknownToken(t *testing.T) {
	mw := TokenAuth(&mockUserResolver{})

	req := httptest.NewRequest(http.MethodGet, "/api/trades", nil)
	req.Header.Set(APITokenHeader, "nope")
	rr := httptest.NewRecorder()

	mw(okIfAuthed()).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rr.Code)
	}
}

func TestTokenAuth_LookupError(t *testing.T) {
	mw := TokenAuth(&mockUserResolver{err: assert.AnError})

	req := httptest.NewRequest(http.MethodGet, "/api/trades", nil)
	req.Header.Set(APITokenHeader, "token")
	rr := httptest.NewRecorder()

	mw(okIfAuthed()).ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rr.Code)
	}
}

func TestTokenAuth_ValidToken(t *testing.T) {
	mw := TokenAuth(&mockUserResolver{user: &model.User{ID: 7}})

	req := httptest.NewRequest(http.MethodGet, "/api/trades", nil)
	req.Header.Set(APITokenHeader, "token")
	rr := httptest.NewRecorder()

	mw(okIfAuthed()).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
}
