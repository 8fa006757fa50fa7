package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"journalapi/src/auth"
	"journalapi/src/model"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

type mockUserUpdater struct {
	updated     *model.User
	err         error
	calledCount int
}

func (m *mockUserUpdater) Update(ctx context.Context, user *model.User) error {
	m.calledCount++
	if m.err != nil {
		return m.err
	}
	m.updated = user
	return nil
}

func requestWithUser(method, target string, body *strings.Reader, user *model.User) *http.Request {
	var req *http.Request
	if body == nil {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, body)
	}
	return req.WithContext(context.WithValue(req.Context(), auth.UserKey, user))
}

func TestUpdateUserHandler_Unauthorized(t *testing.T) {
	handler := UpdateUserHandler(&mockUserUpdater{})

	req := httptest.NewRequest(http.MethodPut, "/users/me", strings.NewReader(`{}`))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rr.Code)
	}
}

func TestUpdateUserHandler_PartialUpdate(t *testing.T) {
	mockRepo := &mockUserUpdater{}
	handler := UpdateUserHandler(mockRepo)

	user := &model.User{ID: 7, UserName: "trader7", Email: "old@example.com", FirstName: "Ada"}
	body := strings.NewReader(`{"timezone":" Europe/London ","base_currency":"usd","broker":"IC Markets"}`)
	req := requestWithUser(http.MethodPut, "/users/me", body, user)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if mockRepo.calledCount != 1 {
		t.Fatalf("expected repository to be called once, got %d", mockRepo.calledCount)
	}
	if mockRepo.updated.Timezone != "Europe/London" {
		t.Fatalf("timezone must be trimmed, got %q", mockRepo.updated.Timezone)
	}
	if mockRepo.updated.BaseCurrency != "USD" {
		t.Fatalf("base currency must be upper-cased, got %q", mockRepo.updated.BaseCurrency)
	}
	if mockRepo.updated.Broker != "IC Markets" {
		t.Fatalf("unexpected broker %q", mockRepo.updated.Broker)
	}
	if mockRepo.updated.Email != "old@example.com" {
		t.Fatalf("absent fields must be kept, got email %q", mockRepo.updated.Email)
	}

	var resp model.UserResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Timezone != "Europe/London" || resp.BaseCurrency != "USD" {
		t.Fatalf("response must echo the updated profile, got %+v", resp)
	}
}

func TestUpdateUserHandler_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{`},
		{"unknown field", `{"avatar_url":"http://example.com/a.png"}`},
		{"bad email", `{"email":"not-an-email"}`},
		{"bad timezone", `{"timezone":"Mars/Olympus"}`},
		{"bad currency", `{"base_currency":"DOLLARS"}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mockRepo := &mockUserUpdater{}
			handler := UpdateUserHandler(mockRepo)

			req := requestWithUser(http.MethodPut, "/users/me", strings.NewReader(tc.body), &model.User{ID: 1})
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d", rr.Code)
			}
			if mockRepo.calledCount != 0 {
				t.Fatalf("repository must not be called for invalid payloads")
			}
		})
	}
}

func TestUpdateUserHandler_RepoError(t *testing.T) {
	mockRepo := &mockUserUpdater{err: assert.AnError}
	handler := UpdateUserHandler(mockRepo)

	req := requestWithUser(http.MethodPut, "/users/me", strings.NewReader(`{"first_name":"Ada"}`), &model.User{ID: 1})
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rr.Code)
	}
}

func TestChangePasswordHandler_Success(t *testing.T) {
	currentHash, err := bcrypt.GenerateFromPassword([]byte("old-password"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash fixture password: %v", err)
	}

	mockRepo := &mockUserUpdater{}
	handler := ChangePasswordHandler(mockRepo)

	user := &model.User{ID: 7, Password: string(currentHash)}
	body := strings.NewReader(`{"current_password":"old-password","new_password":"brand-new-password"}`)
	req := requestWithUser(http.MethodPut, "/users/me/password", body, user)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if mockRepo.calledCount != 1 {
		t.Fatalf("expected repository to be called once, got %d", mockRepo.calledCount)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(mockRepo.updated.Password), []byte("brand-new-password")); err != nil {
		t.Fatalf("stored hash must match the new password: %v", err)
	}
}

func TestChangePasswordHandler_WrongCurrentPassword(t *testing.T) {
	currentHash, err := bcrypt.GenerateFromPassword([]byte("old-password"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash fixture password: %v", err)
	}

	mockRepo := &mockUserUpdater{}
	handler := ChangePasswordHandler(mockRepo)

	user := &model.User{ID: 7, Password: string(currentHash)}
	body := strings.NewReader(`{"current_password":"guessed-wrong","new_password":"brand-new-password"}`)
	req := requestWithUser(http.MethodPut, "/users/me/password", body, user)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rr.Code)
	}
	if mockRepo.calledCount != 0 {
		t.Fatalf("repository must not be called on a password mismatch")
	}
}

func TestChangePasswordHandler_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing current", `{"new_password":"brand-new-password"}`},
		{"missing new", `{"current_password":"old-password"}`},
		{"short new password", `{"current_password":"old-password","new_password":"short"}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mockRepo := &mockUserUpdater{}
			handler := ChangePasswordHandler(mockRepo)

			req := requestWithUser(http.MethodPut, "/users/me/password", strings.NewReader(tc.body), &model.User{ID: 1})
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d", rr.Code)
			}
			if mockRepo.calledCount != 0 {
				t.Fatalf("repository must not be called for invalid payloads")
			}
		})
	}
}
