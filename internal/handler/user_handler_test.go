package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/triplog/internal/middleware"
	"github.com/hitoshi/triplog/internal/model"
)

func TestUserHandler_Withdraw_NoUserID_Returns401(t *testing.T) {
	h := NewUserHandler(&mockUserService{})

	req := httptest.NewRequest(http.MethodDelete, "/api/users/me", nil)
	w := httptest.NewRecorder()

	h.Withdraw(w, req)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
	}
}

func TestUserHandler_Withdraw_UserNotFound_Returns404(t *testing.T) {
	svc := &mockUserService{
		withdrawFn: func(ctx context.Context, userID string) error {
			return model.NewUserNotFoundError()
		},
	}
	h := NewUserHandler(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/users/me", nil)
	req = req.WithContext(middleware.ContextWithUserID(req.Context(), "missing-user"))
	w := httptest.NewRecorder()

	h.Withdraw(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}

	var errResp apiErrorResponse
	json.NewDecoder(resp.Body).Decode(&errResp)
	if errResp.Code != model.ErrCodeUserNotFound {
		t.Errorf("code = %q, want %q", errResp.Code, model.ErrCodeUserNotFound)
	}
}
