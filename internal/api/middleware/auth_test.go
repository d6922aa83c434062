package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/datavault-fs/knowledge-backend/internal/entity"
)

type fakeSessions struct {
	sessions map[string]*entity.AccessSession
	errs     map[string]error
}

func (f *fakeSessions) ValidateSession(_ context.Context, id string) (*entity.AccessSession, error) {
	if err, ok := f.errs[id]; ok {
		return nil, err
	}
	if session, ok := f.sessions[id]; ok {
		return session, nil
	}
	return nil, entity.ErrSessionNotFound
}

func TestRequireSession(t *testing.T) {
	sessions := &fakeSessions{
		sessions: map[string]*entity.AccessSession{
			"good-token": {ID: "good-token", UserID: "u1", UserRole: entity.RoleAnalyst, Active: true},
		},
		errs: map[string]error{
			"expired-token": entity.ErrSessionExpired,
			"broken-token":  context.DeadlineExceeded,
		},
	}

	tests := []struct {
		name       string
		token      string
		wantStatus int
	}{
		{name: "valid token", token: "good-token", wantStatus: http.StatusOK},
		{name: "missing token", token: "", wantStatus: http.StatusUnauthorized},
		{name: "unknown token", token: "nope", wantStatus: http.StatusUnauthorized},
		{name: "expired token", token: "expired-token", wantStatus: http.StatusUnauthorized},
		{name: "validator failure", token: "broken-token", wantStatus: http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var gotSession *entity.AccessSession
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotSession, _ = SessionFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/search", nil)
			if tc.token != "" {
				req.Header.Set(SessionTokenHeader, tc.token)
			}
			rec := httptest.NewRecorder()

			RequireSession(sessions)(next).ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
			if tc.wantStatus == http.StatusOK {
				if gotSession == nil || gotSession.UserID != "u1" {
					t.Errorf("session not attached to context: %+v", gotSession)
				}
			}
		})
	}
}

func TestSessionFromContextMissing(t *testing.T) {
	if _, ok := SessionFromContext(context.Background()); ok {
		t.Error("expected no session in a bare context")
	}
}
