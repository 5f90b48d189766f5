package notificationshandler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"elms/internal/domain/auth"
	"elms/internal/domain/notifications"
	"elms/internal/transport/http/middleware"
)

const knownID = "11111111-1111-1111-1111-111111111111"

type fakeService struct {
	listedFor string
}

func (f *fakeService) List(_ context.Context, userID string, _, _ int) ([]notifications.Notification, int, error) {
	f.listedFor = userID
	return []notifications.Notification{{ID: knownID, Title: "Leave approved"}}, 7, nil
}

func (f *fakeService) MarkRead(_ context.Context, _, notificationID string) error {
	if notificationID != knownID {
		return notifications.ErrNotificationNotFound
	}
	return nil
}

func serve(svc Service, method, path string, user *auth.UserContext) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	NewHandler(svc).RegisterRoutes(r)
	req := httptest.NewRequest(method, path, nil)
	if user != nil {
		req = req.WithContext(middleware.WithUser(context.Background(), *user))
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestNotifications(t *testing.T) {
	user := &auth.UserContext{UserID: "u-1", RoleName: auth.RoleEmployee}
	svc := &fakeService{}

	rec := serve(svc, http.MethodGet, "/notifications", user)
	if rec.Code != http.StatusOK || rec.Header().Get("X-Total-Count") != "7" || svc.listedFor != "u-1" {
		t.Fatalf("unexpected list response %d %q", rec.Code, rec.Header().Get("X-Total-Count"))
	}

	tests := []struct {
		name   string
		method string
		path   string
		user   *auth.UserContext
		want   int
	}{
		{name: "anonymous", method: http.MethodGet, path: "/notifications", want: http.StatusUnauthorized},
		{name: "mark read", method: http.MethodPost, path: "/notifications/" + knownID + "/read", user: user, want: http.StatusOK},
		{name: "mark unknown", method: http.MethodPost, path: "/notifications/22222222-2222-2222-2222-222222222222/read", user: user, want: http.StatusNotFound},
		{name: "bad id", method: http.MethodPost, path: "/notifications/x/read", user: user, want: http.StatusBadRequest},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if rec := serve(&fakeService{}, tc.method, tc.path, tc.user); rec.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rec.Code)
			}
		})
	}
}
