package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/pratik-mahalle/petalert/internal/api/dto"
	"github.com/pratik-mahalle/petalert/internal/auth"
	"github.com/pratik-mahalle/petalert/internal/config"
	"github.com/pratik-mahalle/petalert/internal/pkg/validator"
	"github.com/pratik-mahalle/petalert/internal/services"
	"github.com/pratik-mahalle/petalert/internal/testutil"
)

const testSecret = "test-secret"

func newAuthHandler() *AuthHandler {
	cfg := &config.Config{
		Server: config.ServerConfig{Environment: "test"},
		Auth:   config.AuthConfig{JWTSecret: testSecret, AccessTokenExpiry: time.Hour},
	}
	log := testLogger()
	service := services.NewUserService(testutil.NewMockUserRepository(), bcrypt.MinCost, log)
	return NewAuthHandler(service, cfg, log, validator.New())
}

func TestAuthHandler_RegisterAndLogin(t *testing.T) {
	handler := newAuthHandler()

	tests := []struct {
		name           string
		call           func(w http.ResponseWriter, r *http.Request)
		body           interface{}
		expectedStatus int
	}{
		{
			name:           "register",
			call:           handler.Register,
			body:           dto.RegisterRequest{Email: "ana@example.com", Password: "correct-horse", FullName: "Ana"},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "register duplicate email",
			call:           handler.Register,
			body:           dto.RegisterRequest{Email: "ana@example.com", Password: "correct-horse"},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "register short password",
			call:           handler.Register,
			body:           dto.RegisterRequest{Email: "bo@example.com", Password: "short"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "login",
			call:           handler.Login,
			body:           dto.LoginRequest{Email: "ana@example.com", Password: "correct-horse"},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "login wrong password",
			call:           handler.Login,
			body:           dto.LoginRequest{Email: "ana@example.com", Password: "wrong-horse"},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := newRequest(http.MethodPost, "/", tt.body, 0, "", nil)
			rr := httptest.NewRecorder()

			tt.call(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Fatalf("status = %d, want %d (%s)", rr.Code, tt.expectedStatus, rr.Body.String())
			}
			if rr.Code >= http.StatusBadRequest {
				return
			}

			var cookie *http.Cookie
			for _, c := range rr.Result().Cookies() {
				if c.Name == accessTokenCookie {
					cookie = c
				}
			}
			if cookie == nil || !cookie.HttpOnly {
				t.Fatalf("missing http-only access token cookie")
			}

			var resp dto.AuthResponse
			readData(t, rr, &resp)
			if resp.AccessToken != cookie.Value {
				t.Error("body token differs from cookie")
			}
			claims, err := auth.ParseClaims(resp.AccessToken, testSecret)
			if err != nil {
				t.Fatalf("ParseClaims() error = %v", err)
			}
			if claims.UserID != resp.User.ID || claims.Role != "user" {
				t.Errorf("claims = %+v, user = %+v", claims, resp.User)
			}
			if !resp.User.EmailNotifications {
				t.Error("email notifications should default to on")
			}
		})
	}
}

func TestAuthHandler_MeAndPreferences(t *testing.T) {
	handler := newAuthHandler()

	req := newRequest(http.MethodPost, "/", dto.RegisterRequest{Email: "ana@example.com", Password: "correct-horse"}, 0, "", nil)
	rr := httptest.NewRecorder()
	handler.Register(rr, req)
	var registered dto.AuthResponse
	readData(t, rr, &registered)
	id := registered.User.ID

	rr = httptest.NewRecorder()
	handler.Me(rr, newRequest(http.MethodGet, "/", nil, 0, "", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("anonymous Me: status = %d, want 401", rr.Code)
	}

	on := true
	rr = httptest.NewRecorder()
	handler.UpdatePreferences(rr, newRequest(http.MethodPut, "/", dto.UpdatePreferencesRequest{ChatEnabled: &on}, id, "", nil))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("chat without chat id: status = %d, want 400", rr.Code)
	}

	chatID := "  424242 "
	rr = httptest.NewRecorder()
	handler.UpdatePreferences(rr, newRequest(http.MethodPut, "/", dto.UpdatePreferencesRequest{ChatEnabled: &on, ChatID: &chatID}, id, "", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	handler.Me(rr, newRequest(http.MethodGet, "/", nil, id, "", nil))
	var me dto.UserDTO
	readData(t, rr, &me)
	if !me.ChatEnabled || me.ChatID != "424242" {
		t.Errorf("Me() = %+v", me)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	handler := newAuthHandler()
	rr := httptest.NewRecorder()

	handler.Logout(rr, newRequest(http.MethodPost, "/", nil, 0, "", nil))

	cookies := rr.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != accessTokenCookie || cookies[0].MaxAge >= 0 {
		t.Errorf("cookies = %+v, want expired access token", cookies)
	}
}
