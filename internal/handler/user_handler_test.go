package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"know-law-go/internal/config"
	"know-law-go/internal/middleware"
	"know-law-go/internal/model"
	"know-law-go/internal/service"
)

var testSessionCfg = config.SessionConfig{
	Secret:      "test-secret",
	ExpireHours: 1,
	CookieName:  "kl_session",
}

// stubUserService 是 service.UserService 的测试替身。
type stubUserService struct {
	registerErr error
	loginErr    error
	identity    *model.Identity
}

func (s *stubUserService) Register(ctx context.Context, name, email, password, confirmPassword string) (*model.User, string, error) {
	if s.registerErr != nil {
		return nil, "", s.registerErr
	}
	return &model.User{ID: 1, Name: name, Email: email}, "tok-registered", nil
}

func (s *stubUserService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	if s.loginErr != nil {
		return nil, "", s.loginErr
	}
	return &model.User{ID: 1, Name: "Alice", Email: email}, "tok-login", nil
}

func (s *stubUserService) CreateGuest(ctx context.Context) (model.Identity, string, error) {
	return model.Identity{Owner: model.GuestOwner(), DisplayName: "Guest"}, "tok-guest", nil
}

func (s *stubUserService) Logout(ctx context.Context, tokenString string) error { return nil }

func (s *stubUserService) ResolveIdentity(ctx context.Context, tokenString string) (*model.Identity, error) {
	if tokenString == "" {
		return nil, nil
	}
	return s.identity, nil
}

func newUserRouter(svc service.UserService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewUserHandler(svc, testSessionCfg)
	router.POST("/register", h.Register)
	router.POST("/login", h.Login)
	router.GET("/session", h.Session)
	router.POST("/guest", h.Guest)
	router.POST("/logout", h.Logout)
	return router
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestRegisterEndpoint(t *testing.T) {
	router := newUserRouter(&stubUserService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/register",
		strings.NewReader(`{"name":"Alice","email":"alice@example.com","password":"secret1","confirmPassword":"secret1"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "1", body["ownerId"])
	assert.Equal(t, "Alice", body["name"])
	assert.Equal(t, "alice@example.com", body["email"])

	// 注册成功即种下会话 Cookie
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, "kl_session", cookies[0].Name)
	assert.Equal(t, "tok-registered", cookies[0].Value)
}

func TestRegisterEndpointValidationError(t *testing.T) {
	router := newUserRouter(&stubUserService{registerErr: service.ErrValidation})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, false, body["success"])
	assert.NotEmpty(t, body["message"])
}

func TestLoginEndpointInvalidCredentials(t *testing.T) {
	router := newUserRouter(&stubUserService{loginErr: service.ErrInvalidCredentials})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login",
		strings.NewReader(`{"email":"alice@example.com","password":"wrong"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSessionEndpointAnonymous(t *testing.T) {
	router := newUserRouter(&stubUserService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/session", nil)
	router.ServeHTTP(w, req)

	// 匿名访问 /session 不是错误，而是带 allowGuest 提示的 200
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["notAuthenticated"])
	assert.Equal(t, true, body["allowGuest"])
}

func TestSessionEndpointAuthenticated(t *testing.T) {
	identity := model.Identity{Owner: model.RegisteredOwner(7), DisplayName: "Alice"}
	router := newUserRouter(&stubUserService{identity: &identity})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/session", nil)
	req.AddCookie(&http.Cookie{Name: "kl_session", Value: "tok"})
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "7", body["ownerId"])
	assert.Equal(t, false, body["isGuest"])
}

func TestGuestEndpoint(t *testing.T) {
	router := newUserRouter(&stubUserService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/guest", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, model.GuestOwnerID, body["ownerId"])
	assert.Equal(t, true, body["isGuest"])
}

func TestLogoutEndpointClearsCookie(t *testing.T) {
	router := newUserRouter(&stubUserService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: "kl_session", Value: "tok"})
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, "kl_session", cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
}

func TestSessionAuthMiddlewareRejectsAnonymous(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected",
		middleware.SessionAuth(&stubUserService{}, "kl_session"),
		func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"success": true}) },
	)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["allowGuest"])
}

func TestSessionAuthMiddlewareAcceptsBearerToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	identity := model.Identity{Owner: model.RegisteredOwner(7), DisplayName: "Alice"}
	router := gin.New()
	router.GET("/protected",
		middleware.SessionAuth(&stubUserService{identity: &identity}, "kl_session"),
		func(c *gin.Context) {
			got, ok := middleware.IdentityFromContext(c)
			require.True(t, ok)
			c.JSON(http.StatusOK, gin.H{"ownerId": got.Owner.String()})
		},
	)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer tok")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "7", body["ownerId"])
}
