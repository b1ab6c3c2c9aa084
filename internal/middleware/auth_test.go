package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hms-server/internal/models"
	"hms-server/internal/services"
	"hms-server/internal/utils"
)

type fakeUsers map[string]*models.User

func (f fakeUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, services.ErrUserNotFound
}

type fakeRevoker struct {
	revoked map[string]bool
	err     error
}

func (f *fakeRevoker) Revoke(_ context.Context, tokenID, _ string, _ time.Time) error {
	f.revoked[tokenID] = true
	return nil
}

func (f *fakeRevoker) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	return f.revoked[tokenID], f.err
}

type authFixture struct {
	issuer  *utils.TokenIssuer
	users   fakeUsers
	revoker *fakeRevoker
	router  *gin.Engine
}

func newAuthFixture() *authFixture {
	gin.SetMode(gin.TestMode)
	f := &authFixture{
		issuer: utils.NewTokenIssuer("test-secret", time.Hour),
		users: fakeUsers{
			"doc":  {BaseModel: models.BaseModel{ID: "doc"}, Name: "Dr", Role: models.RoleDoctor},
			"pat":  {BaseModel: models.BaseModel{ID: "pat"}, Name: "Pat", Role: models.RolePatient},
			"root": {BaseModel: models.BaseModel{ID: "root"}, Name: "Root", Role: models.RoleAdmin},
		},
		revoker: &fakeRevoker{revoked: map[string]bool{}},
	}

	r := gin.New()
	auth := AuthMiddleware(f.issuer, f.users, f.revoker)
	r.GET("/me", auth, func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		id, _ := GetUserIDFromContext(c)
		claims, _ := GetClaimsFromContext(c)
		c.JSON(http.StatusOK, gin.H{"id": id, "name": user.Name, "jti": claims.ID})
	})
	r.GET("/doctors-only", auth, RoleAuthMiddleware(models.RoleDoctor, models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	f.router = r
	return f
}

func (f *authFixture) get(t *testing.T, path, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	f.router.ServeHTTP(w, req)
	return w
}

func (f *authFixture) token(t *testing.T, userID string) string {
	t.Helper()
	tok, err := f.issuer.Issue(userID)
	require.NoError(t, err)
	return tok
}

func message(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body utils.ResponseData
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Message
}

func TestAuthMiddleware_AttachesUser(t *testing.T) {
	f := newAuthFixture()

	w := f.get(t, "/me", "Bearer "+f.token(t, "pat"))
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "pat", body["id"])
	assert.Equal(t, "Pat", body["name"])
	assert.NotEmpty(t, body["jti"])
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	f := newAuthFixture()
	expired := utils.NewTokenIssuer("test-secret", -time.Minute)
	expiredToken, err := expired.Issue("pat")
	require.NoError(t, err)
	foreign, err := utils.NewTokenIssuer("other-secret", time.Hour).Issue("pat")
	require.NoError(t, err)

	tests := []struct {
		name    string
		header  string
		message string
	}{
		{"no header", "", "Not authorized, no token"},
		{"wrong scheme", "Basic abc", "Not authorized, no token"},
		{"empty bearer", "Bearer ", "Not authorized, no token"},
		{"garbage token", "Bearer not.a.jwt", "Not authorized, token failed"},
		{"expired token", "Bearer " + expiredToken, "Not authorized, token failed"},
		{"wrong secret", "Bearer " + foreign, "Not authorized, token failed"},
		{"deleted user", "Bearer " + f.token(t, "ghost"), "Not authorized, user not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.get(t, "/me", tt.header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, tt.message, message(t, w))
		})
	}
}

func TestAuthMiddleware_RevokedToken(t *testing.T) {
	f := newAuthFixture()
	tok := f.token(t, "pat")
	claims, err := f.issuer.Validate(tok)
	require.NoError(t, err)
	f.revoker.revoked[claims.ID] = true

	w := f.get(t, "/me", "Bearer "+tok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Not authorized, token revoked", message(t, w))

	// a fresh token for the same user still works
	assert.Equal(t, http.StatusOK, f.get(t, "/me", "Bearer "+f.token(t, "pat")).Code)
}

func TestAuthMiddleware_RevocationStoreDown(t *testing.T) {
	f := newAuthFixture()
	f.revoker.err = errors.New("redis down")

	w := f.get(t, "/me", "Bearer "+f.token(t, "pat"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRoleAuthMiddleware(t *testing.T) {
	f := newAuthFixture()

	assert.Equal(t, http.StatusNoContent, f.get(t, "/doctors-only", "Bearer "+f.token(t, "doc")).Code)
	assert.Equal(t, http.StatusNoContent, f.get(t, "/doctors-only", "Bearer "+f.token(t, "root")).Code)

	w := f.get(t, "/doctors-only", "Bearer "+f.token(t, "pat"))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "User role 'PATIENT' is not authorized to access this route", message(t, w))
}

func TestRoleAuthMiddleware_WithoutAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	RoleAuthMiddleware(models.RoleAdmin)(c)
	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
