package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splitlease/message-curation/internal/model"
	"github.com/splitlease/message-curation/internal/utils"
)

const testSecret = "test-secret"

func runProtected(t *testing.T, authHeader string, mws ...echo.MiddlewareFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	h := func(c echo.Context) error { return c.String(http.StatusOK, "reached") }
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	req := httptest.NewRequest(http.MethodGet, "/admin/threads", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))
	return rec
}

func TestJWTAuthRejectsMissingToken(t *testing.T) {
	rec := runProtected(t, "", JWTAuth(testSecret))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"Unauthorized"}`, rec.Body.String())
}

func TestJWTAuthRejectsGarbageToken(t *testing.T) {
	rec := runProtected(t, "Bearer not.a.token", JWTAuth(testSecret))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthRejectsWrongSecret(t *testing.T) {
	tok, err := utils.NewAccessToken("other-secret", 1, model.RoleAdmin, 5)
	require.NoError(t, err)
	rec := runProtected(t, "Bearer "+tok.Token, JWTAuth(testSecret))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthAcceptsValidToken(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 1, model.RoleAdmin, 5)
	require.NoError(t, err)
	rec := runProtected(t, "Bearer "+tok.Token, JWTAuth(testSecret))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "reached", rec.Body.String())
}

func TestRequireCuratorAllowsAdminAndSupport(t *testing.T) {
	for _, role := range []string{model.RoleAdmin, model.RoleSupportStaff} {
		tok, err := utils.NewAccessToken(testSecret, 1, role, 5)
		require.NoError(t, err)
		rec := runProtected(t, "Bearer "+tok.Token, JWTAuth(testSecret), RequireCurator())
		assert.Equal(t, http.StatusOK, rec.Code, role)
	}
}

// A valid token with a non-curator role gets the same 401 envelope as a
// missing login, not a 403.
func TestRequireCuratorRejectsMemberRole(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 1, model.RoleUser, 5)
	require.NoError(t, err)
	rec := runProtected(t, "Bearer "+tok.Token, JWTAuth(testSecret), RequireCurator())
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"Unauthorized"}`, rec.Body.String())
}
