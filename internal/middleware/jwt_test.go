package middleware

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sincarebunch/barbershop-api/internal/model"
	"github.com/sincarebunch/barbershop-api/internal/utils"
)

func newIssuer(t *testing.T) *utils.TokenIssuer {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	return utils.NewTokenIssuer(key, &key.PublicKey, time.Minute)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) utils.Envelope {
	t.Helper()
	var env utils.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

// protected serves a route behind JWTAuth (and optional extra middleware)
// that echoes the authenticated user id.
func protected(v TokenVerifier, extra ...echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	mws := append([]echo.MiddlewareFunc{JWTAuth(v)}, extra...)
	e.GET("/me", func(c echo.Context) error {
		id, _ := UserID(c)
		cl, _ := ClaimsFrom(c)
		return c.JSON(http.StatusOK, echo.Map{"id": id, "email": cl.Email})
	}, mws...)
	return e
}

func TestJWTAuth_CookieAndBearer(t *testing.T) {
	iss := newIssuer(t)
	tok, err := iss.IssueAccessToken(model.Profile{ID: 7, Email: "a@x.com", Role: model.RoleCustomer})
	require.NoError(t, err)
	e := protected(iss)

	t.Run("cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(&http.Cookie{Name: utils.AccessTokenCookie, Value: tok.Token})
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"id":7,"email":"a@x.com"}`, rec.Body.String())
	})
	t.Run("bearer", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok.Token)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
	t.Run("cookie wins over bearer", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(&http.Cookie{Name: utils.AccessTokenCookie, Value: tok.Token})
		req.Header.Set(echo.HeaderAuthorization, "Bearer garbage")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestJWTAuth_Rejects(t *testing.T) {
	iss := newIssuer(t)
	other := newIssuer(t)
	foreign, err := other.IssueAccessToken(model.Profile{ID: 7, Role: model.RoleCustomer})
	require.NoError(t, err)
	e := protected(iss)

	for name, header := range map[string]string{
		"missing":      "",
		"garbage":      "Bearer not-a-jwt",
		"other key":    "Bearer " + foreign.Token,
		"wrong scheme": "Basic " + foreign.Token,
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if header != "" {
				req.Header.Set(echo.HeaderAuthorization, header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			require.Equal(t, http.StatusUnauthorized, rec.Code)
			env := decode(t, rec)
			assert.True(t, env.Error)
			assert.Equal(t, "Unauthorized", env.Message)
		})
	}
}
