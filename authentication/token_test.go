package authentication

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sleep-tips/apperror"
	"sleep-tips/config"
	"sleep-tips/helpers"

	"github.com/alicebob/miniredis/v2"
	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRegistry(t *testing.T) *miniredis.Miniredis {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	SetConnection(rdb, config.Config{
		AccessSecret:  "test-secret",
		CookieName:    "sleeptips",
		CookieHashKey: "0123456789abcdef0123456789abcdef",
	})
	return mr
}

func login(t *testing.T, userID string) *TokenDetails {
	t.Helper()

	td, err := CreateToken(userID)
	require.NoError(t, err)
	require.NoError(t, CreateAuth(context.Background(), userID, td))
	return td
}

func bearerRequest(token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/tips", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestAuthenticateBearer(t *testing.T) {
	setupRegistry(t)
	td := login(t, "user-1")

	userID, ad, err := Authenticate(bearerRequest(td.AccessToken))

	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
	assert.Equal(t, td.AccessUUID, ad.TokenUUID)
}

func TestAuthenticateCookie(t *testing.T) {
	setupRegistry(t)
	td := login(t, "user-2")

	rec := httptest.NewRecorder()
	require.NoError(t, helpers.SetCookie(rec, settings.CookieName, settings.CookieHashKey, map[string]string{AT: td.AccessToken}))
	req := httptest.NewRequest(http.MethodGet, "/tips", nil)
	for _, ck := range rec.Result().Cookies() {
		req.AddCookie(ck)
	}

	userID, _, err := Authenticate(req)

	require.NoError(t, err)
	assert.Equal(t, "user-2", userID)
}

func TestAuthenticateWithoutToken(t *testing.T) {
	setupRegistry(t)

	_, _, err := Authenticate(httptest.NewRequest(http.MethodGet, "/tips", nil))

	assert.ErrorIs(t, err, apperror.ErrNotLoggedIn)
}

func TestAuthenticateLoggedOut(t *testing.T) {
	setupRegistry(t)
	td := login(t, "user-1")

	deleted, err := DeleteAuth(context.Background(), td.AccessUUID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	_, _, err = Authenticate(bearerRequest(td.AccessToken))
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestAuthenticateExpiredInRegistry(t *testing.T) {
	mr := setupRegistry(t)
	td := login(t, "user-1")

	mr.FastForward(accessTokenTTL + time.Second)

	_, _, err := Authenticate(bearerRequest(td.AccessToken))
	assert.Error(t, err)
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	setupRegistry(t)

	claims := jwt.MapClaims{
		"access_uuid": "at_forged",
		"user_id":     "user-1",
		"exp":         time.Now().Add(time.Minute).Unix(),
	}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-secret"))
	require.NoError(t, err)

	_, err = VerifyToken(bearerRequest(forged))
	assert.Error(t, err)
}

func TestTokenAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	setupRegistry(t)
	td := login(t, "user-1")

	var caller, session string
	router := gin.New()
	router.GET("/tips", TokenAuthMiddleware(), func(c *gin.Context) {
		caller = CallerID(c)
		session, _ = SessionUser(c.Request.Context())
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, bearerRequest(td.AccessToken))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", caller)
	assert.Equal(t, "user-1", session)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tips", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionUserWithoutSession(t *testing.T) {
	_, err := SessionUser(context.Background())
	assert.ErrorIs(t, err, apperror.ErrNotLoggedIn)
}
