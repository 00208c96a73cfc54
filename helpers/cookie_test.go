package helpers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testHashKey = "0123456789abcdef0123456789abcdef"

func requestWithCookies(rec *httptest.ResponseRecorder) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, ck := range rec.Result().Cookies() {
		req.AddCookie(ck)
	}
	return req
}

func TestCookieRoundTrip(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, SetCookie(rec, "sleeptips", testHashKey, map[string]string{"access_token": "abc"}))

	raw, err := GetCookie(requestWithCookies(rec), "sleeptips", testHashKey)
	require.NoError(t, err)

	var tokens map[string]string
	require.NoError(t, json.Unmarshal(raw, &tokens))
	assert.Equal(t, "abc", tokens["access_token"])
}

func TestCookieWrongKey(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, SetCookie(rec, "sleeptips", testHashKey, "value"))

	_, err := GetCookie(requestWithCookies(rec), "sleeptips", "fedcba9876543210fedcba9876543210")
	assert.Error(t, err)
}

func TestCookieMissing(t *testing.T) {
	_, err := GetCookie(httptest.NewRequest(http.MethodGet, "/", nil), "sleeptips", testHashKey)
	assert.Error(t, err)
}
