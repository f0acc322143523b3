package cookies

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"authgate/internal/config"
)

func testConfig() config.CookieConfig {
	return config.CookieConfig{
		MaxAge:   3600,
		Path:     "/",
		Domain:   "example.com",
		Secure:   true,
		HTTPOnly: true,
		SameSite: "lax",
	}
}

func cookieByName(t *testing.T, cookies []*http.Cookie, name string) *http.Cookie {
	t.Helper()
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %q not set", name)
	return nil
}

func TestSetLogin(t *testing.T) {
	transport := NewTransport(testConfig())
	rec := httptest.NewRecorder()

	transport.SetLogin(rec, "Bearer abc", "opaque-refresh")

	result := rec.Result().Cookies()
	require.Len(t, result, 2)

	access := cookieByName(t, result, AccessTokenCookie)
	assert.Equal(t, "Bearer abc", access.Value)
	assert.Equal(t, 3600, access.MaxAge)
	assert.Equal(t, "/", access.Path)
	assert.Equal(t, "example.com", access.Domain)
	assert.True(t, access.Secure)
	assert.True(t, access.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, access.SameSite)

	refresh := cookieByName(t, result, RefreshTokenCookie)
	assert.Equal(t, "opaque-refresh", refresh.Value)
}

// Clearing must carry the same path and domain as the set, otherwise the
// browser treats it as a different cookie and keeps the original.
func TestClearLoginMatchesSetAttributes(t *testing.T) {
	transport := NewTransport(testConfig())
	rec := httptest.NewRecorder()

	transport.ClearLogin(rec)

	result := rec.Result().Cookies()
	require.Len(t, result, 2)

	for _, name := range []string{AccessTokenCookie, RefreshTokenCookie} {
		cleared := cookieByName(t, result, name)
		assert.Empty(t, cleared.Value)
		assert.Negative(t, cleared.MaxAge)
		assert.Equal(t, "/", cleared.Path)
		assert.Equal(t, "example.com", cleared.Domain)
		assert.True(t, cleared.Secure)
		assert.True(t, cleared.HttpOnly)
		assert.Equal(t, http.SameSiteLaxMode, cleared.SameSite)
	}
}

func TestTransportDefaultsPath(t *testing.T) {
	transport := NewTransport(config.CookieConfig{})
	rec := httptest.NewRecorder()

	transport.SetLogin(rec, "a", "r")

	for _, c := range rec.Result().Cookies() {
		assert.Equal(t, "/", c.Path)
	}
}

func TestSameSiteModes(t *testing.T) {
	assert.Equal(t, http.SameSiteStrictMode, sameSite("strict"))
	assert.Equal(t, http.SameSiteNoneMode, sameSite("none"))
	assert.Equal(t, http.SameSiteLaxMode, sameSite("lax"))
	assert.Equal(t, http.SameSiteLaxMode, sameSite(""))
}
