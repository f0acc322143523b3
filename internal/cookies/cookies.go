package cookies

import (
	"net/http"
	"strings"

	"authgate/internal/config"
)

// The two credential carriers exposed to clients.
const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
)

// Transport packages tokens into response cookies. It holds no business
// state; all attributes come from configuration.
type Transport struct {
	cfg config.CookieConfig
}

func NewTransport(cfg config.CookieConfig) Transport {
	if cfg.Path == "" {
		cfg.Path = "/"
	}
	return Transport{cfg: cfg}
}

// SetLogin attaches both credential cookies to the response.
func (t Transport) SetLogin(w http.ResponseWriter, accessToken string, refreshToken string) {
	t.set(w, AccessTokenCookie, accessToken, t.cfg.MaxAge)
	t.set(w, RefreshTokenCookie, refreshToken, t.cfg.MaxAge)
}

// ClearLogin expires both cookies. Attributes other than max-age match
// SetLogin exactly; a mismatched path or domain would silently fail to
// delete the cookie.
func (t Transport) ClearLogin(w http.ResponseWriter) {
	t.set(w, AccessTokenCookie, "", -1)
	t.set(w, RefreshTokenCookie, "", -1)
}

func (t Transport) set(w http.ResponseWriter, name string, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		MaxAge:   maxAge,
		Path:     t.cfg.Path,
		Domain:   t.cfg.Domain,
		Secure:   t.cfg.Secure,
		HttpOnly: t.cfg.HTTPOnly,
		SameSite: sameSite(t.cfg.SameSite),
	})
}

func sameSite(mode string) http.SameSite {
	switch strings.ToLower(mode) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
