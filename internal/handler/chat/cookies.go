package chat

import (
	"net/http"
	"strings"
	"time"
)

const (
	// CookieName holds the visitor's chat session id.
	CookieName = "portfolio_session"
	// CookieMaxAge matches the default idle session lifetime.
	CookieMaxAge = 30 * time.Minute
	// SessionHeader carries the session id for clients that cannot keep cookies.
	// Responses echo it and session creation accepts it when no cookie is sent.
	SessionHeader = "X-Session-Id"
)

func setSessionCookie(w http.ResponseWriter, r *http.Request, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(CookieMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// sessionFromRequest prefers the cookie and falls back to SessionHeader.
func sessionFromRequest(r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	return strings.TrimSpace(r.Header.Get(SessionHeader))
}
