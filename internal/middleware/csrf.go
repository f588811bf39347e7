package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

const (
	CSRFCookie = "csrf-token"
	CSRFHeader = "X-CSRF-Token"
	CSRFMaxAge = 24 * time.Hour
)

// csrfClockSkew is how far in the future a token timestamp may lie.
const csrfClockSkew = 5 * time.Minute

// CSRFProtected lists the form endpoints that require a token.
var CSRFProtected = []string{"/api/contact", "/api/newsletter", "/api/create-checkout-session"}

// CSRFConfig configures the double-submit CSRF guard.
type CSRFConfig struct {
	Secret    string
	Secure    bool
	Protected []string
	Now       func() time.Time
}

// CSRF mints a signed "timestamp.hmac" cookie on page GETs and, for POSTs
// to protected paths, requires the same value in the X-CSRF-Token header.
// With no secret the guard is a passthrough.  /api/stripe/* is never
// checked.
func CSRF(cfg CSRFConfig) echo.MiddlewareFunc {
	if cfg.Secret == "" {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	if cfg.Protected == nil {
		cfg.Protected = CSRFProtected
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	protected := make(map[string]bool, len(cfg.Protected))
	for _, p := range cfg.Protected {
		protected[p] = true
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			r := c.Request()
			path := r.URL.Path
			if strings.HasPrefix(path, "/api/stripe/") {
				return next(c)
			}

			switch {
			case r.Method == http.MethodGet && !strings.HasPrefix(path, "/api/"):
				c.SetCookie(&http.Cookie{
					Name:     CSRFCookie,
					Value:    NewCSRFToken(cfg.Secret, cfg.Now()),
					Path:     "/",
					HttpOnly: false,
					Secure:   cfg.Secure,
					SameSite: http.SameSiteStrictMode,
				})
			case r.Method == http.MethodPost && protected[path]:
				cookie, err := c.Cookie(CSRFCookie)
				header := r.Header.Get(CSRFHeader)
				if err != nil || cookie.Value == "" || header == "" || cookie.Value != header {
					return c.JSON(http.StatusForbidden, echo.Map{"error": "Invalid CSRF token"})
				}
				if msg := checkCSRFToken(cfg.Secret, header, cfg.Now()); msg != "" {
					return c.JSON(http.StatusForbidden, echo.Map{"error": msg})
				}
			}
			return next(c)
		}
	}
}

// NewCSRFToken returns "<unix millis>.<hex hmac-sha256 of millis>".
func NewCSRFToken(secret string, now time.Time) string {
	ts := strconv.FormatInt(now.UnixMilli(), 10)
	return ts + "." + signCSRF(secret, ts)
}

func signCSRF(secret, data string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

// checkCSRFToken returns the rejection message, or "" when the token is
// good.
func checkCSRFToken(secret, token string, now time.Time) string {
	ts, sig, ok := strings.Cut(token, ".")
	if !ok || strings.Contains(sig, ".") {
		return "Invalid CSRF token"
	}
	if subtle.ConstantTimeCompare([]byte(signCSRF(secret, ts)), []byte(sig)) != 1 {
		return "Invalid CSRF token"
	}
	ms, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return "Invalid CSRF token"
	}
	age := now.Sub(time.UnixMilli(ms))
	if age < -csrfClockSkew {
		return "Invalid CSRF token"
	}
	if age > CSRFMaxAge {
		return "CSRF token expired"
	}
	return ""
}
