package marker

import (
	"context"
	"net/http"
	"time"
)

// CookieName is the cookie a browser carries while suppressed.
const CookieName = "doNotInterruptForNow"

const cookieValue = "y"

// Cookie stores the marker in a browser cookie for the duration of one HTTP
// exchange. Expires is always set; the store never writes a session cookie.
type Cookie struct {
	w     http.ResponseWriter
	r     *http.Request
	clock Clock
	set   *http.Cookie
}

// NewCookie binds a cookie store to one request/response pair. A nil clock uses SystemClock.
func NewCookie(w http.ResponseWriter, r *http.Request, clock Clock) *Cookie {
	return &Cookie{w: w, r: r, clock: clockOrSystem(clock)}
}

// IsSuppressed implements Store. The browser drops the cookie at expiry, so
// presence is enough. A marker written earlier in the same exchange counts.
func (c *Cookie) IsSuppressed(_ context.Context) bool {
	if c.set != nil {
		return c.set.MaxAge >= 0 && c.clock.Now().Before(c.set.Expires)
	}
	ck, err := c.r.Cookie(CookieName)
	if err != nil {
		return false
	}
	return ck.Value == cookieValue
}

// SetSuppressed implements Store.
func (c *Cookie) SetSuppressed(_ context.Context) {
	ck := &http.Cookie{
		Name:     CookieName,
		Value:    cookieValue,
		Path:     "/",
		Expires:  ExpiryFrom(c.clock.Now()).UTC(),
		SameSite: http.SameSiteLaxMode,
	}
	c.set = ck
	http.SetCookie(c.w, ck)
}

// Clear expires the cookie immediately.
func (c *Cookie) Clear(_ context.Context) {
	ck := &http.Cookie{
		Name:    CookieName,
		Value:   "",
		Path:    "/",
		Expires: time.Unix(0, 0).UTC(),
		MaxAge:  -1,
	}
	c.set = ck
	http.SetCookie(c.w, ck)
}
