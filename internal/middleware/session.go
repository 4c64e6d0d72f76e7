package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"payswiftly/internal/config"
	"payswiftly/internal/session"
)

const sessionContextKey = "session"

// Sessions binds every request to a browser session identified by a cookie,
// issuing a new identifier when the cookie is missing or malformed.
func Sessions(store session.Store, cfg config.SessionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(cfg.CookieName)
		if err == nil {
			if _, parseErr := uuid.Parse(sid); parseErr != nil {
				err = parseErr
			}
		}
		if err != nil {
			sid = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(cfg.CookieName, sid, int(cfg.TTL.Seconds()), "/", "", cfg.Secure, true)
		}

		c.Set(sessionContextKey, session.New(sid, store, cfg.TTL))
		c.Next()
	}
}

// SessionFrom returns the session bound by Sessions, or nil outside of it.
func SessionFrom(c *gin.Context) *session.Session {
	v, ok := c.Get(sessionContextKey)
	if !ok {
		return nil
	}
	sess, _ := v.(*session.Session)
	return sess
}
