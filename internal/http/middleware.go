package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"password-dashboard/internal/domain"
	"password-dashboard/internal/service"
)

const (
	sessionCookie  = "session"
	currentUserKey = "currentUser"
	sessionKey     = "sessionToken"
)

func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := h.logger.WithFields(logrus.Fields{
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    c.Writer.Status(),
			"latency":   time.Since(start),
			"client_ip": c.ClientIP(),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Warn("request")
			return
		}
		entry.Debug("request")
	}
}

// loadSession resolves the session cookie into the current user. A cookie
// that no longer resolves is cleared; lookup failures leave it in place.
func (h *Handler) loadSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(sessionCookie)
		if err != nil || token == "" {
			c.Next()
			return
		}
		user, err := h.sessions.Resolve(c.Request.Context(), token)
		if errors.Is(err, service.ErrUnauthenticated) {
			h.clearSessionCookie(c)
			c.Next()
			return
		}
		if err != nil {
			h.renderError(c, http.StatusInternalServerError, fmt.Errorf("resolve session: %w", err))
			return
		}
		c.Set(currentUserKey, user)
		c.Set(sessionKey, token)
		c.Next()
	}
}

// sameSiteOnly refuses state-changing GETs the browser marks as coming from
// another site. Without Sec-Fetch-Site, a Referer must name this host.
func (h *Handler) sameSiteOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.GetHeader("Sec-Fetch-Site") {
		case "same-origin", "none":
			c.Next()
			return
		case "":
			if ref := c.GetHeader("Referer"); ref != "" {
				u, err := url.Parse(ref)
				if err != nil || u.Host != c.Request.Host {
					break
				}
			}
			c.Next()
			return
		}
		h.logger.WithFields(logrus.Fields{
			"path":    c.Request.URL.Path,
			"site":    c.GetHeader("Sec-Fetch-Site"),
			"referer": c.GetHeader("Referer"),
		}).Warn("cross-site request refused")
		h.renderError(c, http.StatusForbidden, nil)
	}
}

func (h *Handler) requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentUser(c) != nil {
			c.Next()
			return
		}
		h.addFlash(c, flashInfo, "Please log in to access this page.")
		c.Redirect(http.StatusFound, "/login?next="+url.QueryEscape(c.Request.URL.RequestURI()))
		c.Abort()
	}
}

func (h *Handler) redirectIfAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentUser(c) != nil {
			c.Redirect(http.StatusFound, "/manager")
			c.Abort()
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) *domain.User {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*domain.User)
	return user
}

func (h *Handler) setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, token, maxAge, "/", "", h.secureCookies, true)
}

func (h *Handler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, "", -1, "/", "", h.secureCookies, true)
}

// safeNext accepts only local absolute paths, so a crafted login link cannot
// bounce the user to another site.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, `/\`) {
		return ""
	}
	u, err := url.Parse(next)
	if err != nil || u.IsAbs() || u.Host != "" {
		return ""
	}
	return next
}
