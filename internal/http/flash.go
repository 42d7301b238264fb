package http

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	flashCookie = "flash"
	flashKey    = "flashes"
	flashMaxAge = 300

	flashSuccess = "success"
	flashInfo    = "info"
	flashDanger  = "danger"
)

type flashMessage struct {
	Category string `json:"c"`
	Message  string `json:"m"`
}

// addFlash queues a message for the next rendered page. Messages travel in a
// short-lived cookie so they survive a redirect.
func (h *Handler) addFlash(c *gin.Context, category, message string) {
	msgs := append(flashes(c), flashMessage{Category: category, Message: message})
	c.Set(flashKey, msgs)

	raw, err := json.Marshal(msgs)
	if err != nil {
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookie, base64.RawURLEncoding.EncodeToString(raw), flashMaxAge, "/", "", h.secureCookies, true)
}

// consumeFlashes returns every queued message and clears them.
func (h *Handler) consumeFlashes(c *gin.Context) []flashMessage {
	msgs := flashes(c)
	if len(msgs) == 0 {
		return nil
	}
	c.Set(flashKey, []flashMessage{})
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookie, "", -1, "/", "", h.secureCookies, true)
	return msgs
}

// flashes returns the messages known to this request, seeding them from the
// cookie on first use.
func flashes(c *gin.Context) []flashMessage {
	if v, ok := c.Get(flashKey); ok {
		msgs, _ := v.([]flashMessage)
		return msgs
	}
	msgs := decodeFlashCookie(c)
	c.Set(flashKey, msgs)
	return msgs
}

func decodeFlashCookie(c *gin.Context) []flashMessage {
	value, err := c.Cookie(flashCookie)
	if err != nil || value == "" {
		return nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil
	}
	var msgs []flashMessage
	if err := json.Unmarshal(raw, &msgs); err != nil {
		return nil
	}
	return msgs
}
