package http

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"password-dashboard/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

func loadTemplates() *template.Template {
	funcs := template.FuncMap{
		"fieldErrors": func(errs map[string][]string, field string) []string {
			return errs[field]
		},
		"fieldOf": func(name, label, typ string, value any, errs map[string][]string) fieldView {
			return fieldView{Name: name, Label: label, Type: typ, Value: value, Errors: errs[name]}
		},
	}
	return template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
}

type fieldView struct {
	Name   string
	Label  string
	Type   string
	Value  any
	Errors []string
}

// page is the data every template receives. Form is never nil so templates
// can read its fields unconditionally.
type page struct {
	Title      string
	User       *domain.User
	PictureURL string
	Flashes    []flashMessage
	Form       any
	Errors     map[string][]string
	Data       gin.H
}

func (h *Handler) render(c *gin.Context, status int, name string, p page) {
	if p.User == nil {
		p.User = currentUser(c)
	}
	if p.User != nil && p.PictureURL == "" {
		p.PictureURL = h.users.PictureURL(c.Request.Context(), p.User)
	}
	if p.Form == nil {
		p.Form = struct{}{}
	}
	p.Flashes = h.consumeFlashes(c)
	c.HTML(status, name, p)
}

// renderError renders the error page. Unexpected errors are logged and only a
// generic message reaches the browser.
func (h *Handler) renderError(c *gin.Context, status int, err error) {
	msg := http.StatusText(status)
	switch status {
	case http.StatusNotFound:
		msg = "The page you are looking for does not exist."
	case http.StatusForbidden:
		msg = "That request did not come from this site."
	case http.StatusInternalServerError:
		msg = "Something went wrong on our side. Please try again."
	}
	if err != nil && status >= http.StatusInternalServerError {
		h.logger.WithError(err).WithField("path", c.Request.URL.Path).Error("request failed")
	}
	h.render(c, status, "error.html", page{
		Title: http.StatusText(status),
		Data:  gin.H{"Status": status, "Message": msg},
	})
	c.Abort()
}
