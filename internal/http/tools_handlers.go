package http

import (
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"password-dashboard/internal/generator"
)

func (h *Handler) generatePage(c *gin.Context) {
	defaults := generator.DefaultOptions()
	h.render(c, http.StatusOK, "generate.html", page{
		Title: "Generate Password",
		Form: generateForm{
			Length:         defaults.Length,
			IncludeDigits:  defaults.IncludeDigits,
			IncludeSpecial: defaults.IncludeSpecial,
		},
	})
}

func (h *Handler) generate(c *gin.Context) {
	var form generateForm
	if errs := bindForm(c, &form); errs != nil {
		h.render(c, http.StatusBadRequest, "generate.html", page{Title: "Generate Password", Form: form, Errors: errs})
		return
	}

	password, err := generator.Generate(generator.Options{
		Length:         form.Length,
		IncludeDigits:  form.IncludeDigits,
		IncludeSpecial: form.IncludeSpecial,
	})
	if err != nil {
		h.render(c, http.StatusBadRequest, "generate.html", page{
			Title:  "Generate Password",
			Form:   form,
			Errors: map[string][]string{"length": {err.Error()}},
		})
		return
	}

	h.render(c, http.StatusOK, "generate.html", page{
		Title: "Generate Password",
		Form:  form,
		Data:  gin.H{"Password": password},
	})
}

// savePassword is called by the browser extension. It answers in JSON only.
func (h *Handler) savePassword(c *gin.Context) {
	var req capturePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid JSON payload"})
		return
	}

	if _, err := h.captures.Capture(c.Request.Context(), req.WebURL, req.Password); err != nil {
		if errs := formErrors(err); errs != nil {
			fields := make([]string, 0, len(errs))
			for f := range errs {
				fields = append(fields, f)
			}
			sort.Strings(fields)
			c.JSON(http.StatusBadRequest, gin.H{"message": "Missing required field: " + strings.Join(fields, ", ")})
			return
		}
		h.logger.WithError(err).Error("save captured password")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to save password"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password saved successfully!"})
}
