package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"password-dashboard/internal/service"
)

const resetRequestedMessage = "If an account exists for that email, a reset link has been sent."

func (h *Handler) home(c *gin.Context) {
	h.render(c, http.StatusOK, "home.html", page{Title: "Home"})
}

func (h *Handler) registerPage(c *gin.Context) {
	h.render(c, http.StatusOK, "register.html", page{Title: "Register", Form: registerForm{}})
}

func (h *Handler) register(c *gin.Context) {
	var form registerForm
	if errs := bindForm(c, &form); errs != nil {
		h.render(c, http.StatusBadRequest, "register.html", page{Title: "Register", Form: form, Errors: errs})
		return
	}

	_, err := h.users.Register(c.Request.Context(), service.RegisterInput{
		Name:     form.Name,
		Email:    form.Email,
		Password: form.Password,
	})
	switch {
	case err == nil:
	case errors.Is(err, service.ErrDuplicateEmail):
		h.render(c, http.StatusBadRequest, "register.html", page{
			Title:  "Register",
			Form:   form,
			Errors: map[string][]string{"email": {"That email is taken. Please choose a different one."}},
		})
		return
	default:
		if errs := formErrors(err); errs != nil {
			h.render(c, http.StatusBadRequest, "register.html", page{Title: "Register", Form: form, Errors: errs})
			return
		}
		h.renderError(c, http.StatusInternalServerError, err)
		return
	}

	h.addFlash(c, flashSuccess, "Account Created. Now you can login.")
	c.Redirect(http.StatusFound, "/login")
}

func (h *Handler) loginPage(c *gin.Context) {
	h.render(c, http.StatusOK, "login.html", page{
		Title: "Login",
		Form:  loginForm{},
		Data:  gin.H{"Next": safeNext(c.Query("next"))},
	})
}

func (h *Handler) login(c *gin.Context) {
	next := safeNext(c.Query("next"))
	var form loginForm
	if errs := bindForm(c, &form); errs != nil {
		h.render(c, http.StatusBadRequest, "login.html", page{Title: "Login", Form: form, Errors: errs, Data: gin.H{"Next": next}})
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), form.Email, form.Password)
	if err != nil {
		if !errors.Is(err, service.ErrInvalidCredentials) {
			h.renderError(c, http.StatusInternalServerError, err)
			return
		}
		h.addFlash(c, flashDanger, "Email or password does not match.")
		form.Password = ""
		h.render(c, http.StatusUnauthorized, "login.html", page{Title: "Login", Form: form, Data: gin.H{"Next": next}})
		return
	}

	session, err := h.sessions.Issue(c.Request.Context(), user, form.Remember)
	if err != nil {
		h.renderError(c, http.StatusInternalServerError, err)
		return
	}
	maxAge := 0
	if session.Remember {
		maxAge = int(time.Until(session.ExpiresAt).Seconds())
	}
	h.setSessionCookie(c, session.Token, maxAge)

	if next == "" {
		next = "/manager"
	}
	c.Redirect(http.StatusFound, next)
}

func (h *Handler) logout(c *gin.Context) {
	if token, ok := c.Get(sessionKey); ok {
		h.sessions.Revoke(c.Request.Context(), token.(string))
	}
	h.clearSessionCookie(c)
	c.Redirect(http.StatusFound, "/")
}

func (h *Handler) resetRequestPage(c *gin.Context) {
	h.render(c, http.StatusOK, "reset_request.html", page{Title: "Reset Password", Form: resetRequestForm{}})
}

func (h *Handler) resetRequest(c *gin.Context) {
	var form resetRequestForm
	if errs := bindForm(c, &form); errs != nil {
		h.render(c, http.StatusBadRequest, "reset_request.html", page{Title: "Reset Password", Form: form, Errors: errs})
		return
	}

	if _, err := h.resets.RequestReset(c.Request.Context(), form.Email); err != nil {
		if errs := formErrors(err); errs != nil {
			h.render(c, http.StatusBadRequest, "reset_request.html", page{Title: "Reset Password", Form: form, Errors: errs})
			return
		}
		h.renderError(c, http.StatusInternalServerError, err)
		return
	}

	h.addFlash(c, flashInfo, resetRequestedMessage)
	c.Redirect(http.StatusFound, "/login")
}

func (h *Handler) resetTokenPage(c *gin.Context) {
	if _, err := h.resets.VerifyReset(c.Request.Context(), c.Param("token")); err != nil {
		h.invalidResetToken(c, err)
		return
	}
	h.render(c, http.StatusOK, "reset_token.html", page{
		Title: "Reset Password",
		Form:  resetPasswordForm{},
		Data:  gin.H{"Token": c.Param("token")},
	})
}

func (h *Handler) resetToken(c *gin.Context) {
	token := c.Param("token")
	if _, err := h.resets.VerifyReset(c.Request.Context(), token); err != nil {
		h.invalidResetToken(c, err)
		return
	}
	var form resetPasswordForm
	if errs := bindForm(c, &form); errs != nil {
		h.render(c, http.StatusBadRequest, "reset_token.html", page{
			Title:  "Reset Password",
			Form:   resetPasswordForm{},
			Errors: errs,
			Data:   gin.H{"Token": token},
		})
		return
	}

	err := h.resets.RedeemReset(c.Request.Context(), token, form.Password)
	if err != nil {
		if errs := formErrors(err); errs != nil {
			h.render(c, http.StatusBadRequest, "reset_token.html", page{
				Title:  "Reset Password",
				Form:   resetPasswordForm{},
				Errors: errs,
				Data:   gin.H{"Token": token},
			})
			return
		}
		h.invalidResetToken(c, err)
		return
	}

	h.addFlash(c, flashSuccess, "Your password has been updated. Now you can login.")
	c.Redirect(http.StatusFound, "/login")
}

func (h *Handler) invalidResetToken(c *gin.Context, err error) {
	if !errors.Is(err, service.ErrInvalidOrExpiredToken) {
		h.renderError(c, http.StatusInternalServerError, err)
		return
	}
	h.addFlash(c, flashDanger, "That is an invalid or expired token")
	c.Redirect(http.StatusFound, "/reset_password")
}
