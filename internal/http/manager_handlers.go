package http

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"password-dashboard/internal/service"
)

const maxPictureBytes = 5 << 20

func (h *Handler) manager(c *gin.Context) {
	h.render(c, http.StatusOK, "manager.html", page{Title: "Manager"})
}

func (h *Handler) addPage(c *gin.Context) {
	h.render(c, http.StatusOK, "add.html", page{Title: "Add Password", Form: credentialForm{}})
}

func (h *Handler) add(c *gin.Context) {
	user := currentUser(c)
	var form credentialForm
	if errs := bindForm(c, &form); errs != nil {
		h.render(c, http.StatusBadRequest, "add.html", page{Title: "Add Password", Form: form, Errors: errs})
		return
	}

	if _, err := h.credentials.Add(c.Request.Context(), user.ID, form.input()); err != nil {
		if errs := formErrors(err); errs != nil {
			h.render(c, http.StatusBadRequest, "add.html", page{Title: "Add Password", Form: form, Errors: errs})
			return
		}
		if errors.Is(err, service.ErrUnauthenticated) {
			h.clearSessionCookie(c)
			c.Redirect(http.StatusFound, "/login")
			return
		}
		h.renderError(c, http.StatusInternalServerError, err)
		return
	}

	h.addFlash(c, flashSuccess, "Password saved.")
	c.Redirect(http.StatusFound, "/manager/display")
}

func (h *Handler) display(c *gin.Context) {
	creds, err := h.credentials.List(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		h.renderError(c, http.StatusInternalServerError, err)
		return
	}
	h.render(c, http.StatusOK, "display.html", page{
		Title: "Display Passwords",
		Data:  gin.H{"Credentials": creds},
	})
}

func (h *Handler) delete(c *gin.Context) {
	id, ok := credentialID(c)
	if !ok {
		h.renderError(c, http.StatusNotFound, nil)
		return
	}
	if err := h.credentials.Delete(c.Request.Context(), id, currentUser(c).ID); err != nil {
		h.credentialError(c, err)
		return
	}
	h.addFlash(c, flashSuccess, "Entry deleted.")
	c.Redirect(http.StatusFound, "/manager/display")
}

func (h *Handler) updatePage(c *gin.Context) {
	id, ok := credentialID(c)
	if !ok {
		h.renderError(c, http.StatusNotFound, nil)
		return
	}
	cred, err := h.credentials.Get(c.Request.Context(), id, currentUser(c).ID)
	if err != nil {
		h.credentialError(c, err)
		return
	}
	h.render(c, http.StatusOK, "update.html", page{
		Title: "Update",
		Form: credentialForm{
			WebAddress: cred.WebAddress,
			Username:   cred.Username,
			Email:      cred.Email,
			Password:   cred.Password,
		},
		Data: gin.H{"ID": cred.ID},
	})
}

func (h *Handler) update(c *gin.Context) {
	id, ok := credentialID(c)
	if !ok {
		h.renderError(c, http.StatusNotFound, nil)
		return
	}
	var form credentialForm
	if errs := bindForm(c, &form); errs != nil {
		h.render(c, http.StatusBadRequest, "update.html", page{Title: "Update", Form: form, Errors: errs, Data: gin.H{"ID": id}})
		return
	}

	if _, err := h.credentials.Update(c.Request.Context(), id, currentUser(c).ID, form.input()); err != nil {
		if errs := formErrors(err); errs != nil {
			h.render(c, http.StatusBadRequest, "update.html", page{Title: "Update", Form: form, Errors: errs, Data: gin.H{"ID": id}})
			return
		}
		h.credentialError(c, err)
		return
	}

	h.addFlash(c, flashSuccess, "Entry updated.")
	c.Redirect(http.StatusFound, "/manager/display")
}

// credentialError maps misses, including entries owned by someone else, to 404.
func (h *Handler) credentialError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrNotFound) {
		h.renderError(c, http.StatusNotFound, nil)
		return
	}
	h.renderError(c, http.StatusInternalServerError, err)
}

func credentialID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (h *Handler) accountPage(c *gin.Context) {
	user := currentUser(c)
	h.render(c, http.StatusOK, "account.html", page{
		Title: "Account",
		Form:  accountForm{Name: user.Name, Email: user.Email},
	})
}

func (h *Handler) account(c *gin.Context) {
	user := currentUser(c)
	var form accountForm
	if errs := bindForm(c, &form); errs != nil {
		h.render(c, http.StatusBadRequest, "account.html", page{Title: "Account", Form: form, Errors: errs})
		return
	}

	in := service.AccountInput{Name: form.Name, Email: form.Email}
	fh, err := c.FormFile("picture")
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	case err != nil:
		h.render(c, http.StatusBadRequest, "account.html", page{
			Title:  "Account",
			Form:   form,
			Errors: map[string][]string{"picture": {"Could not read the uploaded file."}},
		})
		return
	default:
		file, errs := openPicture(fh)
		if errs != nil {
			h.render(c, http.StatusBadRequest, "account.html", page{Title: "Account", Form: form, Errors: errs})
			return
		}
		defer file.Close()
		in.Picture = file
	}

	if _, err := h.users.UpdateAccount(c.Request.Context(), user.ID, in); err != nil {
		var errs map[string][]string
		if errors.Is(err, service.ErrDuplicateEmail) {
			errs = map[string][]string{"email": {"That email is taken. Please choose a different one."}}
		} else {
			errs = formErrors(err)
		}
		if errs != nil {
			h.render(c, http.StatusBadRequest, "account.html", page{Title: "Account", Form: form, Errors: errs})
			return
		}
		h.renderError(c, http.StatusInternalServerError, err)
		return
	}

	h.addFlash(c, flashSuccess, "Your account has been updated.")
	c.Redirect(http.StatusFound, "/manager/account")
}

func openPicture(fh *multipart.FileHeader) (multipart.File, map[string][]string) {
	if fh.Size > maxPictureBytes {
		return nil, map[string][]string{"picture": {fmt.Sprintf("Picture must be smaller than %d MB.", maxPictureBytes>>20)}}
	}
	file, err := fh.Open()
	if err != nil {
		return nil, map[string][]string{"picture": {"Could not read the uploaded file."}}
	}
	return file, nil
}
