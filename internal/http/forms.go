package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"password-dashboard/internal/service"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"form", "json"} {
				if name := strings.Split(f.Tag.Get(tag), ",")[0]; name != "" && name != "-" {
					return name
				}
			}
			return f.Name
		})
	}
}

type registerForm struct {
	Name            string `form:"name" binding:"required"`
	Email           string `form:"email" binding:"required,email"`
	Password        string `form:"password" binding:"required"`
	ConfirmPassword string `form:"confirm_password" binding:"required,eqfield=Password"`
}

type loginForm struct {
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required"`
	Remember bool   `form:"remember"`
}

type credentialForm struct {
	WebAddress string `form:"webaddress" binding:"required"`
	Username   string `form:"username" binding:"required"`
	Email      string `form:"email" binding:"required,email"`
	Password   string `form:"password" binding:"required"`
}

func (f credentialForm) input() service.CredentialInput {
	return service.CredentialInput{
		WebAddress: f.WebAddress,
		Username:   f.Username,
		Email:      f.Email,
		Password:   f.Password,
	}
}

type accountForm struct {
	Name  string `form:"name" binding:"required"`
	Email string `form:"email" binding:"required,email"`
}

type resetRequestForm struct {
	Email string `form:"email" binding:"required,email"`
}

type resetPasswordForm struct {
	Password        string `form:"password" binding:"required"`
	ConfirmPassword string `form:"confirm_password" binding:"required,eqfield=Password"`
}

type generateForm struct {
	Length         int  `form:"length" binding:"required,min=1,max=128"`
	IncludeDigits  bool `form:"include_digits"`
	IncludeSpecial bool `form:"include_special"`
}

type capturePayload struct {
	WebURL   string `json:"web_url"`
	Password string `json:"password"`
}

// formErrors turns a binding or service error into per-field messages. It
// returns nil for errors that are not about user input.
func formErrors(err error) map[string][]string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(map[string][]string, len(verrs))
		for _, fe := range verrs {
			out[fe.Field()] = append(out[fe.Field()], fieldMessage(fe))
		}
		return out
	}
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		return ve.Fields
	}
	return nil
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Invalid email address."
	case "eqfield":
		return fmt.Sprintf("Field must be equal to %s.", strings.ToLower(fe.Param()))
	case "min":
		return fmt.Sprintf("Must be at least %s.", fe.Param())
	case "max":
		return fmt.Sprintf("Must be at most %s.", fe.Param())
	default:
		return "Invalid value."
	}
}

// bindForm binds the request into form and returns per-field messages when
// the submission is not acceptable.
func bindForm(c *gin.Context, form any) map[string][]string {
	err := c.ShouldBind(form)
	if err == nil {
		return nil
	}
	if errs := formErrors(err); errs != nil {
		return errs
	}
	return map[string][]string{"form": {"Invalid form submission."}}
}
