package forms

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

var personNameRegex = regexp.MustCompile(`^[\p{L}\s'-]+$`)

func newValidate(now func() time.Time) *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("decimal", func(fl validator.FieldLevel) bool {
		_, err := decimal.NewFromString(strings.TrimSpace(fl.Field().String()))
		return err == nil
	})
	_ = v.RegisterValidation("positive", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(strings.TrimSpace(fl.Field().String()))
		return err == nil && d.IsPositive()
	})
	_ = v.RegisterValidation("date", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(dateLayout, fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("notpast", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if _, err := time.Parse(dateLayout, value); err != nil {
			return false
		}
		// ISO dates compare lexically.
		return value >= now().Format(dateLayout)
	})
	_ = v.RegisterValidation("notfuture", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if _, err := time.Parse(dateLayout, value); err != nil {
			return false
		}
		return value <= now().Format(dateLayout)
	})
	_ = v.RegisterValidation("personname", func(fl validator.FieldLevel) bool {
		return personNameRegex.MatchString(fl.Field().String())
	})
	return v
}

func messageFor(err error) Message {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return Message{Key: "validation." + fe.Tag(), Param: fe.Param()}
	}
	return Message{Key: "validation.invalid"}
}
