package user

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/edutrack/core"
)

var (
	eventDateTag  = "eventdate"
	eventDateText = "date must be YYYY-MM-DD or an RFC 3339 date-time"
)

// InitValidators registers the user validators. Must be called after core.InitValidators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(eventDateTag, eventDateValidation)
	core.RegisterCustomTranslation(validate, translator, eventDateTag, eventDateText)
}

// Custom Validators

// eventDateValidation checks that the field holds a date ParseDate understands.
func eventDateValidation(fl validator.FieldLevel) bool {
	_, _, err := ParseDate(fl.Field().String())
	return err == nil
}
