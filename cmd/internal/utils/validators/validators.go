package validators

import (
	"reflect"
	"strings"

	"atendimentos/cmd/internal/recurrence"
	"atendimentos/cmd/internal/utils"

	"github.com/go-playground/validator/v10"
)

func IsIso8601(fl validator.FieldLevel) bool {
	_, err := utils.ParseTimestamp(fl.Field().String())
	return err == nil
}

func IsRecurrencePolicy(fl validator.FieldLevel) bool {
	return recurrence.IsValidPolicy(fl.Field().String())
}

// JSONFieldName reports fields by their json name so error details match
// what the client sent.
func JSONFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return fld.Name
	}
	return name
}

// New returns a validator with the custom tags used by request structs.
func New() *validator.Validate {
	validate := validator.New()
	validate.RegisterTagNameFunc(JSONFieldName)
	_ = validate.RegisterValidation("iso8601", IsIso8601)
	_ = validate.RegisterValidation("recurrence", IsRecurrencePolicy)
	return validate
}
