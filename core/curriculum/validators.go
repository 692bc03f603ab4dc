package curriculum

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/montree/core"
)

var (
	areaTag  = "area"
	areaText = "unknown curriculum area"

	statusTag  = "status"
	statusText = "must be one of not_started, presented, practicing or mastered"
)

// InitValidators registers the curriculum validation tags.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(areaTag, areaValidation)
	core.RegisterCustomTranslation(validate, translator, areaTag, areaText)

	_ = validate.RegisterValidation(statusTag, statusValidation)
	core.RegisterCustomTranslation(validate, translator, statusTag, statusText)
}

// Custom Validators

// areaValidation accepts known areas and their aliases.
func areaValidation(fl validator.FieldLevel) bool {
	return IsArea(NormalizeArea(fl.Field().String()))
}

// statusValidation only accepts exact status labels; blank is left to `required`.
func statusValidation(fl validator.FieldLevel) bool {
	label := core.SnakeKey(fl.Field().String())
	if label == "" {
		return true
	}
	for _, l := range statusLabels {
		if l == label {
			return true
		}
	}
	return false
}
