package core

import (
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	Validate   *validator.Validate
	Translator ut.Translator

	// custom validation tags & texts
	cpfTag  = "cpf"
	cpfText = "invalid CPF number"

	requiredTag     = "required"
	requiredWithTag = "required_with"
	requiredText    = "this field is required"
)

func init() {
	enLocale := en.New()
	Translator, _ = ut.New(enLocale, enLocale).GetTranslator("en")
	Validate = validator.New()
	InitValidators(Validate, Translator)
}

// InitValidators instantiates the validator for use.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// register custom validators
	_ = validate.RegisterValidation(cpfTag, cpfValidation)
	RegisterCustomTranslation(validate, translator, cpfTag, cpfText)

	RegisterCustomTranslation(validate, translator, requiredTag, requiredText, true)
	RegisterCustomTranslation(validate, translator, requiredWithTag, requiredText, true)
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Custom Global Validators

// cpfValidation checks the two verifier digits of a Brazilian CPF number.
// Formatting characters (dots, dash) are ignored.
func cpfValidation(fl validator.FieldLevel) bool {
	return ValidCPF(fl.Field().String())
}

// ValidCPF reports whether `s` contains a valid CPF number.
// A CPF has 11 digits; the last two are check digits computed by the
// mod-11 weighted sum of the preceding ones. Sequences of a single
// repeated digit pass the checksum but are not valid CPFs.
func ValidCPF(s string) bool {
	digits := CleanDigits(s)
	if len(digits) != 11 {
		return false
	}

	nums := make([]int, 11)
	same := true
	for i, r := range digits {
		nums[i] = int(r - '0')
		if nums[i] != nums[0] {
			same = false
		}
	}
	if same {
		return false
	}

	var sum1 int
	for i := 0; i < 9; i++ {
		sum1 += nums[i] * (10 - i)
	}
	if nums[9] != (sum1*10%11)%10 {
		return false
	}

	var sum2 int
	for i := 0; i < 10; i++ {
		sum2 += nums[i] * (11 - i)
	}
	return nums[10] == (sum2*10%11)%10
}
