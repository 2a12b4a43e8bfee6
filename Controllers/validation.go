package Controllers

import (
	"errors"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"SmartRoute/RouteOptimizer"
)

// ValidationError carries the translated messages of a rejected request body.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, msg := range e.Fields {
		msgs = append(msgs, msg)
	}
	slices.Sort(msgs)
	return strings.Join(msgs, "; ")
}

// Validator checks request structs and renders failures in English.
type Validator struct {
	validate *validator.Validate
	trans    ut.Translator
}

func NewValidator() *Validator {
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")

	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = en_translations.RegisterDefaultTranslations(validate, trans)

	register := func(tag, message string, fn validator.Func) {
		_ = validate.RegisterValidation(tag, fn)
		_ = validate.RegisterTranslation(tag, trans,
			func(ut ut.Translator) error { return ut.Add(tag, message, true) },
			func(ut ut.Translator, fe validator.FieldError) string {
				t, _ := ut.T(tag, fe.Field(), fe.Value().(string))
				return t
			})
	}
	register("algorithm", "{0} {1} is not a supported algorithm", func(fl validator.FieldLevel) bool {
		a := RouteOptimizer.Algorithm(fl.Field().String())
		for _, known := range RouteOptimizer.Algorithms {
			if a == known {
				return true
			}
		}
		return false
	})
	register("travelmode", "{0} {1} is not a supported travel mode", func(fl validator.FieldLevel) bool {
		_, ok := RouteOptimizer.AverageSpeeds[RouteOptimizer.TravelMode(fl.Field().String())]
		return ok
	})

	return &Validator{validate: validate, trans: trans}
}

// Struct returns a *ValidationError when s fails its validate tags.
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	out := &ValidationError{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		out.Fields[fe.Namespace()] = fe.Translate(v.trans)
	}
	return out
}
