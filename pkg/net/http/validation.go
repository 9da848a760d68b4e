package http

import (
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	en2 "github.com/go-playground/validator/translations/en"
	validator "gopkg.in/go-playground/validator.v9"
)

var (
	validate  *validator.Validate
	translate ut.Translator
)

func init() {
	locale := en.New()
	uni := ut.New(locale, locale)
	translate, _ = uni.GetTranslator("en")

	validate = validator.New()
	if err := en2.RegisterDefaultTranslations(validate, translate); err != nil {
		panic(err)
	}

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}

		return name
	})
}

// ValidateStruct runs struct-tag validation over s, returning a
// ValidationFieldError naming every failing field when validation fails.
func ValidateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return ResponseError{Code: "VALIDATION_ERROR", Title: "Validation Error", Message: err.Error()}
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Translate(translate)
	}

	return ValidationFieldError{
		Code:    "VALIDATION_ERROR",
		Title:   "Validation Error",
		Message: "The request failed field validation. See fields for details.",
		Fields:  fields,
	}
}
