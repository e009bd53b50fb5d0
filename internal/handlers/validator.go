package handlers

import (
	"encoding/base64"
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var photoPrefixRe = regexp.MustCompile(`^data:image/[A-Za-z0-9.+-]+;base64,`)

// requestValidator проверяет DTO и возвращает список полей с ошибками.
type requestValidator struct {
	v *validator.Validate
}

func newValidator() *requestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	// в списке полей отдаём json-имена
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// строка из одних пробелов не считается заполненной
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	_ = v.RegisterValidation("photo", func(fl validator.FieldLevel) bool {
		_, err := decodePhoto(fl.Field().String())
		return err == nil
	})
	return &requestValidator{v: v}
}

// ValidationError ошибки валидации по полям.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, ", ")
}

func fieldsError(fields ...string) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (rv *requestValidator) Validate(i any) error {
	err := rv.v.Struct(i)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		fields := make([]string, 0, len(ve))
		for _, fe := range ve {
			fields = append(fields, fe.Field())
		}
		return fieldsError(fields...)
	}
	return err
}

// decodePhoto разбирает data URL вида data:image/png;base64,....
func decodePhoto(s string) ([]byte, error) {
	loc := photoPrefixRe.FindStringIndex(s)
	if loc == nil {
		return nil, errors.New("photo must be a base64 image data URL")
	}
	return base64.StdEncoding.DecodeString(s[loc[1]:])
}
