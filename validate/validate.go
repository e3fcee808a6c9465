package validate

import (
	"errors"
	"regexp"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/google/uuid"
)

var validate *validator.Validate

var translator ut.Translator

// Looser than the "email" tag: something@something.something without
// whitespace or extra "@".
var basicEmail = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func init() {

	validate = validator.New()

	translator, _ = ut.New(en.New(), en.New()).GetTranslator("en")
	en_translations.RegisterDefaultTranslations(validate, translator)

	validate.RegisterValidation("basic_email", func(fl validator.FieldLevel) bool {
		return basicEmail.MatchString(fl.Field().String())
	})
	validate.RegisterTranslation("basic_email", translator,
		func(ut ut.Translator) error {
			return ut.Add("basic_email", "{0} must be a valid email address", true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T("basic_email", fe.Field())
			return t
		},
	)
}

func Check(val any) error {
	if err := validate.Struct(val); err != nil {
		return translate(err)
	}

	return nil
}

// Var validates a single value against a tag, e.g. Var(email, "basic_email").
func Var(field any, tag string) error {
	if err := validate.Var(field, tag); err != nil {
		return translate(err)
	}

	return nil
}

func translate(err error) error {
	verrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	if len(verrors) < 1 {
		return nil
	}

	return errors.New(verrors[0].Translate(translator))
}

func GenerateID() string {
	return uuid.NewString()
}

func CheckID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.New("ID is not in its proper form")
	}
	return nil
}
