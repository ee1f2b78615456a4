// Package validation checks request structs with go-playground/validator and
// reports failures as per-field messages keyed by JSON field name.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"

	"github.com/kjsce/kj-connect/internal/domain/catalog"
	apperrors "github.com/kjsce/kj-connect/internal/errors"
)

const (
	notBlankTag   = "notblank"
	departmentTag = "department"
)

// MsgInvalidSubmission is the summary message attached to validation failures.
const MsgInvalidSubmission = "Please correct the highlighted fields."

// FieldErrors maps a JSON field name to a readable message.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := fe.Fields()
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + fe[k]
	}
	return strings.Join(parts, "; ")
}

// Fields returns the failing field names in sorted order.
func (fe FieldErrors) Fields() []string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Validator wraps a configured validator.Validate and its English translator.
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// New builds a Validator with English messages and the portal's custom tags.
func New() (*Validator, error) {
	v := validator.New(validator.WithRequiredStructEnabled())

	english := en.New()
	uni := ut.New(english, english)
	tr, _ := uni.GetTranslator("en")
	if err := entranslations.RegisterDefaultTranslations(v, tr); err != nil {
		return nil, fmt.Errorf("register translations: %w", err)
	}

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation(notBlankTag, notBlank); err != nil {
		return nil, fmt.Errorf("register %s: %w", notBlankTag, err)
	}
	if err := v.RegisterValidation(departmentTag, knownDepartment); err != nil {
		return nil, fmt.Errorf("register %s: %w", departmentTag, err)
	}

	noop := func(ut.Translator) error { return nil }
	for _, tag := range []string{notBlankTag, departmentTag} {
		if err := v.RegisterTranslation(tag, tr, noop, translateCustom); err != nil {
			return nil, fmt.Errorf("register %s translation: %w", tag, err)
		}
	}

	return &Validator{validate: v, translator: tr}, nil
}

// Struct validates s. Failures come back as an apperrors validation error whose
// cause is a FieldErrors value.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "validation failed")
	}

	fields := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		name := fieldName(fe)
		if _, seen := fields[name]; !seen {
			fields[name] = fe.Translate(v.translator)
		}
	}
	appErr := apperrors.Wrap(fields, apperrors.ErrCodeValidation, MsgInvalidSubmission)
	appErr.Field = fields.Fields()[0]
	return appErr
}

// Fields extracts per-field messages from err, or nil when err carries none.
func Fields(err error) FieldErrors {
	var fe FieldErrors
	if errors.As(err, &fe) {
		return fe
	}
	return nil
}

func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func translateCustom(_ ut.Translator, fe validator.FieldError) string {
	switch fe.Tag() {
	case notBlankTag:
		return fe.Field() + " cannot be blank"
	case departmentTag:
		return fe.Field() + " must be one of the listed departments"
	default:
		return fe.Error()
	}
}

func notBlank(fl validator.FieldLevel) bool {
	if s, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(s) != ""
	}
	return false
}

func knownDepartment(fl validator.FieldLevel) bool {
	s, ok := fl.Field().Interface().(string)
	return ok && catalog.IsDepartment(s)
}

// WithMessage replaces the user-facing message of a validation error, keeping its fields.
// Other errors are returned unchanged.
func WithMessage(err error, message string) error {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.ErrCodeValidation {
		return err
	}
	out := *appErr
	out.Message = message
	return &out
}
