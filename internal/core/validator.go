package core

import (
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"weatherassistant/internal/types"
)

// ValidationError describes one failed field rule.
type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Validator wraps go-playground/validator and registers the API's custom
// tags. Field names in errors use the json tag.
type Validator struct {
	validate *validator.Validate
	logger   *slog.Logger
}

// NewValidator creates a Validator with the "notblank" tag registered.
func NewValidator(logger *slog.Logger) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notblank", validateNotBlank)

	return &Validator{validate: v, logger: logger}
}

// ValidateStruct returns nil or a *types.AppError whose code reflects the
// first failing rule and whose details list every failure under
// "validation_errors".
func (v *Validator) ValidateStruct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		v.logger.Error("validator misuse", "error", err)
		return types.NewAppError(types.ErrCodeInternalUnexpected, "request could not be validated", err)
	}

	details := make([]ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, ValidationError{
			Field:   fe.Field(),
			Code:    tagToErrorCode(fe.Tag()),
			Message: fieldMessage(fe),
		})
	}

	return types.NewAppErrorWithDetails(
		types.ErrorCode(details[0].Code),
		details[0].Message,
		err,
		map[string]any{"validation_errors": details},
	)
}

// validateNotBlank rejects strings that are empty or only whitespace.
func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.IndexFunc(fl.Field().String(), func(r rune) bool { return !unicode.IsSpace(r) }) >= 0
}

func tagToErrorCode(tag string) string {
	switch tag {
	case "required", "notblank":
		return string(types.ErrCodeValidationMissingField)
	case "max":
		return string(types.ErrCodeValidationQueryLength)
	default:
		return string(types.ErrCodeValidationInvalidValue)
	}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return fe.Field() + " is required"
	case "max":
		return fe.Field() + " must be at most " + fe.Param() + " characters"
	default:
		return fe.Field() + " is invalid"
	}
}
