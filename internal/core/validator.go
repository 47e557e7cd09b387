package core

import (
	"errors"
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"casenotify/internal/types"
)

// Validator wraps go-playground/validator for request bodies decoded by the
// handlers. Field names are reported by their JSON tag.
type Validator struct {
	validate *validator.Validate
	logger   *slog.Logger
}

// NewValidator creates a Validator that reports JSON field names.
func NewValidator(logger *slog.Logger) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v, logger: logger}
}

// ValidateStruct returns a validation_missing_required_field AppError listing
// every failing field, or nil.
func (v *Validator) ValidateStruct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		if v.logger != nil {
			v.logger.Warn("struct validation could not run", "error", err)
		}
		return types.NewAppError(types.ErrCodeValidationInvalidJSON, "request body could not be validated", err)
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return types.NewAppErrorWithDetails(types.ErrCodeValidationMissingField,
		"invalid or missing fields: "+strings.Join(fields, ", "), err,
		map[string]any{"fields": fields})
}
