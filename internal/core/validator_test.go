package core

import (
	"errors"
	"testing"

	"casenotify/internal/types"
)

type validatedRequest struct {
	TemplateID string `json:"templateId" validate:"required,uuid"`
	Note       string `json:"note,omitempty" validate:"max=5"`
}

func TestValidator_ValidateStruct(t *testing.T) {
	v := NewValidator(testLogger())

	if err := v.ValidateStruct(validatedRequest{TemplateID: "4f5ee1c3-8c9a-4b2a-9a40-5d3e2b8f9a10"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := v.ValidateStruct(validatedRequest{Note: "too long"})
	var appErr *types.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %v", err)
	}
	if appErr.Code != types.ErrCodeValidationMissingField {
		t.Errorf("unexpected code %q", appErr.Code)
	}
	fields, _ := appErr.Details["fields"].([]string)
	if len(fields) != 2 || fields[0] != "templateId" || fields[1] != "note" {
		t.Errorf("expected JSON field names, got %v", fields)
	}
}

func TestValidator_NonStruct(t *testing.T) {
	err := NewValidator(nil).ValidateStruct("not a struct")
	var appErr *types.AppError
	if !errors.As(err, &appErr) || appErr.Code != types.ErrCodeValidationInvalidJSON {
		t.Errorf("expected validation_invalid_json, got %v", err)
	}
}
