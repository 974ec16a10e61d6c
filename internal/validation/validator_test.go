package validation

import (
	"errors"
	"testing"

	domainerrors "github.com/shelflineapp/shelfline-server/internal/errors"
)

type addByBarcodeRequest struct {
	Barcode string `json:"barcode" validate:"required,min=8,max=14,numeric"`
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

func TestValidate_Valid(t *testing.T) {
	v := New()

	if err := v.Validate(addByBarcodeRequest{Barcode: "618149323746"}); err != nil {
		t.Errorf("valid barcode rejected: %v", err)
	}
	if err := v.Validate(registerRequest{Email: "a@example.com", Password: "longenough"}); err != nil {
		t.Errorf("valid registration rejected: %v", err)
	}
}

func TestValidate_Invalid(t *testing.T) {
	v := New()

	tests := []struct {
		name  string
		input any
		field string
	}{
		{"missing barcode", addByBarcodeRequest{}, "barcode"},
		{"short barcode", addByBarcodeRequest{Barcode: "123"}, "barcode"},
		{"non-numeric barcode", addByBarcodeRequest{Barcode: "abcdefgh1234"}, "barcode"},
		{"bad email", registerRequest{Email: "nope", Password: "longenough"}, "email"},
		{"short password", registerRequest{Email: "a@example.com", Password: "short"}, "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.input)
			if err == nil {
				t.Fatal("expected validation error")
			}

			var domainErr *domainerrors.Error
			if !errors.As(err, &domainErr) {
				t.Fatalf("expected domain error, got %T", err)
			}

			details, ok := domainErr.Details.(map[string]string)
			if !ok {
				t.Fatalf("expected field details map, got %T", domainErr.Details)
			}
			if _, present := details[tt.field]; !present {
				t.Errorf("expected error for field %q, got %v", tt.field, details)
			}
		})
	}
}
