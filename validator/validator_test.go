package validator

import (
	"testing"

	"github.com/JohnBravos/bookhub-manager/model"
)

func TestValidateStructReportsFirstFailure(t *testing.T) {
	req := &model.UserRegisterRequest{
		Username:  "al", // too short
		Email:     "alice@example.com",
		Password:  "secret1",
		FirstName: "Alice",
		LastName:  "Smith",
	}

	err := ValidateStruct(req)
	if err == nil {
		t.Fatal("Expected a validation error")
	}
	if model.KindOf(err) != model.ErrValidation {
		t.Fatalf("Expected validation kind, got %v", err)
	}
}

func TestValidateStructAcceptsValidRequest(t *testing.T) {
	req := &model.UserRegisterRequest{
		Username:  "alice",
		Email:     "alice@example.com",
		Password:  "secret1",
		FirstName: "Alice",
		LastName:  "Smith",
	}

	if err := ValidateStruct(req); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
}

func TestValidateStructChecksEmailFormat(t *testing.T) {
	req := &model.UserRegisterRequest{
		Username:  "alice",
		Email:     "not-an-email",
		Password:  "secret1",
		FirstName: "Alice",
		LastName:  "Smith",
	}

	if model.KindOf(ValidateStruct(req)) != model.ErrValidation {
		t.Fatal("Expected a validation error for a malformed email")
	}
}
