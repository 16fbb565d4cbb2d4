package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorIncludesInternal(t *testing.T) {
	internal := stdErrors.New("boom")
	err := Wrap(internal, "failed")

	if err.Error() != "failed: boom" {
		t.Fatalf("unexpected error string: %s", err.Error())
	}
}

func TestWithInternalCopies(t *testing.T) {
	base := New("TEST", "test", 400)
	with := base.WithInternal(stdErrors.New("oops"))

	if with == base {
		t.Fatal("expected WithInternal to return a copy")
	}

	if base.Internal != nil {
		t.Fatal("expected original error to remain unchanged")
	}

	if with.Internal == nil {
		t.Fatal("expected internal error to be set")
	}
}

func TestWrappedCopiesMatchSentinel(t *testing.T) {
	err := fmt.Errorf("service: %w", ErrNotFound.WithMessage("Organization not found"))
	if !stdErrors.Is(err, ErrNotFound) {
		t.Fatal("expected copy to match the NotFound sentinel")
	}
	if stdErrors.Is(err, ErrForbidden) {
		t.Fatal("did not expect NotFound to match Forbidden")
	}
}

func TestFromError(t *testing.T) {
	appErr := ErrNotFound
	if out := FromError(appErr); out != appErr {
		t.Fatal("expected FromError to return the same AppError instance")
	}

	raw := stdErrors.New("raw")
	out := FromError(raw)
	if out.Code != ErrInternalServer.Code {
		t.Fatalf("expected internal server code, got %s", out.Code)
	}
	if out.Internal == nil {
		t.Fatal("expected internal error to be attached")
	}
}

func TestNewValidation(t *testing.T) {
	err := NewFieldError("name is required", "missing", "body", "name")
	if err.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("unexpected status: %d", err.StatusCode)
	}
	if len(err.Details) != 1 {
		t.Fatalf("expected one detail, got %d", len(err.Details))
	}
	if err.Details[0].Loc[1] != "name" {
		t.Fatalf("unexpected loc: %v", err.Details[0].Loc)
	}
	if !stdErrors.Is(err, ErrValidation) {
		t.Fatal("expected validation error to match sentinel")
	}
}
