package errors

import (
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code   Code
		status int
	}{
		{CodeValidation, http.StatusBadRequest},
		{CodeNotFound, http.StatusNotFound},
		{CodeStateConflict, http.StatusUnprocessableEntity},
		{CodeConflict, http.StatusConflict},
		{CodeNotPurchasable, http.StatusBadRequest},
		{CodeSelfPurchase, http.StatusBadRequest},
		{CodeInvalidSignature, http.StatusBadRequest},
		{CodeDependency, http.StatusServiceUnavailable},
	}
	for _, tc := range tests {
		if got := MetadataFor(tc.code).HTTPStatus; got != tc.status {
			t.Fatalf("%s: expected status %d, got %d", tc.code, tc.status, got)
		}
	}
}

func TestMetadataForUnknownCodeFallsBack(t *testing.T) {
	meta := MetadataFor(Code("NOPE"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("unknown code should map to internal, got %d", meta.HTTPStatus)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("driver exploded")
	err := Wrap(CodeDependency, cause, "load order")
	if err.Unwrap() != cause {
		t.Fatalf("expected cause to be preserved")
	}
	if err.Code() != CodeDependency {
		t.Fatalf("unexpected code %s", err.Code())
	}
}

func TestAsThroughWrapping(t *testing.T) {
	inner := New(CodeStateConflict, "cannot approve listing")
	outer := fmt.Errorf("handling request: %w", inner)
	typed := As(outer)
	if typed == nil {
		t.Fatal("expected typed error through wrapping")
	}
	if typed.Code() != CodeStateConflict {
		t.Fatalf("unexpected code %s", typed.Code())
	}
}

func TestIsCode(t *testing.T) {
	err := New(CodeSelfPurchase, "buyer owns listing")
	if !IsCode(err, CodeSelfPurchase) {
		t.Fatal("expected IsCode to match")
	}
	if IsCode(err, CodeNotFound) {
		t.Fatal("IsCode matched wrong code")
	}
	if IsCode(nil, CodeNotFound) {
		t.Fatal("IsCode should be false for nil")
	}
}
