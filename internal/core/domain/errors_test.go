package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/terradex/stacintake/internal/core/domain"
)

// asError mirrors errors.As with a friendlier call site for tests.
func asError(err error, target any) bool { return errors.As(err, target) }

func TestErrorKinds_Distinct(t *testing.T) {
	input := domain.NewInputError("bad input")
	validation := domain.NewValidationError("bad record")
	configuration := domain.NewConfigurationError("bad deployment")

	var inputErr *domain.InputError
	var validationErr *domain.ValidationError
	var configErr *domain.ConfigurationError

	if !errors.As(input, &inputErr) || errors.As(input, &validationErr) || errors.As(input, &configErr) {
		t.Error("InputError misclassified")
	}
	if !errors.As(validation, &validationErr) || errors.As(validation, &inputErr) {
		t.Error("ValidationError misclassified")
	}
	if !errors.As(configuration, &configErr) || errors.As(configuration, &validationErr) {
		t.Error("ConfigurationError misclassified")
	}
}

func TestErrorWrapping(t *testing.T) {
	cause := fmt.Errorf("underlying")
	err := domain.NewInputError("context: %w", cause)

	if !errors.Is(err, cause) {
		t.Error("expected wrapped cause to be reachable via errors.Is")
	}
	if err.Error() != "context: underlying" {
		t.Errorf("unexpected message: %s", err.Error())
	}
}

func TestPublishedOutcome_Status(t *testing.T) {
	cases := []struct {
		published, total int
		want             domain.OutcomeStatus
	}{
		{5, 5, domain.StatusSuccess},
		{3, 5, domain.StatusPartial},
		{0, 5, domain.StatusFailed},
		{1, 1, domain.StatusSuccess},
	}

	for _, tc := range cases {
		o := domain.PublishedOutcome(tc.published, tc.total)
		if o.Status != tc.want {
			t.Errorf("%d/%d: expected %s, got %s", tc.published, tc.total, tc.want, o.Status)
		}
		if o.Published != tc.published || o.Total != tc.total {
			t.Errorf("%d/%d: counts not preserved: %+v", tc.published, tc.total, o)
		}
	}
}

func TestFailedOutcome_CarriesDiagnostic(t *testing.T) {
	o := domain.FailedOutcome(domain.NewInputError("no features"), 7)
	if o.Status != domain.StatusFailed {
		t.Errorf("expected failed, got %s", o.Status)
	}
	if o.Message != "no features" {
		t.Errorf("expected diagnostic message, got %q", o.Message)
	}
	if o.Total != 7 || o.Published != 0 {
		t.Errorf("unexpected counts: %+v", o)
	}
}
