package model_test

import (
	"testing"

	"github.com/mailforge/bulkmail-backend/internal/model"
)

func TestAggregateStatus(t *testing.T) {
	cases := []struct {
		name     string
		statuses []model.Status
		want     model.Status
	}{
		{"all sent", []model.Status{model.StatusSent, model.StatusSent, model.StatusSent}, model.StatusSent},
		{"all failed", []model.Status{model.StatusFailed, model.StatusFailed}, model.StatusFailed},
		{"mixed", []model.Status{model.StatusSent, model.StatusFailed}, model.StatusPartial},
		{"single sent", []model.Status{model.StatusSent}, model.StatusSent},
		{"single failed", []model.Status{model.StatusFailed}, model.StatusFailed},
	}

	for _, tc := range cases {
		recipients := make([]model.Recipient, len(tc.statuses))
		for i, s := range tc.statuses {
			recipients[i] = model.Recipient{Email: "x@example.com", Status: s}
		}
		if got := model.AggregateStatus(recipients); got != tc.want {
			t.Errorf("%s: expected %s, got %s", tc.name, tc.want, got)
		}
	}
}

func TestNormalizeEmail(t *testing.T) {
	got := model.NormalizeEmail("  Alice@Example.COM ")
	if got != "alice@example.com" {
		t.Errorf("expected alice@example.com, got %q", got)
	}
}

func TestValidEmail(t *testing.T) {
	valid := []string{"alice@example.com", "a.b+c@sub.domain.org", "x_1%y@host.co"}
	for _, e := range valid {
		if !model.ValidEmail(e) {
			t.Errorf("expected %q to be valid", e)
		}
	}

	invalid := []string{"", "plainaddress", "@nolocal.com", "user@", "user@nodot", "user name@example.com"}
	for _, e := range invalid {
		if model.ValidEmail(e) {
			t.Errorf("expected %q to be invalid", e)
		}
	}
}
