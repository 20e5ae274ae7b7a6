package mailer

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/google/uuid"
)

// MockTransport simulates delivery with a configurable success rate.
// Used for local development when no SES credentials are configured.
type MockTransport struct {
	// SuccessRate in [0,1]; defaults to 0.9 when zero.
	SuccessRate float64
}

func (t *MockTransport) Send(_ context.Context, _, to, _, _ string) (string, error) {
	rate := t.SuccessRate
	if rate == 0 {
		rate = 0.9
	}
	if rand.Float64() < rate {
		return "mock-" + uuid.New().String(), nil
	}
	return "", fmt.Errorf("mock sending to %s failed", to)
}
