package service_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/mailforge/bulkmail-backend/internal/errors"
	"github.com/mailforge/bulkmail-backend/internal/model"
	"github.com/mailforge/bulkmail-backend/internal/queue"
	"github.com/mailforge/bulkmail-backend/internal/repository"
	"github.com/mailforge/bulkmail-backend/internal/service"
)

// scriptedTransport fails sends for addresses in failFor and records
// every attempt.
type scriptedTransport struct {
	mu      sync.Mutex
	failFor map[string]bool
	calls   []string
}

func (t *scriptedTransport) Send(_ context.Context, _, to, _, _ string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls = append(t.calls, to)
	if t.failFor[to] {
		return "", fmt.Errorf("smtp 550: mailbox %s unavailable", to)
	}
	return "msg-" + to, nil
}

// recordingRepo captures created records in memory.
type recordingRepo struct {
	created []*model.BulkMail
	failing bool
}

func (r *recordingRepo) Create(_ context.Context, m *model.BulkMail) error {
	if r.failing {
		return errors.New("connection refused")
	}
	m.ID = fmt.Sprintf("mail-%d", len(r.created)+1)
	r.created = append(r.created, m)
	return nil
}

func (r *recordingRepo) List(context.Context, repository.Filter, string, int, int) ([]model.BulkMail, int, error) {
	return nil, 0, nil
}

func (r *recordingRepo) GetByID(_ context.Context, id string) (*model.BulkMail, error) {
	return nil, appErrors.NewNotFound(id)
}

func (r *recordingRepo) GetRecipients(_ context.Context, id string) ([]string, error) {
	return nil, appErrors.NewNotFound(id)
}

func newDispatch(repo *recordingRepo, transport *scriptedTransport) (*service.DispatchService, *queue.MemoryPublisher) {
	events := &queue.MemoryPublisher{}
	return &service.DispatchService{
		Repo:      repo,
		Transport: transport,
		Events:    events,
		From:      "noreply@mailforge.io",
	}, events
}

func TestSendBulkAllSent(t *testing.T) {
	repo := &recordingRepo{}
	transport := &scriptedTransport{}
	svc, events := newDispatch(repo, transport)

	result, err := svc.SendBulk(context.Background(), service.SendBulkRequest{
		Subject:    "Quarterly Report",
		Content:    "<h1>Numbers</h1>",
		Recipients: []string{"a@example.com", "b@example.com", "c@example.com"},
	})
	require.NoError(t, err)

	assert.Equal(t, model.StatusSent, result.Status)
	assert.Equal(t, "mail-1", result.ID)
	require.Len(t, result.Recipients, 3)
	for _, rc := range result.Recipients {
		assert.Equal(t, model.StatusSent, rc.Status)
		assert.NotEmpty(t, rc.MessageID)
		assert.Empty(t, rc.Error)
		assert.NotNil(t, rc.SentAt)
	}

	require.Len(t, events.Events, 1)
	assert.Equal(t, 3, events.Events[0].Sent)
	assert.Equal(t, 0, events.Events[0].Failed)
}

func TestSendBulkAllFailed(t *testing.T) {
	repo := &recordingRepo{}
	transport := &scriptedTransport{failFor: map[string]bool{
		"a@example.com": true,
		"b@example.com": true,
	}}
	svc, _ := newDispatch(repo, transport)

	result, err := svc.SendBulk(context.Background(), service.SendBulkRequest{
		Subject:    "Outage notice",
		Content:    "<p>down</p>",
		Recipients: []string{"a@example.com", "b@example.com"},
	})
	require.NoError(t, err)

	assert.Equal(t, model.StatusFailed, result.Status)
	for _, rc := range result.Recipients {
		assert.Equal(t, model.StatusFailed, rc.Status)
		assert.NotEmpty(t, rc.Error)
		assert.Empty(t, rc.MessageID)
		assert.NotNil(t, rc.SentAt)
	}
}

func TestSendBulkPartial(t *testing.T) {
	repo := &recordingRepo{}
	transport := &scriptedTransport{failFor: map[string]bool{"b@example.com": true}}
	svc, _ := newDispatch(repo, transport)

	result, err := svc.SendBulk(context.Background(), service.SendBulkRequest{
		Subject:    "Mixed outcome",
		Content:    "<p>hi</p>",
		Recipients: []string{"a@example.com", "b@example.com", "c@example.com"},
	})
	require.NoError(t, err)

	assert.Equal(t, model.StatusPartial, result.Status)
	assert.Equal(t, model.StatusSent, result.Recipients[0].Status)
	assert.Equal(t, model.StatusFailed, result.Recipients[1].Status)
	assert.Equal(t, model.StatusSent, result.Recipients[2].Status)
}

func TestSendBulkFailureDoesNotAbortRemaining(t *testing.T) {
	repo := &recordingRepo{}
	transport := &scriptedTransport{failFor: map[string]bool{"a@example.com": true}}
	svc, _ := newDispatch(repo, transport)

	_, err := svc.SendBulk(context.Background(), service.SendBulkRequest{
		Subject:    "subject",
		Content:    "content",
		Recipients: []string{"a@example.com", "b@example.com"},
	})
	require.NoError(t, err)

	// The failing first attempt must not stop the second.
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, transport.calls)
}

func TestSendBulkNormalizesAndKeepsDuplicates(t *testing.T) {
	repo := &recordingRepo{}
	transport := &scriptedTransport{}
	svc, _ := newDispatch(repo, transport)

	result, err := svc.SendBulk(context.Background(), service.SendBulkRequest{
		Subject:    "dupes",
		Content:    "x",
		Recipients: []string{" Alice@Example.COM ", "alice@example.com"},
	})
	require.NoError(t, err)

	// Duplicates get independent attempts, in source order.
	assert.Equal(t, []string{"alice@example.com", "alice@example.com"}, transport.calls)
	require.Len(t, result.Recipients, 2)
	assert.Equal(t, "alice@example.com", result.Recipients[0].Email)
}

func TestSendBulkValidation(t *testing.T) {
	cases := []struct {
		name string
		req  service.SendBulkRequest
	}{
		{"missing subject", service.SendBulkRequest{Content: "x", Recipients: []string{"a@example.com"}}},
		{"subject too long", service.SendBulkRequest{Subject: strings.Repeat("s", 201), Content: "x", Recipients: []string{"a@example.com"}}},
		{"missing content", service.SendBulkRequest{Subject: "s", Recipients: []string{"a@example.com"}}},
		{"empty recipients", service.SendBulkRequest{Subject: "s", Content: "x", Recipients: []string{}}},
		{"invalid address", service.SendBulkRequest{Subject: "s", Content: "x", Recipients: []string{"not-an-email"}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &recordingRepo{}
			transport := &scriptedTransport{}
			svc, events := newDispatch(repo, transport)

			_, err := svc.SendBulk(context.Background(), tc.req)

			var ve *appErrors.ValidationError
			require.ErrorAs(t, err, &ve)
			// No sends, no writes, no events.
			assert.Empty(t, transport.calls)
			assert.Empty(t, repo.created)
			assert.Empty(t, events.Events)
		})
	}
}

func TestSendBulkSubjectAt200CharsIsAccepted(t *testing.T) {
	repo := &recordingRepo{}
	transport := &scriptedTransport{}
	svc, _ := newDispatch(repo, transport)

	_, err := svc.SendBulk(context.Background(), service.SendBulkRequest{
		Subject:    strings.Repeat("s", 200),
		Content:    "x",
		Recipients: []string{"a@example.com"},
	})
	require.NoError(t, err)
}

func TestSendBulkPersistenceFailure(t *testing.T) {
	repo := &recordingRepo{failing: true}
	transport := &scriptedTransport{}
	svc, events := newDispatch(repo, transport)

	_, err := svc.SendBulk(context.Background(), service.SendBulkRequest{
		Subject:    "s",
		Content:    "x",
		Recipients: []string{"a@example.com"},
	})

	var pe *appErrors.PersistenceError
	require.ErrorAs(t, err, &pe)
	// The send still happened; only the record is lost.
	assert.Equal(t, []string{"a@example.com"}, transport.calls)
	assert.Empty(t, events.Events)
}
