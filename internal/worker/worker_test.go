package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pourboire/backend/pkg/queue"
)

type fakeSender struct {
	err  error
	sent []string
}

func (f *fakeSender) Send(to, _, _ string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, to)
	return nil
}

type fakeStatusStore struct {
	sentIDs   []uuid.UUID
	failedIDs []uuid.UUID
}

func (f *fakeStatusStore) MarkSent(_ context.Context, id uuid.UUID) error {
	f.sentIDs = append(f.sentIDs, id)
	return nil
}

func (f *fakeStatusStore) MarkFailed(_ context.Context, id uuid.UUID, _ string) error {
	f.failedIDs = append(f.failedIDs, id)
	return nil
}

func emailJob(t *testing.T, payload queue.EmailPayload) *queue.Job {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return &queue.Job{ID: uuid.New().String(), Type: queue.JobTypeEmail, Payload: raw}
}

func TestProcessSendsAndMarksSent(t *testing.T) {
	sender := &fakeSender{}
	logs := &fakeStatusStore{}
	p := NewEmailProcessor(logs, sender, nil, nil)

	notificationID := uuid.New()
	job := emailJob(t, queue.EmailPayload{
		NotificationID: notificationID,
		RecipientEmail: "alice@example.com",
		Subject:        "Vos pourboires pour le pool Semaine 12",
		BodyHTML:       "<p>Bonjour</p>",
	})

	require.NoError(t, p.Process(context.Background(), job))
	assert.Equal(t, []string{"alice@example.com"}, sender.sent)
	assert.Equal(t, []uuid.UUID{notificationID}, logs.sentIDs)
	assert.Empty(t, logs.failedIDs)
}

func TestProcessMarksFailedOnSendError(t *testing.T) {
	sender := &fakeSender{err: errors.New("smtp refused")}
	logs := &fakeStatusStore{}
	p := NewEmailProcessor(logs, sender, nil, nil)

	notificationID := uuid.New()
	job := emailJob(t, queue.EmailPayload{NotificationID: notificationID, RecipientEmail: "alice@example.com"})

	err := p.Process(context.Background(), job)
	require.Error(t, err)
	assert.Equal(t, []uuid.UUID{notificationID}, logs.failedIDs)
	assert.Empty(t, logs.sentIDs)
}

func TestProcessRejectsUnknownJobType(t *testing.T) {
	p := NewEmailProcessor(&fakeStatusStore{}, &fakeSender{}, nil, nil)
	err := p.Process(context.Background(), &queue.Job{ID: "x", Type: "transcode"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown job type")
}
