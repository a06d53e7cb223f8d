package job

import (
	"context"
	"errors"
	"testing"

	"github.com/goccy/go-json"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yamdb-backend/internal/infrastructure/email"
	"yamdb-backend/internal/shared"
)

type stubEmail struct {
	err  error
	sent []email.ConfirmationCodeData
}

func (s *stubEmail) SendConfirmationCode(_ context.Context, data email.ConfirmationCodeData) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, data)
	return nil
}

type recorded struct {
	userID    int64
	delivered bool
}

type stubRecorder struct{ calls []recorded }

func (r *stubRecorder) RecordDelivery(_ context.Context, userID int64, delivered bool) error {
	r.calls = append(r.calls, recorded{userID, delivered})
	return nil
}

func newTask(t *testing.T) *asynq.Task {
	t.Helper()
	payload, err := json.Marshal(shared.ConfirmationCodePayload{UserID: 3, Username: "carol", Email: "c@example.com", Code: "CODE"})
	require.NoError(t, err)
	return asynq.NewTask(shared.TypeSendConfirmationCode, payload)
}

func TestConfirmationCodeHandler_Success(t *testing.T) {
	mailer, recorder := &stubEmail{}, &stubRecorder{}
	h := NewConfirmationCodeHandler(mailer, recorder)

	require.NoError(t, h.ProcessTask(context.Background(), newTask(t)))

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "CODE", mailer.sent[0].Code)
	assert.Equal(t, []recorded{{3, true}}, recorder.calls)
}

// Outside a worker there is no retry metadata, so a failure counts as final.
func TestConfirmationCodeHandler_FinalFailureRecorded(t *testing.T) {
	mailer, recorder := &stubEmail{err: errors.New("relay down")}, &stubRecorder{}
	h := NewConfirmationCodeHandler(mailer, recorder)

	err := h.ProcessTask(context.Background(), newTask(t))

	require.Error(t, err)
	assert.Equal(t, []recorded{{3, false}}, recorder.calls)
}

func TestConfirmationCodeHandler_BadPayloadSkipsRetry(t *testing.T) {
	h := NewConfirmationCodeHandler(&stubEmail{}, &stubRecorder{})

	err := h.ProcessTask(context.Background(), asynq.NewTask(shared.TypeSendConfirmationCode, []byte("{")))

	assert.ErrorIs(t, err, asynq.SkipRetry)
}
