package kafka

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func validEvent() OutboxEvent {
	payload, _ := json.Marshal(map[string]string{"request_id": uuid.NewString()})
	return OutboxEvent{
		ID:            uuid.NewString(),
		AggregateType: "LeaveRequest",
		AggregateID:   uuid.NewString(),
		EventType:     "request.submitted",
		Topic:         "leave.request.lifecycle.v1",
		Payload:       payload,
		Status:        OutboxStatusPending,
	}
}

func TestValidateOutboxEvent(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		assert.NoError(t, ValidateOutboxEvent(validEvent()))
	})

	t.Run("negative missing id", func(t *testing.T) {
		event := validEvent()
		event.ID = ""
		assert.Error(t, ValidateOutboxEvent(event))
	})

	t.Run("negative missing topic", func(t *testing.T) {
		event := validEvent()
		event.Topic = ""
		assert.Error(t, ValidateOutboxEvent(event))
	})

	t.Run("negative empty payload", func(t *testing.T) {
		event := validEvent()
		event.Payload = nil
		assert.Error(t, ValidateOutboxEvent(event))
	})

	t.Run("negative unknown status", func(t *testing.T) {
		event := validEvent()
		event.Status = "queued"
		assert.Error(t, ValidateOutboxEvent(event))
	})
}
