package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBaseEventImplementsEvent(t *testing.T) {
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	var e Event = BaseEvent{Type: TypeTriageCompleted, Data: map[string]interface{}{"urgency": "soon"}, OccurredAt: at}

	assert.Equal(t, "TRIAGE_COMPLETED", e.EventType())
	assert.Equal(t, "soon", e.Payload()["urgency"])
	assert.Equal(t, at, e.Timestamp())
}
