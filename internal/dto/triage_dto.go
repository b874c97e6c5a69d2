package dto

import (
	"time"

	"github.com/google/uuid"
)

// DiagnoseRequest holds the text fields of the multipart diagnose form.
type DiagnoseRequest struct {
	Symptoms string `form:"symptoms" validate:"notblank"`
}

type SelfTestResponse struct {
	Success bool   `json:"success"`
	Echo    string `json:"echo,omitempty"`
	Model   string `json:"model,omitempty"`
	Message string `json:"message,omitempty"`
}

type TriageStatsResponse struct {
	Total    int64            `json:"total"`
	Counters map[string]int64 `json:"counters"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Provider string `json:"provider"`
}

// Outcome of a diagnose request as recorded in triage events.
const (
	OutcomeStructured = "structured"
	OutcomeRaw        = "raw"
	OutcomeError      = "error"
)

// TriageEventMessage is published on the in-process bus after every diagnose call.
// It never carries symptom text or image bytes.
type TriageEventMessage struct {
	RequestId  uuid.UUID `json:"request_id"`
	Outcome    string    `json:"outcome"`
	Urgency    string    `json:"urgency,omitempty"`
	Speciality string    `json:"speciality,omitempty"`
	ErrorKind  string    `json:"error_kind,omitempty"`
	Provider   string    `json:"provider"`
	Model      string    `json:"model,omitempty"`
	Images     int       `json:"images"`
	DurationMs int64     `json:"duration_ms"`
	OccurredAt time.Time `json:"occurred_at"`
}
