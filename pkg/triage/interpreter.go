package triage

import (
	"bytes"
	"encoding/json"
	"strings"
)

type Urgency string

const (
	UrgencyEmergency Urgency = "emergency"
	UrgencyUrgent    Urgency = "urgent"
	UrgencySoon      Urgency = "soon"
	UrgencyRoutine   Urgency = "routine"
)

func (u Urgency) Valid() bool {
	switch u {
	case UrgencyEmergency, UrgencyUrgent, UrgencySoon, UrgencyRoutine:
		return true
	}
	return false
}

type ConditionHypothesis struct {
	Name      string `json:"name"`
	Rationale string `json:"rationale"`
}

// StructuredVerdict is the shape the model is asked to return.
type StructuredVerdict struct {
	ConditionHypotheses   []ConditionHypothesis `json:"conditionHypotheses"`
	Urgency               Urgency               `json:"urgency"`
	RecommendedSpeciality string                `json:"recommendedSpeciality"`
	HomeCare              string                `json:"homeCare"`
	RedFlags              []string              `json:"redFlags"`
	Disclaimer            string                `json:"disclaimer"`
}

// RawVerdict wraps model output that was not valid JSON.
type RawVerdict struct {
	Raw string `json:"raw"`
}

// Result holds exactly one of: the model's JSON document, kept byte for byte,
// or the raw text fallback.
type Result struct {
	structured json.RawMessage
	raw        *RawVerdict
}

func StructuredResult(doc json.RawMessage) Result {
	return Result{structured: doc}
}

func RawResult(text string) Result {
	return Result{raw: &RawVerdict{Raw: text}}
}

func (r Result) IsRaw() bool {
	return r.raw != nil
}

func (r Result) Raw() string {
	if r.raw == nil {
		return ""
	}
	return r.raw.Raw
}

func (r Result) Structured() json.RawMessage {
	return r.structured
}

// Verdict decodes the structured document into the typed view. It reports
// false for raw results and for JSON that is not an object of that shape.
func (r Result) Verdict() (StructuredVerdict, bool) {
	var v StructuredVerdict
	if r.raw != nil || len(r.structured) == 0 {
		return v, false
	}
	if err := json.Unmarshal(r.structured, &v); err != nil {
		return v, false
	}
	return v, true
}

func (r Result) MarshalJSON() ([]byte, error) {
	if r.raw != nil {
		return json.Marshal(r.raw)
	}
	if len(r.structured) == 0 {
		return []byte("null"), nil
	}
	return r.structured, nil
}

// UnmarshalJSON treats an object whose only key is "raw" as the raw variant.
func (r *Result) UnmarshalJSON(data []byte) error {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err == nil && len(probe) == 1 {
		if rawField, ok := probe["raw"]; ok {
			var text string
			if err := json.Unmarshal(rawField, &text); err == nil {
				*r = RawResult(text)
				return nil
			}
		}
	}
	*r = StructuredResult(append(json.RawMessage(nil), data...))
	return nil
}

// Interpret never fails: valid JSON passes through uninspected, anything else
// becomes a RawVerdict with the trimmed text.
func Interpret(text string) Result {
	trimmed := strings.TrimSpace(text)
	candidate := stripCodeFence([]byte(trimmed))
	if json.Valid(candidate) {
		return StructuredResult(json.RawMessage(candidate))
	}
	return RawResult(trimmed)
}

func stripCodeFence(b []byte) []byte {
	if !bytes.HasPrefix(b, []byte("```")) {
		return b
	}
	b = bytes.TrimPrefix(b, []byte("```json"))
	b = bytes.TrimPrefix(b, []byte("```"))
	b = bytes.TrimSuffix(b, []byte("```"))
	return bytes.TrimSpace(b)
}
