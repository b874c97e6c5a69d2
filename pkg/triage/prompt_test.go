package triage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPromptIsDeterministic(t *testing.T) {
	inputs := []string{"", "fever and cough for 3 days", "rash {{SYMPTOMS}} itching", "दर्द और बुखार"}
	for _, s := range inputs {
		assert.Equal(t, BuildPrompt(s), BuildPrompt(s))
	}
}

func TestBuildPromptContents(t *testing.T) {
	symptoms := "fever and cough for 3 days"
	prompt := BuildPrompt(symptoms)

	assert.True(t, strings.HasSuffix(prompt, symptoms))
	assert.Contains(t, prompt, "NOT a medical professional")
	for _, field := range []string{
		`"conditionHypotheses"`, `"urgency"`, `"recommendedSpeciality"`,
		`"homeCare"`, `"redFlags"`, `"disclaimer"`,
		`"emergency" | "urgent" | "soon" | "routine"`,
	} {
		assert.Contains(t, prompt, field)
	}
}

func TestBuildPromptKeepsSymptomsVerbatim(t *testing.T) {
	symptoms := "  headache\n\"since\" {{SYMPTOMS}} Monday  "
	prompt := BuildPrompt(symptoms)
	assert.True(t, strings.HasSuffix(prompt, symptoms))
	assert.Equal(t, 1, strings.Count(prompt, "headache"))
}
