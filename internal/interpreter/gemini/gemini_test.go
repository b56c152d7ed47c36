package gemini

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/percepteye/semrouter/internal/frame"
)

func TestParseJudgment(t *testing.T) {
	j := parseJudgment(`{"route": "sign_language", "confidence": 0.92, "reasoning": "hands are the primary focus"}`)

	require.False(t, j.Errored)
	assert.Equal(t, frame.RouteSignLanguage, j.Route)
	assert.InDelta(t, 0.92, j.Confidence, 1e-9)
	assert.Equal(t, "hands are the primary focus", j.Reasoning)
}

func TestParseJudgmentFencedReply(t *testing.T) {
	content := "```json\n{\"route\": \"face_recognition_tts\", \"confidence\": 0.8, \"reasoning\": \"face visible\"}\n```"

	j := parseJudgment(content)
	require.False(t, j.Errored)
	assert.Equal(t, frame.RouteFaceRecognitionTTS, j.Route)
}

func TestParseJudgmentProseAroundJSON(t *testing.T) {
	content := `Here is my analysis: {"route": "scene_description", "confidence": 0.75, "reasoning": "empty street"} as requested.`

	j := parseJudgment(content)
	require.False(t, j.Errored)
	assert.Equal(t, frame.RouteSceneDescription, j.Route)
}

func TestParseJudgmentClampsConfidence(t *testing.T) {
	high := parseJudgment(`{"route": "none", "confidence": 1.7, "reasoning": ""}`)
	require.False(t, high.Errored)
	assert.Equal(t, 1.0, high.Confidence)

	low := parseJudgment(`{"route": "none", "confidence": -0.2, "reasoning": ""}`)
	require.False(t, low.Errored)
	assert.Equal(t, 0.0, low.Confidence)
}

func TestParseJudgmentUnknownRoute(t *testing.T) {
	j := parseJudgment(`{"route": "people_recognition", "confidence": 0.9, "reasoning": "legacy route"}`)

	assert.True(t, j.Errored)
	assert.Equal(t, frame.RouteNone, j.Route)
	assert.Zero(t, j.Confidence)
	assert.Contains(t, j.Reasoning, "people_recognition")
}

func TestParseJudgmentNotJSON(t *testing.T) {
	j := parseJudgment("I cannot determine a route for this frame.")

	assert.True(t, j.Errored)
	assert.Equal(t, frame.RouteNone, j.Route)
}

func TestParseJudgmentMalformedJSON(t *testing.T) {
	j := parseJudgment(`{"route": "sign_language", "confidence": }`)

	assert.True(t, j.Errored)
	assert.Contains(t, j.Reasoning, "unparseable")
}

func TestBuildUserText(t *testing.T) {
	withAudio := buildUserText(&frame.Request{
		Image:            []byte{0x01},
		AudioDescription: "someone is speaking",
	})
	assert.Contains(t, withAudio, "audio input: someone is speaking")
	assert.NotContains(t, withAudio, "no image available")

	noImage := buildUserText(&frame.Request{AudioDescription: "background noise"})
	assert.Contains(t, noImage, "no image available")
}

// The dominance tie-break is prompt-level policy; keep it pinned so a prompt
// edit that drops it fails loudly.
func TestSystemPromptStatesDominanceRule(t *testing.T) {
	assert.True(t, strings.Contains(systemPrompt, "prefer FACE_RECOGNITION_TTS unless sign language is the dominant feature"))
	assert.True(t, strings.Contains(systemPrompt, "PRIMARY focus"))
	for _, route := range []string{"face_recognition_tts", "sign_language", "scene_description", "none"} {
		assert.Contains(t, systemPrompt, route)
	}
}
