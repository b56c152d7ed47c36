// Package gemini implements the Interpreter interface using Google Gemini.
//
// It sends the situation (image and/or audio description) together with a
// fixed routing instruction to a multimodal Gemini model and parses the
// structured JSON reply into a routing judgment.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/percepteye/semrouter/internal/config"
	"github.com/percepteye/semrouter/internal/frame"
)

// systemPrompt describes the candidate routes and their distinguishing cues.
// The face-vs-sign dominance rule lives here, at the prompt level: the model
// is told to prefer face_recognition_tts unless sign language gesturing is
// the dominant, primary subject of the frame.
const systemPrompt = `You are an intelligent routing system for an assistive technology platform called PerceptEye.

Your role is to analyze video frames and audio input to determine which API service should be called:

1. **FACE_RECOGNITION_TTS** - Combined Face Recognition and Text-to-Speech/Speech-to-Text
   - Use when: Faces are visible OR audio/speech is present OR verbal communication is needed
   - Indicators: Human faces, people in frame, audio input, speech patterns, mouth movements
   - This API handles BOTH face recognition AND speech processing
   - Use this for: person identification, face detection, audio transcription, text-to-speech

2. **SIGN_LANGUAGE** - Sign language gesture detection
   - Use when: Hand gestures or sign language movements are prominently visible
   - Indicators: Hands in prominent position, gesturing, sign language patterns, hand shapes
   - Only use this when sign language is the PRIMARY focus of the frame

3. **SCENE_DESCRIPTION** - Generic scene captioning
   - Use when: The frame shows a scene worth describing but no faces, speech, or signing
   - Indicators: Objects, surroundings, environments, text or signage without people interacting

4. **NONE** - No clear action needed
   - Use when: Frame is unclear, no relevant activity detected, or empty frame

Priority Rules:
- If faces AND sign language are both visible, prefer FACE_RECOGNITION_TTS unless sign language is the dominant feature
- If audio/speech is present with any visual content, prefer FACE_RECOGNITION_TTS
- Only route to SIGN_LANGUAGE when hands/gestures are the primary focus
- Only route to SCENE_DESCRIPTION when neither people nor gestures are present

Analyze the provided frame(s) and audio description, then respond with ONLY a JSON object in this exact format:
{
  "route": "face_recognition_tts" | "sign_language" | "scene_description" | "none",
  "confidence": 0.0-1.0,
  "reasoning": "brief explanation"
}

Be decisive and prioritize based on the most prominent features in the frame.`

// Interpreter uses the Gemini API for routing judgments.
type Interpreter struct {
	client *genai.Client
	model  *genai.GenerativeModel
	name   string
}

// New creates a new Gemini interpreter from config.
func New(ctx context.Context, cfg config.GeminiConfig) (*Interpreter, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is empty")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	model.GenerationConfig = genai.GenerationConfig{
		Temperature:      ptrFloat32(0.3),
		MaxOutputTokens:  ptrInt32(500),
		ResponseMIMEType: "application/json",
	}
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemPrompt)},
	}

	return &Interpreter{
		client: client,
		model:  model,
		name:   cfg.Model,
	}, nil
}

// Name returns the backend identifier.
func (i *Interpreter) Name() string { return "gemini" }

// Interpret sends the situation to Gemini and parses the routing judgment.
// Failures never escape as errors: they come back as errored judgments with
// a diagnostic reasoning string.
func (i *Interpreter) Interpret(ctx context.Context, req *frame.Request) frame.Judgment {
	parts := []genai.Part{genai.Text(buildUserText(req))}
	if req.HasImage() {
		parts = append(parts, genai.Blob{
			MIMEType: req.ImageMIME,
			Data:     req.Image,
		})
	}

	slog.Debug("gemini interpret request",
		"model", i.name,
		"has_image", req.HasImage(),
		"has_audio_description", req.AudioDescription != "")

	resp, err := i.model.GenerateContent(ctx, parts...)
	if err != nil {
		slog.Error("gemini request failed", "error", err)
		return frame.ErrorJudgment(fmt.Sprintf("gemini request failed: %v", err))
	}

	content := extractText(resp)
	if content == "" {
		return frame.ErrorJudgment("gemini returned no text candidates")
	}

	judgment := parseJudgment(content)
	slog.Debug("gemini interpret complete",
		"route", judgment.Route,
		"confidence", judgment.Confidence,
		"errored", judgment.Errored)
	return judgment
}

// Close releases the underlying API client.
func (i *Interpreter) Close() error { return i.client.Close() }

// --- Internal helpers ---

// buildUserText mirrors the instruction the routing prompt expects: a short
// framing sentence plus the audio context when present.
func buildUserText(req *frame.Request) string {
	var sb strings.Builder
	sb.WriteString("Analyze this frame")
	if req.AudioDescription != "" {
		sb.WriteString(" with audio input: ")
		sb.WriteString(req.AudioDescription)
	}
	if !req.HasImage() {
		sb.WriteString(" (no image available)")
	}
	sb.WriteString(". Determine the appropriate routing decision.")
	return sb.String()
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return strings.TrimSpace(sb.String())
}

// parseJudgment extracts the routing decision from the model reply. The
// reply should be bare JSON, but models occasionally wrap it in prose or
// code fences, so the outermost brace pair is located first.
func parseJudgment(content string) frame.Judgment {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end <= start {
		return frame.ErrorJudgment(fmt.Sprintf("no JSON object in model reply: %.200s", content))
	}

	var reply struct {
		Route      string  `json:"route"`
		Confidence float64 `json:"confidence"`
		Reasoning  string  `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(content[start:end+1]), &reply); err != nil {
		return frame.ErrorJudgment(fmt.Sprintf("unparseable model reply: %v", err))
	}

	route, ok := frame.ParseRoute(reply.Route)
	if !ok {
		return frame.ErrorJudgment(fmt.Sprintf("model returned unknown route %q", reply.Route))
	}

	return frame.Judgment{
		Route:      route,
		Confidence: clamp01(reply.Confidence),
		Reasoning:  reply.Reasoning,
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func ptrFloat32(v float32) *float32 { return &v }
func ptrInt32(v int32) *int32       { return &v }
