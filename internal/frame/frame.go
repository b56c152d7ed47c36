// Package frame defines the core data types flowing through the semrouter pipeline.
package frame

import (
	"encoding/base64"
	"encoding/json"
	"strings"
)

// RouteKind identifies a downstream capability backend. It is a closed
// enumeration: the router dispatches with an exhaustive switch, so adding or
// removing a route is a compile-time-checked change.
type RouteKind string

const (
	// RouteFaceRecognitionTTS is the combined face recognition + speech backend.
	RouteFaceRecognitionTTS RouteKind = "face_recognition_tts"

	// RouteSignLanguage is the sign language gesture classifier backend.
	RouteSignLanguage RouteKind = "sign_language"

	// RouteSceneDescription is the generic scene captioning fallback backend.
	RouteSceneDescription RouteKind = "scene_description"

	// RouteNone means no backend should handle the situation.
	RouteNone RouteKind = "none"
)

// ParseRoute maps a string produced by the interpretation model onto a
// RouteKind. Unknown values are rejected rather than defaulted, so a
// hallucinated route name never reaches the dispatch switch.
func ParseRoute(s string) (RouteKind, bool) {
	switch RouteKind(strings.ToLower(strings.TrimSpace(s))) {
	case RouteFaceRecognitionTTS:
		return RouteFaceRecognitionTTS, true
	case RouteSignLanguage:
		return RouteSignLanguage, true
	case RouteSceneDescription:
		return RouteSceneDescription, true
	case RouteNone:
		return RouteNone, true
	default:
		return RouteNone, false
	}
}

// Request is the normalized inbound situation. It is constructed once per
// inbound call from one of the wire shapes (base64 image, image URL, or
// multipart upload) and owned solely by that call.
type Request struct {
	// Image is the decoded image payload. Nil when the request is audio-only.
	Image []byte

	// ImageMIME is the sniffed MIME type of Image (e.g., "image/jpeg").
	ImageMIME string

	// Audio is an optional raw audio payload, forwarded to backends that
	// accept one. Never interpreted locally.
	Audio []byte

	// AudioDescription is an optional transcription or description of the
	// audio context.
	AudioDescription string
}

// HasImage reports whether the request carries an image payload.
func (r *Request) HasImage() bool { return len(r.Image) > 0 }

// HasAudio reports whether the request carries a raw audio payload.
func (r *Request) HasAudio() bool { return len(r.Audio) > 0 }

// ImageBase64 returns the image payload base64-encoded for backends that
// expect it on the wire that way. Empty string when there is no image.
func (r *Request) ImageBase64() string {
	if !r.HasImage() {
		return ""
	}
	return base64.StdEncoding.EncodeToString(r.Image)
}

// Judgment is the structured result of asking the interpretation model which
// backend is implicated. It is a value object: returned by value and never
// mutated after construction.
type Judgment struct {
	// Route is the capability the model selected.
	Route RouteKind `json:"route"`

	// Confidence is the model's confidence in [0, 1].
	Confidence float64 `json:"confidence"`

	// Reasoning is a free-text explanation for observability only.
	// It is never parsed for control flow.
	Reasoning string `json:"reasoning"`

	// Errored is true when the interpretation call itself failed
	// (unreachable model, timeout, unparseable reply).
	Errored bool `json:"error"`
}

// ErrorJudgment builds a judgment for a failed interpretation call.
// Errored judgments always carry route none and zero confidence.
func ErrorJudgment(reason string) Judgment {
	return Judgment{
		Route:      RouteNone,
		Confidence: 0,
		Reasoning:  reason,
		Errored:    true,
	}
}

// Status classifies the final result of a routing call.
type Status string

const (
	// StatusSuccess means a backend was invoked and returned a payload.
	StatusSuccess Status = "success"

	// StatusSkipped means no backend was invoked: low confidence, route
	// none, or an analyze-only call. An expected, non-exceptional outcome.
	StatusSkipped Status = "skipped"

	// StatusError means interpretation or the backend call failed.
	StatusError Status = "error"
)

// Outcome is the uniform envelope returned to the caller regardless of which
// internal path handled the request. The JSON field names are the stable
// wire contract.
type Outcome struct {
	// Decision is the routing judgment that drove this outcome.
	Decision Judgment `json:"routing_decision"`

	// APIResponse is the raw payload from the invoked backend, or null when
	// no backend was called.
	APIResponse json.RawMessage `json:"api_response"`

	// Status is one of success, skipped, error.
	Status Status `json:"status"`

	// Error describes the failure. Populated only when Status is error.
	Error string `json:"error,omitempty"`
}

// SuccessOutcome builds the envelope for a completed backend call.
func SuccessOutcome(decision Judgment, payload json.RawMessage) *Outcome {
	return &Outcome{
		Decision:    decision,
		APIResponse: payload,
		Status:      StatusSuccess,
	}
}

// SkippedOutcome builds the envelope for a call where no backend was invoked.
func SkippedOutcome(decision Judgment) *Outcome {
	return &Outcome{
		Decision: decision,
		Status:   StatusSkipped,
	}
}

// ErrorOutcome builds the envelope for a failed interpretation or backend call.
func ErrorOutcome(decision Judgment, errMsg string) *Outcome {
	return &Outcome{
		Decision: decision,
		Status:   StatusError,
		Error:    errMsg,
	}
}
