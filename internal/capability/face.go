package capability

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/percepteye/semrouter/internal/frame"
)

// FaceRecognitionTTSClient calls the combined face recognition + speech backend.
//
// Wire contract: POST multipart/form-data to /process with fields:
//   - image: base64-encoded image string (required, a form field, not a file)
//   - audio: optional audio file for transcription
//   - audio_text: optional text to synthesize
//   - annotated, announce, speak: feature flags
//
// Response: {faces[], locations[], unknown_count, announcement, speech_text,
// annotated_image_base64?, tts_audio_base64?, transcribed?, tts_error?}.
type FaceRecognitionTTSClient struct {
	endpoint string
	httpc    *http.Client
}

// NewFaceRecognitionTTS creates a client bound to the given endpoint.
func NewFaceRecognitionTTS(endpoint string, timeout time.Duration) *FaceRecognitionTTSClient {
	return &FaceRecognitionTTSClient{
		endpoint: endpoint,
		httpc:    newHTTPClient(timeout),
	}
}

// Route returns the RouteKind this client serves.
func (c *FaceRecognitionTTSClient) Route() frame.RouteKind { return frame.RouteFaceRecognitionTTS }

// Call sends the image (and audio context, when present) to the backend.
// Annotated output, announcements and speech synthesis are always requested;
// the backend degrades gracefully when it cannot provide them.
func (c *FaceRecognitionTTSClient) Call(ctx context.Context, req *frame.Request) Result {
	if !req.HasImage() {
		return failure("no image provided for face recognition")
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	// The backend expects the image as a base64 string field, not a file part.
	if err := writer.WriteField("image", req.ImageBase64()); err != nil {
		return failure("face recognition backend: writing image field: %v", err)
	}

	if req.HasAudio() {
		part, err := writer.CreateFormFile("audio", "audio.wav")
		if err != nil {
			return failure("face recognition backend: creating audio part: %v", err)
		}
		if _, err := io.Copy(part, bytes.NewReader(req.Audio)); err != nil {
			return failure("face recognition backend: writing audio: %v", err)
		}
	}

	if req.AudioDescription != "" {
		if err := writer.WriteField("audio_text", req.AudioDescription); err != nil {
			return failure("face recognition backend: writing audio_text field: %v", err)
		}
	}
	for _, flag := range []string{"annotated", "announce", "speak"} {
		if err := writer.WriteField(flag, "true"); err != nil {
			return failure("face recognition backend: writing %s field: %v", flag, err)
		}
	}
	if err := writer.Close(); err != nil {
		return failure("face recognition backend: finalizing form: %v", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return failure("face recognition backend: creating request: %v", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	slog.Debug("calling face recognition backend",
		"endpoint", c.endpoint,
		"image_bytes", len(req.Image),
		"has_audio", req.HasAudio())
	return doBackendRequest(c.httpc, httpReq, "face recognition")
}
