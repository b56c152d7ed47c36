package capability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/percepteye/semrouter/internal/frame"
)

const signPredictPath = "/predict/base64"

// SignLanguageClient calls the sign language gesture classifier.
//
// Wire contract: POST {"image_base64": ...} to /predict/base64, returning
// {success, predicted_sign, confidence, hand_detected, message, ...} where
// predicted_sign and confidence are null when no hand is detected.
type SignLanguageClient struct {
	endpoint string
	httpc    *http.Client
}

// NewSignLanguage creates a client bound to the given endpoint. The endpoint
// may be a bare base URL; the /predict/base64 path is appended when missing.
func NewSignLanguage(endpoint string, timeout time.Duration) *SignLanguageClient {
	if !strings.HasSuffix(endpoint, signPredictPath) {
		endpoint = strings.TrimRight(endpoint, "/") + signPredictPath
	}
	return &SignLanguageClient{
		endpoint: endpoint,
		httpc:    newHTTPClient(timeout),
	}
}

// Route returns the RouteKind this client serves.
func (c *SignLanguageClient) Route() frame.RouteKind { return frame.RouteSignLanguage }

// Call sends the image to the classifier.
func (c *SignLanguageClient) Call(ctx context.Context, req *frame.Request) Result {
	if !req.HasImage() {
		return failure("no image provided for sign language detection")
	}

	body, err := json.Marshal(map[string]string{"image_base64": req.ImageBase64()})
	if err != nil {
		return failure("sign language backend: marshalling request: %v", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return failure("sign language backend: creating request: %v", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	slog.Debug("calling sign language backend", "endpoint", c.endpoint, "image_bytes", len(req.Image))
	return doBackendRequest(c.httpc, httpReq, "sign language")
}
