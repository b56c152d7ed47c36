package capability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/percepteye/semrouter/internal/frame"
)

// SceneDescriptionClient calls the generic scene captioning backend, the
// fallback capability when neither faces nor signing are implicated.
//
// Wire contract: POST {"image_base64", "audio_description"?} returning
// {success, description, ...}.
type SceneDescriptionClient struct {
	endpoint string
	httpc    *http.Client
}

// NewSceneDescription creates a client bound to the given endpoint.
func NewSceneDescription(endpoint string, timeout time.Duration) *SceneDescriptionClient {
	return &SceneDescriptionClient{
		endpoint: endpoint,
		httpc:    newHTTPClient(timeout),
	}
}

// Route returns the RouteKind this client serves.
func (c *SceneDescriptionClient) Route() frame.RouteKind { return frame.RouteSceneDescription }

// Call sends the image and optional audio context to the describer.
func (c *SceneDescriptionClient) Call(ctx context.Context, req *frame.Request) Result {
	if !req.HasImage() {
		return failure("no image provided for scene description")
	}

	payload := map[string]string{"image_base64": req.ImageBase64()}
	if req.AudioDescription != "" {
		payload["audio_description"] = req.AudioDescription
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return failure("scene description backend: marshalling request: %v", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return failure("scene description backend: creating request: %v", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	slog.Debug("calling scene description backend", "endpoint", c.endpoint, "image_bytes", len(req.Image))
	return doBackendRequest(c.httpc, httpReq, "scene description")
}
