// Package capability implements HTTP clients for the downstream capability
// backends.
//
// Each backend accepts a different wire shape (JSON body vs. multipart form),
// so every client adapts the single internal request shape to its backend's
// contract. Clients never retry and never block past their configured
// timeout; failures come back as a Result with Success=false rather than as
// errors, so the router has one uniform thing to inspect.
package capability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/percepteye/semrouter/internal/frame"
)

// maxResponseBytes bounds how much of a backend reply is read.
const maxResponseBytes = 8 << 20 // 8 MB, annotated images can be large

// Result is the normalized outcome of one backend call.
type Result struct {
	// Success is true when the backend returned a 2xx reply.
	Success bool

	// Payload is the backend's raw JSON reply. Nil on failure.
	Payload json.RawMessage

	// Error describes the failure. Empty on success.
	Error string
}

// Client is the interface every capability backend client implements.
type Client interface {
	// Route returns the RouteKind this client is bound to.
	Route() frame.RouteKind

	// Call adapts the request to the backend's wire shape and invokes it.
	// Call is total: transport failures, timeouts and non-2xx replies are
	// reported through the Result, never raised.
	Call(ctx context.Context, req *frame.Request) Result
}

// failure builds a failed result with a formatted error message.
func failure(format string, args ...any) Result {
	return Result{Error: fmt.Sprintf(format, args...)}
}

// doBackendRequest executes a prepared request and normalizes the reply.
// name identifies the backend in error messages.
func doBackendRequest(httpc *http.Client, req *http.Request, name string) Result {
	resp, err := httpc.Do(req)
	if err != nil {
		if isTimeout(err) {
			return failure("%s backend timed out after %s", name, httpc.Timeout)
		}
		return failure("%s backend request: %v", name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return failure("%s backend: reading response: %v", name, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return failure("%s backend returned status %d: %.512s", name, resp.StatusCode, body)
	}

	if !json.Valid(body) {
		return failure("%s backend returned non-JSON response: %.200s", name, body)
	}

	return Result{Success: true, Payload: json.RawMessage(body)}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}
