// Package interpreter defines the interface for multimodal situation interpretation.
//
// An interpreter takes a normalized request (image and/or audio description)
// and asks an external vision/language model which capability backend is
// implicated, returning a structured judgment. Semrouter ships with a single
// backend, Gemini; router-policy tests substitute scripted implementations.
package interpreter

import (
	"context"

	"github.com/percepteye/semrouter/internal/frame"
)

// Interpreter is the interface for routing judgment generation.
//
// Interpret is total: upstream failures (unreachable model, timeout,
// unparseable reply) are converted into a judgment with Errored set, route
// none and zero confidence. Nothing below this boundary raises.
type Interpreter interface {
	// Name returns the backend identifier (e.g., "gemini").
	Name() string

	// Interpret calls the interpretation model exactly once and returns
	// its judgment. No retries are performed.
	Interpret(ctx context.Context, req *frame.Request) frame.Judgment

	// Close releases any resources held by the interpreter.
	Close() error
}
