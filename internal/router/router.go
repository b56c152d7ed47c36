// Package router implements the core routing policy engine.
//
// The router takes a normalized situation, obtains a judgment from the
// interpreter, applies the confidence gate, then dispatches to exactly one
// capability backend. No backend is ever invoked below the configured
// confidence threshold — this is the central policy invariant, since
// downstream calls are costly and can produce user-facing output such as
// synthesized speech.
package router

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/percepteye/semrouter/internal/capability"
	"github.com/percepteye/semrouter/internal/frame"
	"github.com/percepteye/semrouter/internal/interpreter"
)

// Router is the central policy engine. It is stateless aside from its
// configuration and safe for concurrent use.
type Router struct {
	interp        interpreter.Interpreter
	face          capability.Client
	sign          capability.Client
	scene         capability.Client
	threshold     float64
	interpTimeout time.Duration
}

// New creates a Router with the given interpreter, one capability client per
// route, the confidence threshold below which backends are never called, and
// the interpretation call timeout.
func New(interp interpreter.Interpreter, face, sign, scene capability.Client, threshold float64, interpTimeout time.Duration) *Router {
	return &Router{
		interp:        interp,
		face:          face,
		sign:          sign,
		scene:         scene,
		threshold:     threshold,
		interpTimeout: interpTimeout,
	}
}

// Route processes one situation through the full pipeline: interpret, gate,
// dispatch. When execute is false (an analyze-only call) no backend is ever
// invoked and the outcome reflects only whether interpretation succeeded.
//
// Route never returns an error; every failure is folded into the outcome
// envelope. Calling it twice with identical input may produce different
// outcomes — the interpretation model is non-deterministic by contract.
func (r *Router) Route(ctx context.Context, req *frame.Request, execute bool) *frame.Outcome {
	start := time.Now()
	logger := slog.With("request_id", uuid.NewString(), "execute", execute)
	logger.Info("routing started",
		"has_image", req.HasImage(),
		"has_audio", req.HasAudio(),
		"has_audio_description", req.AudioDescription != "")

	// The model call is one of the two suspension points and carries its own
	// deadline; the inbound request context alone has none, so a hung model
	// would otherwise stall the request for as long as the client waits.
	interpCtx, cancel := context.WithTimeout(ctx, r.interpTimeout)
	judgment := r.interp.Interpret(interpCtx, req)
	cancel()

	if judgment.Errored {
		logger.Error("interpretation failed", "reasoning", judgment.Reasoning)
		return frame.ErrorOutcome(judgment, "interpretation failed: "+judgment.Reasoning)
	}

	logger.Info("judgment received",
		"route", judgment.Route,
		"confidence", judgment.Confidence,
		"reasoning", judgment.Reasoning)

	if !execute {
		return frame.SkippedOutcome(judgment)
	}

	if judgment.Route == frame.RouteNone || judgment.Confidence < r.threshold {
		logger.Warn("below confidence gate, skipping backend call",
			"route", judgment.Route,
			"confidence", judgment.Confidence,
			"threshold", r.threshold)
		return frame.SkippedOutcome(judgment)
	}

	client := r.clientFor(judgment.Route)
	result := client.Call(ctx, req)

	if !result.Success {
		logger.Error("backend call failed", "route", judgment.Route, "error", result.Error)
		return frame.ErrorOutcome(judgment, result.Error)
	}

	logger.Info("routing complete",
		"route", judgment.Route,
		"duration", time.Since(start))
	return frame.SuccessOutcome(judgment, result.Payload)
}

// ForceCall bypasses the interpreter and invokes one capability backend
// directly. It exists to isolate backend failures from routing-policy
// failures during testing and operations.
func (r *Router) ForceCall(ctx context.Context, route frame.RouteKind, req *frame.Request) *frame.Outcome {
	judgment := frame.Judgment{
		Route:      route,
		Confidence: 1.0,
		Reasoning:  "semantic routing bypassed (forced route)",
	}

	if route == frame.RouteNone {
		return frame.ErrorOutcome(judgment, fmt.Sprintf("cannot force route %q", route))
	}

	result := r.clientFor(route).Call(ctx, req)
	if !result.Success {
		return frame.ErrorOutcome(judgment, result.Error)
	}
	return frame.SuccessOutcome(judgment, result.Payload)
}

// Threshold returns the configured confidence threshold.
func (r *Router) Threshold() float64 { return r.threshold }

// clientFor is the single dispatch site. The switch is exhaustive over the
// closed RouteKind enumeration; RouteNone never reaches it through Route
// because the gate returns first, and ForceCall rejects it explicitly.
func (r *Router) clientFor(route frame.RouteKind) capability.Client {
	switch route {
	case frame.RouteFaceRecognitionTTS:
		return r.face
	case frame.RouteSignLanguage:
		return r.sign
	case frame.RouteSceneDescription:
		return r.scene
	case frame.RouteNone:
		fallthrough
	default:
		panic(fmt.Sprintf("no capability client for route %q", route))
	}
}
