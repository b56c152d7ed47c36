package router

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/percepteye/semrouter/internal/capability"
	"github.com/percepteye/semrouter/internal/frame"
)

// scriptedInterpreter returns a fixed judgment and counts invocations.
type scriptedInterpreter struct {
	judgment frame.Judgment
	calls    int
}

func (s *scriptedInterpreter) Name() string { return "scripted" }

func (s *scriptedInterpreter) Interpret(_ context.Context, _ *frame.Request) frame.Judgment {
	s.calls++
	return s.judgment
}

func (s *scriptedInterpreter) Close() error { return nil }

// spyClient records calls and replies with a canned result.
type spyClient struct {
	route  frame.RouteKind
	result capability.Result
	calls  int
}

func (s *spyClient) Route() frame.RouteKind { return s.route }

func (s *spyClient) Call(_ context.Context, _ *frame.Request) capability.Result {
	s.calls++
	return s.result
}

func okResult(payload string) capability.Result {
	return capability.Result{Success: true, Payload: json.RawMessage(payload)}
}

func newTestRouter(j frame.Judgment, threshold float64) (*Router, *spyClient, *spyClient, *spyClient) {
	face := &spyClient{route: frame.RouteFaceRecognitionTTS, result: okResult(`{"backend":"face"}`)}
	sign := &spyClient{route: frame.RouteSignLanguage, result: okResult(`{"backend":"sign"}`)}
	scene := &spyClient{route: frame.RouteSceneDescription, result: okResult(`{"backend":"scene"}`)}
	r := New(&scriptedInterpreter{judgment: j}, face, sign, scene, threshold, time.Second)
	return r, face, sign, scene
}

func testRequest() *frame.Request {
	return &frame.Request{Image: []byte{0x89, 'P', 'N', 'G'}, ImageMIME: "image/png"}
}

func TestRouteDispatchesToMatchingBackendOnly(t *testing.T) {
	cases := []struct {
		route frame.RouteKind
		want  string
	}{
		{frame.RouteFaceRecognitionTTS, `{"backend":"face"}`},
		{frame.RouteSignLanguage, `{"backend":"sign"}`},
		{frame.RouteSceneDescription, `{"backend":"scene"}`},
	}
	for _, tc := range cases {
		t.Run(string(tc.route), func(t *testing.T) {
			j := frame.Judgment{Route: tc.route, Confidence: 0.95, Reasoning: "test"}
			r, face, sign, scene := newTestRouter(j, 0.7)

			out := r.Route(context.Background(), testRequest(), true)

			require.Equal(t, frame.StatusSuccess, out.Status)
			assert.JSONEq(t, tc.want, string(out.APIResponse))

			total := face.calls + sign.calls + scene.calls
			assert.Equal(t, 1, total, "exactly one backend must be called")
		})
	}
}

func TestRouteConfidenceGate(t *testing.T) {
	j := frame.Judgment{Route: frame.RouteSignLanguage, Confidence: 0.69, Reasoning: "uncertain"}
	r, face, sign, scene := newTestRouter(j, 0.7)

	out := r.Route(context.Background(), testRequest(), true)

	assert.Equal(t, frame.StatusSkipped, out.Status)
	assert.Nil(t, out.APIResponse)
	assert.Zero(t, face.calls+sign.calls+scene.calls, "no backend may be called below threshold")
}

func TestRouteConfidenceEqualToThresholdPasses(t *testing.T) {
	j := frame.Judgment{Route: frame.RouteSignLanguage, Confidence: 0.7, Reasoning: "boundary"}
	r, _, sign, _ := newTestRouter(j, 0.7)

	out := r.Route(context.Background(), testRequest(), true)

	assert.Equal(t, frame.StatusSuccess, out.Status)
	assert.Equal(t, 1, sign.calls)
}

func TestRouteNoneSkipsRegardlessOfConfidence(t *testing.T) {
	j := frame.Judgment{Route: frame.RouteNone, Confidence: 0.99, Reasoning: "nothing actionable"}
	r, face, sign, scene := newTestRouter(j, 0.7)

	out := r.Route(context.Background(), testRequest(), true)

	assert.Equal(t, frame.StatusSkipped, out.Status)
	assert.Zero(t, face.calls+sign.calls+scene.calls)
}

func TestRouteErroredJudgmentContained(t *testing.T) {
	j := frame.ErrorJudgment("model unavailable")
	r, face, sign, scene := newTestRouter(j, 0.7)

	out := r.Route(context.Background(), testRequest(), true)

	assert.Equal(t, frame.StatusError, out.Status)
	assert.Contains(t, out.Error, "model unavailable")
	assert.Zero(t, face.calls+sign.calls+scene.calls)
}

func TestRouteAnalyzeOnlyNeverCallsBackends(t *testing.T) {
	routes := []frame.RouteKind{
		frame.RouteFaceRecognitionTTS,
		frame.RouteSignLanguage,
		frame.RouteSceneDescription,
	}
	for i := 0; i < 100; i++ {
		j := frame.Judgment{
			Route:      routes[i%len(routes)],
			Confidence: 0.9 + float64(i%10)/100,
			Reasoning:  fmt.Sprintf("iteration %d", i),
		}
		r, face, sign, scene := newTestRouter(j, 0.7)

		out := r.Route(context.Background(), testRequest(), false)

		require.Equal(t, frame.StatusSkipped, out.Status)
		require.Zero(t, face.calls+sign.calls+scene.calls,
			"analyze-only calls must never reach a backend")
	}
}

// hangingInterpreter blocks until its context expires, then reports the
// failure as an errored judgment, the same shape the gemini implementation
// produces for a deadline-exceeded model call.
type hangingInterpreter struct{}

func (h *hangingInterpreter) Name() string { return "hanging" }

func (h *hangingInterpreter) Interpret(ctx context.Context, _ *frame.Request) frame.Judgment {
	select {
	case <-ctx.Done():
		return frame.ErrorJudgment("gemini request failed: " + ctx.Err().Error())
	case <-time.After(10 * time.Second):
		return frame.Judgment{Route: frame.RouteSceneDescription, Confidence: 0.9}
	}
}

func (h *hangingInterpreter) Close() error { return nil }

func TestRouteInterpretationTimeoutBounded(t *testing.T) {
	face := &spyClient{route: frame.RouteFaceRecognitionTTS}
	sign := &spyClient{route: frame.RouteSignLanguage}
	scene := &spyClient{route: frame.RouteSceneDescription}
	r := New(&hangingInterpreter{}, face, sign, scene, 0.7, 50*time.Millisecond)

	start := time.Now()
	out := r.Route(context.Background(), testRequest(), true)
	elapsed := time.Since(start)

	assert.Less(t, elapsed, time.Second, "interpretation must be cut off at its deadline, not the caller's patience")
	assert.Equal(t, frame.StatusError, out.Status)
	assert.True(t, out.Decision.Errored)
	assert.Zero(t, face.calls+sign.calls+scene.calls)
}

func TestRouteBackendFailurePreserved(t *testing.T) {
	j := frame.Judgment{Route: frame.RouteFaceRecognitionTTS, Confidence: 0.9, Reasoning: "person present"}
	r, face, _, _ := newTestRouter(j, 0.7)
	face.result = capability.Result{Error: "face_recognition_tts backend timed out after 60s"}

	out := r.Route(context.Background(), testRequest(), true)

	assert.Equal(t, frame.StatusError, out.Status)
	assert.Equal(t, "face_recognition_tts backend timed out after 60s", out.Error)
	assert.Equal(t, frame.RouteFaceRecognitionTTS, out.Decision.Route, "judgment survives backend failure")
}

func TestForceCallBypassesInterpreter(t *testing.T) {
	interp := &scriptedInterpreter{judgment: frame.ErrorJudgment("should never be consulted")}
	sign := &spyClient{route: frame.RouteSignLanguage, result: okResult(`{"prediction":"hello"}`)}
	r := New(interp, &spyClient{}, sign, &spyClient{}, 0.7, time.Second)

	out := r.ForceCall(context.Background(), frame.RouteSignLanguage, testRequest())

	require.Equal(t, frame.StatusSuccess, out.Status)
	assert.Zero(t, interp.calls)
	assert.Equal(t, 1, sign.calls)
	assert.Equal(t, frame.RouteSignLanguage, out.Decision.Route)
	assert.Equal(t, 1.0, out.Decision.Confidence)
}

func TestForceCallRejectsNone(t *testing.T) {
	r, face, sign, scene := newTestRouter(frame.Judgment{}, 0.7)

	out := r.ForceCall(context.Background(), frame.RouteNone, testRequest())

	assert.Equal(t, frame.StatusError, out.Status)
	assert.Zero(t, face.calls+sign.calls+scene.calls)
}

func TestForceCallBackendFailure(t *testing.T) {
	r, face, _, _ := newTestRouter(frame.Judgment{}, 0.7)
	face.result = capability.Result{Error: "connection refused"}

	out := r.ForceCall(context.Background(), frame.RouteFaceRecognitionTTS, testRequest())

	assert.Equal(t, frame.StatusError, out.Status)
	assert.Equal(t, "connection refused", out.Error)
}

func TestRoutingScenarios(t *testing.T) {
	t.Run("clear hand sign routes to sign language", func(t *testing.T) {
		j := frame.Judgment{Route: frame.RouteSignLanguage, Confidence: 0.93, Reasoning: "single hand sign, primary focus"}
		r, _, sign, _ := newTestRouter(j, 0.7)
		sign.result = okResult(`{"success":true,"predicted_sign":"hello","confidence":0.97}`)

		out := r.Route(context.Background(), testRequest(), true)

		require.Equal(t, frame.StatusSuccess, out.Status)
		var payload struct {
			PredictedSign *string `json:"predicted_sign"`
		}
		require.NoError(t, json.Unmarshal(out.APIResponse, &payload))
		assert.NotNil(t, payload.PredictedSign)
	})

	t.Run("unclear audio-only input is skipped", func(t *testing.T) {
		j := frame.Judgment{Route: frame.RouteNone, Confidence: 0.3, Reasoning: "unclear background noise"}
		r, face, sign, scene := newTestRouter(j, 0.7)

		out := r.Route(context.Background(), &frame.Request{AudioDescription: "unclear background noise"}, true)

		assert.Equal(t, frame.StatusSkipped, out.Status)
		assert.Nil(t, out.APIResponse)
		assert.Zero(t, face.calls+sign.calls+scene.calls)
	})

	t.Run("interpreter timeout yields errored decision", func(t *testing.T) {
		j := frame.ErrorJudgment("gemini request failed: context deadline exceeded")
		r, face, sign, scene := newTestRouter(j, 0.7)

		out := r.Route(context.Background(), testRequest(), true)

		assert.Equal(t, frame.StatusError, out.Status)
		assert.True(t, out.Decision.Errored)
		assert.Zero(t, face.calls+sign.calls+scene.calls)
	})

	t.Run("empty request skipped", func(t *testing.T) {
		j := frame.Judgment{Route: frame.RouteNone, Confidence: 0.2, Reasoning: "empty frame"}
		r, face, sign, scene := newTestRouter(j, 0.7)

		out := r.Route(context.Background(), &frame.Request{}, true)

		assert.Equal(t, frame.StatusSkipped, out.Status)
		assert.Zero(t, face.calls+sign.calls+scene.calls)
	})
}

func TestOutcomeEnvelopeShape(t *testing.T) {
	j := frame.Judgment{Route: frame.RouteSceneDescription, Confidence: 0.8, Reasoning: "outdoor scene"}
	r, _, _, _ := newTestRouter(j, 0.7)

	out := r.Route(context.Background(), testRequest(), true)

	raw, err := json.Marshal(out)
	require.NoError(t, err)

	var envelope map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &envelope))
	assert.Contains(t, envelope, "routing_decision")
	assert.Contains(t, envelope, "api_response")
	assert.Contains(t, envelope, "status")
}
