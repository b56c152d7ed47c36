package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/percepteye/semrouter/internal/frame"
)

const (
	maxUploadBytes = 32 << 20
	maxFetchBytes  = 10 << 20
)

// analyzeRequest is the JSON body accepted by /analyze, /route, and the
// forced-route endpoints. An image may be supplied inline as base64 or by
// URL, but not both.
type analyzeRequest struct {
	ImageBase64      string `json:"image_base64,omitempty"`
	ImageURL         string `json:"image_url,omitempty"`
	AudioDescription string `json:"audio_description,omitempty"`
}

// requestFromJSON decodes a JSON request body into a normalized frame
// request, fetching or decoding the image as needed.
func (s *Server) requestFromJSON(r *http.Request) (*frame.Request, error) {
	var body analyzeRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxUploadBytes)).Decode(&body); err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}

	if body.ImageBase64 != "" && body.ImageURL != "" {
		return nil, errors.New("provide image_base64 or image_url, not both")
	}

	req := &frame.Request{AudioDescription: body.AudioDescription}

	switch {
	case body.ImageBase64 != "":
		data, err := decodeImageBase64(body.ImageBase64)
		if err != nil {
			return nil, err
		}
		mime, err := sniffImage(data)
		if err != nil {
			return nil, err
		}
		req.Image = data
		req.ImageMIME = mime

	case body.ImageURL != "":
		data, err := s.fetchImage(r.Context(), body.ImageURL)
		if err != nil {
			return nil, err
		}
		mime, err := sniffImage(data)
		if err != nil {
			return nil, err
		}
		req.Image = data
		req.ImageMIME = mime
	}

	return req, nil
}

// requestFromMultipart parses a multipart upload with optional image and
// audio files plus an audio_description field.
func requestFromMultipart(r *http.Request) (*frame.Request, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, fmt.Errorf("invalid multipart form: %w", err)
	}

	req := &frame.Request{AudioDescription: r.FormValue("audio_description")}

	if file, _, err := r.FormFile("image"); err == nil {
		defer file.Close()
		data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
		if err != nil {
			return nil, fmt.Errorf("reading image: %w", err)
		}
		mime, err := sniffImage(data)
		if err != nil {
			return nil, err
		}
		req.Image = data
		req.ImageMIME = mime
	}

	if file, _, err := r.FormFile("audio"); err == nil {
		defer file.Close()
		data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
		if err != nil {
			return nil, fmt.Errorf("reading audio: %w", err)
		}
		req.Audio = data
	}

	return req, nil
}

// decodeImageBase64 decodes an inline image, tolerating a data URI prefix.
func decodeImageBase64(s string) ([]byte, error) {
	if idx := strings.Index(s, ";base64,"); idx >= 0 && strings.HasPrefix(s, "data:") {
		s = s[idx+len(";base64,"):]
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 image: %w", err)
	}
	return data, nil
}

// fetchImage downloads an image from a URL with a bounded timeout and size.
func (s *Server) fetchImage(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid image_url: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching image_url: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetching image_url: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes+1))
	if err != nil {
		return nil, fmt.Errorf("fetching image_url: %w", err)
	}
	if len(data) > maxFetchBytes {
		return nil, fmt.Errorf("image_url body exceeds %d bytes", maxFetchBytes)
	}
	return data, nil
}

// sniffImage validates that data looks like a supported image and returns its
// detected MIME type. Detection uses content sniffing only; client-supplied
// content types are ignored.
func sniffImage(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty image data")
	}
	mime := http.DetectContentType(data)
	switch mime {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return mime, nil
	default:
		return "", fmt.Errorf("unsupported image type %q", mime)
	}
}
