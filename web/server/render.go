package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/df07/glimmer/pkg/core"
	"github.com/df07/glimmer/pkg/film"
	"github.com/df07/glimmer/pkg/renderer"
	"github.com/df07/glimmer/pkg/scene"
)

// PassUpdate is sent after every completed pass of a streamed render
type PassUpdate struct {
	PassNumber   int     `json:"passNumber"`   // 1-based
	TotalPasses  int     `json:"totalPasses"`  // Passes requested
	ImageData    string  `json:"imageData"`    // Base64 encoded PNG of the running average
	ElapsedMs    int64   `json:"elapsedMs"`    // Time since the stream started
	TotalSamples int     `json:"totalSamples"` // Samples accumulated over all passes
	Luminance    float64 `json:"luminance"`    // Average luminance of the running average
}

// SSEEvent represents a unified SSE event for thread-safe writing
type SSEEvent struct {
	Type string `json:"type"` // "console", "pass", "error", "complete"
	Data string `json:"data"` // JSON-encoded data
}

// handleRender renders a single image and returns it as a PNG
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	req, err := parseSceneRequest(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err))
		return
	}
	sc, err := s.createScene(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rt := renderer.NewRenderer(renderer.Options{
		Seed:   req.Seed,
		Logger: NewWebLogger(newRenderID(), nil),
	})
	img := film.NewImage(req.Width, req.Height)
	if _, err := rt.RenderContext(r.Context(), sc, img, req.Width, req.Height); err != nil {
		if !errors.Is(err, context.Canceled) {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	var buf bytes.Buffer
	if err := film.EncodePNG(&buf, img, film.EncodingSRGB); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Write(buf.Bytes())
}

// handleRenderStream renders a scene in passes and streams the running average via SSE.
// Pass p uses seed+p so every pass contributes independent samples.
func (s *Server) handleRenderStream(w http.ResponseWriter, r *http.Request) {
	s.setSSEHeaders(w)
	ctx := r.Context()

	// Create unified SSE event channel for thread-safe writing
	sseEventChan := make(chan SSEEvent, 100)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.writeSSEEvents(w, ctx, sseEventChan)
	}()
	defer func() {
		close(sseEventChan)
		<-writerDone
	}()

	req, err := parseSceneRequest(r.URL.Query())
	if err != nil {
		s.handleError(ctx, sseEventChan, fmt.Sprintf("Invalid request: %v", err))
		return
	}
	passes, err := parseIntParam(r.URL.Query(), "passes", 4, 1, 1000)
	if err != nil {
		s.handleError(ctx, sseEventChan, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	sc, err := s.createScene(req)
	if err != nil {
		s.handleError(ctx, sseEventChan, err.Error())
		return
	}

	// Setup console logging and streaming
	consoleChan := make(chan ConsoleMessage, 50)
	consoleDone := make(chan struct{})
	go func() {
		defer close(consoleDone)
		s.streamConsoleMessages(ctx, consoleChan, sseEventChan)
	}()
	logger := NewWebLogger(newRenderID(), consoleChan)

	err = s.renderPasses(ctx, sc, req, passes, logger, sseEventChan)
	close(consoleChan)
	<-consoleDone

	if err != nil {
		if !errors.Is(err, context.Canceled) {
			s.handleError(ctx, sseEventChan, fmt.Sprintf("Rendering failed: %v", err))
		}
		return
	}

	select {
	case sseEventChan <- SSEEvent{Type: "complete", Data: "Rendering completed"}:
	case <-ctx.Done():
	}
}

// renderPasses runs the passes and sends a PassUpdate after each one
func (s *Server) renderPasses(ctx context.Context, sc *scene.Scene, req *SceneRequest, passes int, logger core.Logger, sseEventChan chan SSEEvent) error {
	startTime := time.Now()
	width, height := req.Width, req.Height
	sum := make([]core.Vec3, width*height)
	pass := film.NewImage(width, height)
	preview := film.NewImage(width, height)
	totalSamples := 0

	for p := 0; p < passes; p++ {
		rt := renderer.NewRenderer(renderer.Options{Seed: req.Seed + int64(p), Logger: logger})
		stats, err := rt.RenderContext(ctx, sc, pass, width, height)
		if err != nil {
			return err
		}
		totalSamples += stats.TotalSamples

		scale := 1.0 / float64(p+1)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				i := y*width + x
				sum[i] = sum[i].Add(pass.At(x, y))
				preview.Set(x, y, sum[i].Multiply(scale))
			}
		}

		imageData, err := imageToBase64PNG(preview)
		if err != nil {
			return fmt.Errorf("error encoding pass image: %w", err)
		}
		update := PassUpdate{
			PassNumber:   p + 1,
			TotalPasses:  passes,
			ImageData:    imageData,
			ElapsedMs:    time.Since(startTime).Milliseconds(),
			TotalSamples: totalSamples,
			Luminance:    renderer.CalculateAverageLuminance(preview),
		}
		data, err := json.Marshal(update)
		if err != nil {
			return fmt.Errorf("error marshaling pass update: %w", err)
		}

		select {
		case sseEventChan <- SSEEvent{Type: "pass", Data: string(data)}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// setSSEHeaders sets the required headers for Server-Sent Events
func (s *Server) setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

func newRenderID() string {
	return fmt.Sprintf("render-%d", time.Now().UnixNano())
}

// writeSSEEvents handles writing all SSE events in a single goroutine (thread-safe).
// It returns when the channel is closed or the client disconnects.
func (s *Server) writeSSEEvents(w http.ResponseWriter, ctx context.Context, sseEventChan chan SSEEvent) {
	for {
		select {
		case event, ok := <-sseEventChan:
			if !ok {
				return
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, event.Data); err != nil {
				// Client disconnected during write
				return
			}
			if flusher, ok := w.(http.Flusher); ok {
				flusher.Flush()
			}

		case <-ctx.Done():
			// Client disconnected
			return
		}
	}
}

// streamConsoleMessages forwards console messages until consoleChan is closed
func (s *Server) streamConsoleMessages(ctx context.Context, consoleChan chan ConsoleMessage, sseEventChan chan SSEEvent) {
	for consoleMsg := range consoleChan {
		data, err := json.Marshal(consoleMsg)
		if err != nil {
			log.Printf("Error marshaling console message: %v", err)
			continue
		}

		select {
		case sseEventChan <- SSEEvent{Type: "console", Data: string(data)}:
		case <-ctx.Done():
		default:
			// Channel full, skip message to avoid blocking
		}
	}
}

// imageToBase64PNG encodes img as an sRGB PNG in base64
func imageToBase64PNG(img *film.Image) (string, error) {
	var buf bytes.Buffer
	if err := film.EncodePNG(&buf, img, film.EncodingSRGB); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// handleError sends an error event to the SSE channel
func (s *Server) handleError(ctx context.Context, sseEventChan chan SSEEvent, message string) {
	select {
	case sseEventChan <- SSEEvent{Type: "error", Data: message}:
	case <-ctx.Done():
		// Client disconnected, don't block
	}
}
