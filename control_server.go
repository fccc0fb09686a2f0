// control_server.go - HTTP control surface. Serves the operator panel,
// a JSON API mirroring every engine control, an MJPEG stream of rendered
// frames, and acts as the frame loop's sink.
package main

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/Masterminds/sprig"
)

type apiResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type statusNote struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

type ControlServer struct {
	engine *Engine
	loop   *FrameLoop
	tracks *TrackPlayer

	knobCCBase int

	frameMu     sync.Mutex
	frameJPEG   []byte
	frameURI    string
	frameSeq    uint64
	frameNotify chan struct{}

	statusMu   sync.Mutex
	lastStatus statusNote

	srv  *http.Server
	tmpl *template.Template
}

func NewControlServer(engine *Engine, loop *FrameLoop, tracks *TrackPlayer, knobCCBase int) (*ControlServer, error) {
	tmpl, err := template.New("panel").Funcs(sprig.TxtFuncMap()).Parse(controlPanelHTML)
	if err != nil {
		return nil, fmt.Errorf("failed to parse control panel template: %w", err)
	}

	s := &ControlServer{
		engine:      engine,
		loop:        loop,
		tracks:      tracks,
		knobCCBase:  knobCCBase,
		frameNotify: make(chan struct{}),
		tmpl:        tmpl,
	}
	return s, nil
}

// routes builds the HTTP mux: the operator panel, the JSON API, and the
// frame endpoints.
func (s *ControlServer) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handlePanel)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/modes", s.handleModes)
	mux.HandleFunc("POST /api/mode/load", s.handleModeLoad)
	mux.HandleFunc("POST /api/mode/upload", s.handleModeUpload)
	mux.HandleFunc("POST /api/knob", s.handleKnob)
	mux.HandleFunc("POST /api/audio", s.handleAudio)
	mux.HandleFunc("POST /api/audio/data", s.handleAudioData)
	mux.HandleFunc("POST /api/midi", s.handleMIDI)
	mux.HandleFunc("POST /api/track", s.handleTrack)
	mux.HandleFunc("POST /api/start", s.handleStart)
	mux.HandleFunc("POST /api/stop", s.handleStop)
	mux.HandleFunc("GET /frame", s.handleFrame)
	mux.HandleFunc("GET /stream", s.handleStream)
	return mux
}

// Start begins serving on addr. Returns once the listener is running; serve
// errors after that are reported on the returned channel.
func (s *ControlServer) Start(addr string) <-chan error {
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()
	return errc
}

func (s *ControlServer) Close() error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Close()
}

// PublishFrame implements FrameSink. The decoded JPEG is kept for /frame
// and the MJPEG stream; waiting streamers are woken.
func (s *ControlServer) PublishFrame(dataURI string) {
	var jpeg []byte
	if payload, ok := strings.CutPrefix(dataURI, FRAME_DATA_URI_PREFIX); ok {
		if decoded, err := base64.StdEncoding.DecodeString(payload); err == nil {
			jpeg = decoded
		}
	}

	s.frameMu.Lock()
	s.frameURI = dataURI
	if jpeg != nil {
		s.frameJPEG = jpeg
	}
	s.frameSeq++
	close(s.frameNotify)
	s.frameNotify = make(chan struct{})
	s.frameMu.Unlock()
}

// PublishStatus implements FrameSink.
func (s *ControlServer) PublishStatus(level, message string) {
	s.statusMu.Lock()
	s.lastStatus = statusNote{Level: level, Message: message}
	s.statusMu.Unlock()
}

// waitFrame blocks until a frame newer than lastSeq is available or the
// context is cancelled.
func (s *ControlServer) waitFrame(done <-chan struct{}, lastSeq uint64) ([]byte, uint64) {
	for {
		s.frameMu.Lock()
		if s.frameSeq > lastSeq && s.frameJPEG != nil {
			jpeg, seq := s.frameJPEG, s.frameSeq
			s.frameMu.Unlock()
			return jpeg, seq
		}
		notify := s.frameNotify
		s.frameMu.Unlock()

		select {
		case <-done:
			return nil, 0
		case <-notify:
		}
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func apiError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, apiResponse{Status: "error", Message: message})
}

func apiOK(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, apiResponse{Status: "ok", Message: message})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		apiError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

func (s *ControlServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	apiOK(w, "")
}

func (s *ControlServer) handlePanel(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := struct {
		Title     string
		Width     int
		Height    int
		TargetFPS int
	}{"Luma Engine", SCREEN_WIDTH, SCREEN_HEIGHT, TARGET_FPS}
	if err := s.tmpl.Execute(w, data); err != nil {
		fmt.Printf("Control panel render error: %v\n", err)
	}
}

func (s *ControlServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.statusMu.Lock()
	note := s.lastStatus
	s.statusMu.Unlock()

	type statusReply struct {
		EngineStatus
		Running    bool       `json:"running"`
		Track      string     `json:"track,omitempty"`
		LastStatus statusNote `json:"last_status"`
	}
	reply := statusReply{
		EngineStatus: s.engine.Status(),
		Running:      s.loop.Running(),
		LastStatus:   note,
	}
	if s.tracks != nil && s.tracks.Playing() {
		reply.Track = s.tracks.TrackName()
	}
	writeJSON(w, http.StatusOK, reply)
}

func (s *ControlServer) handleModes(w http.ResponseWriter, r *http.Request) {
	modes, err := s.engine.ListModes()
	if err != nil {
		apiError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "modes": modes})
}

func (s *ControlServer) handleModeLoad(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path string `json:"path"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	msg, err := s.engine.LoadMode(req.Path)
	if err != nil {
		apiError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.publishInitialFrame()
	apiOK(w, msg)
}

func (s *ControlServer) handleModeUpload(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Filename string `json:"filename"`
		Content  string `json:"content"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Filename == "" {
		req.Filename = "uploaded_mode.lua"
	}
	msg, err := s.engine.LoadModeSource(req.Filename, req.Content)
	if err != nil {
		apiError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.publishInitialFrame()
	apiOK(w, msg)
}

// publishInitialFrame renders one frame right after a mode load so clients
// see something before the loop starts.
func (s *ControlServer) publishInitialFrame() {
	if uri, err := s.engine.RenderFrame(); err == nil {
		s.PublishFrame(uri)
	}
}

func (s *ControlServer) handleKnob(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Knob  int     `json:"knob"`
		Value float64 `json:"value"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Knob < 1 || req.Knob > 5 {
		apiError(w, http.StatusBadRequest, fmt.Sprintf("knob index out of range: %d", req.Knob))
		return
	}
	s.engine.SetKnob(req.Knob, req.Value)
	apiOK(w, "")
}

func (s *ControlServer) handleAudio(w http.ResponseWriter, r *http.Request) {
	req := struct {
		Type      string  `json:"type"`
		Level     float64 `json:"level"`
		Frequency float64 `json:"frequency"`
	}{Type: AUDIO_TYPE_SINE, Level: 0.5, Frequency: 440}
	if !decodeBody(w, r, &req) {
		return
	}
	s.engine.ConfigureAudio(req.Type, req.Level, req.Frequency)
	apiOK(w, fmt.Sprintf("Audio set to %s (level: %.2f)", req.Type, req.Level))
}

func (s *ControlServer) handleAudioData(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Samples []int `json:"samples"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	buf := make([]byte, len(req.Samples))
	for i, v := range req.Samples {
		if v < 0 {
			v = 0
		}
		if v > 255 {
			v = 255
		}
		buf[i] = byte(v)
	}
	s.engine.IngestAudio(buf)
	apiOK(w, "")
}

func (s *ControlServer) handleMIDI(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Event      string  `json:"event"`
		Note       int     `json:"note"`
		Velocity   int     `json:"velocity"`
		Controller int     `json:"controller"`
		Value      float64 `json:"value"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	switch req.Event {
	case "note_on":
		s.engine.NoteOn(req.Note, req.Velocity)
	case "note_off":
		s.engine.NoteOff(req.Note)
	case "cc":
		idx := req.Controller - s.knobCCBase
		if idx >= 0 && idx < 5 {
			s.engine.SetKnob(idx+1, req.Value/127.0)
		}
	case "clock":
		s.engine.MIDIClockTick()
	default:
		apiError(w, http.StatusBadRequest, fmt.Sprintf("unknown MIDI event: %q", req.Event))
		return
	}
	apiOK(w, "")
}

func (s *ControlServer) handleTrack(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path string `json:"path"`
		Stop bool   `json:"stop"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if s.tracks == nil {
		apiError(w, http.StatusServiceUnavailable, "track playback not available")
		return
	}
	if req.Stop {
		s.tracks.Stop()
		apiOK(w, "Track stopped")
		return
	}
	msg, err := s.tracks.Play(req.Path)
	if err != nil {
		apiError(w, http.StatusBadRequest, err.Error())
		return
	}
	apiOK(w, msg)
}

func (s *ControlServer) handleStart(w http.ResponseWriter, r *http.Request) {
	if err := s.loop.Start(); err != nil {
		if errors.Is(err, ErrAlreadyRunning) {
			writeJSON(w, http.StatusOK, apiResponse{Status: "info", Message: "Already running"})
			return
		}
		apiError(w, http.StatusInternalServerError, err.Error())
		return
	}
	apiOK(w, "Rendering started")
}

func (s *ControlServer) handleStop(w http.ResponseWriter, r *http.Request) {
	s.loop.Stop()
	apiOK(w, "Rendering stopped")
}

func (s *ControlServer) handleFrame(w http.ResponseWriter, r *http.Request) {
	s.frameMu.Lock()
	jpeg := s.frameJPEG
	s.frameMu.Unlock()
	if jpeg == nil {
		http.Error(w, "no frame rendered yet", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(jpeg)
}

func (s *ControlServer) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")

	var seen uint64
	for {
		jpeg, seq := s.waitFrame(r.Context().Done(), seen)
		if jpeg == nil {
			return
		}
		seen = seq
		if _, err := fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(jpeg)); err != nil {
			return
		}
		if _, err := w.Write(jpeg); err != nil {
			return
		}
		if _, err := io.WriteString(w, "\r\n"); err != nil {
			return
		}
		flusher.Flush()
	}
}
