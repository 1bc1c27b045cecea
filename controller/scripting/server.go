// Package scripting exposes the playback coordinator's scripting surface
// (§6 "External interfaces — Scripting surface") over HTTP/3: the
// properties a remote client scripts a running player through —
// Next/Prev/Play/Stop/Pause/TogglePlaying/Mute take EXECUTE, Volume is
// GET/SET, URI is GET-only — each become one small REST endpoint, served
// the way internal/distribution/server.go serves its control API over
// quic-go's http3.Server.
package scripting

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/quic-go/quic-go"
	"github.com/quic-go/quic-go/http3"

	"github.com/zsiec/playcore/certs"
	"github.com/zsiec/playcore/controller"
	"github.com/zsiec/playcore/playlist"
)

// Player is the subset of *controller.Controller the scripting surface
// drives. Spelled out as an interface so server tests can exercise the
// HTTP layer against a fake without a real track-supplier stack.
type Player interface {
	Play()
	Stop()
	Pause()
	TogglePlaying()
	ToggleMute()
	SetVolume(value float64)
	Volume() float64
	Muted() bool
	Item() playlist.Item
	PlaybackState() controller.State
}

// Navigator advances or retreats the playlist and loads the resulting
// item into the Player, mirroring Next/Prev. It is a separate interface
// from Player because "what is the next item" is playlist state the
// controller package deliberately knows nothing about (§4.7's
// SupplierFactory/SubtitleSink boundary pattern); cmd/player supplies
// the concrete implementation wiring a *playlist.Playlist to a
// *controller.Controller.
type Navigator interface {
	Next() error
	Prev() error
}

// ServerConfig holds the configuration for the scripting Server.
type ServerConfig struct {
	Addr      string
	Cert      *certs.CertInfo
	Player    Player
	Navigator Navigator
}

// Server is the HTTP/3 scripting-surface server.
type Server struct {
	config ServerConfig
	h3Srv  *http3.Server
}

// NewServer creates a scripting Server with the given configuration.
func NewServer(config ServerConfig) (*Server, error) {
	if config.Cert == nil {
		return nil, errors.New("scripting: Cert is required")
	}
	if config.Addr == "" {
		return nil, errors.New("scripting: Addr is required")
	}
	if config.Player == nil {
		return nil, errors.New("scripting: Player is required")
	}
	return &Server{config: config}, nil
}

// Handler returns the http.Handler serving the scripting surface, usable
// directly in tests via httptest without standing up a QUIC listener.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.registerRoutes(mux)
	return corsMiddleware(mux)
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/scripting/next", s.handleNext)
	mux.HandleFunc("POST /api/scripting/prev", s.handlePrev)
	mux.HandleFunc("POST /api/scripting/play", s.handleExecute(s.config.Player.Play))
	mux.HandleFunc("POST /api/scripting/stop", s.handleExecute(s.config.Player.Stop))
	mux.HandleFunc("POST /api/scripting/pause", s.handleExecute(s.config.Player.Pause))
	mux.HandleFunc("POST /api/scripting/toggle-playing", s.handleExecute(s.config.Player.TogglePlaying))
	mux.HandleFunc("POST /api/scripting/mute", s.handleExecute(s.config.Player.ToggleMute))
	mux.HandleFunc("GET /api/scripting/volume", s.handleGetVolume)
	mux.HandleFunc("PUT /api/scripting/volume", s.handleSetVolume)
	mux.HandleFunc("GET /api/scripting/uri", s.handleGetURI)
	mux.HandleFunc("GET /api/scripting/state", s.handleGetState)
}

// Start launches the HTTP/3 scripting server and blocks until ctx is
// cancelled or a fatal error occurs.
func (s *Server) Start(ctx context.Context) error {
	s.h3Srv = &http3.Server{
		Addr:      s.config.Addr,
		Handler:   s.Handler(),
		TLSConfig: &tls.Config{Certificates: []tls.Certificate{s.config.Cert.TLSCert}},
		QUICConfig: &quic.Config{
			MaxIdleTimeout: 30 * time.Second,
		},
	}

	slog.Info("scripting surface listening", "addr", s.config.Addr)

	stop := context.AfterFunc(ctx, func() { s.h3Srv.Close() })
	defer stop()

	err := s.h3Srv.ListenAndServe()
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding scripting response", "error", err)
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// handleExecute adapts a zero-argument EXECUTE-style Player method (Play,
// Stop, Pause, TogglePlaying, Mute) into a handler returning the
// resulting playback state, matching how a BControllable property GET
// after an EXECUTE lets a script confirm the effect.
func (s *Server) handleExecute(fn func()) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		fn()
		writeJSON(w, http.StatusOK, stateResponse{State: s.config.Player.PlaybackState().String()})
	}
}

func (s *Server) handleNext(w http.ResponseWriter, _ *http.Request) {
	if s.config.Navigator == nil {
		writeError(w, http.StatusServiceUnavailable, "no playlist attached")
		return
	}
	if err := s.config.Navigator.Next(); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stateResponse{State: s.config.Player.PlaybackState().String()})
}

func (s *Server) handlePrev(w http.ResponseWriter, _ *http.Request) {
	if s.config.Navigator == nil {
		writeError(w, http.StatusServiceUnavailable, "no playlist attached")
		return
	}
	if err := s.config.Navigator.Prev(); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stateResponse{State: s.config.Player.PlaybackState().String()})
}

type stateResponse struct {
	State string `json:"state"`
}

type volumeResponse struct {
	Volume float64 `json:"volume"`
	Muted  bool    `json:"muted"`
}

func (s *Server) handleGetVolume(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, volumeResponse{Volume: s.config.Player.Volume(), Muted: s.config.Player.Muted()})
}

type setVolumeRequest struct {
	Value float32 `json:"value"`
}

// handleSetVolume implements Volume SET: a 32-bit float clamped to
// [0, 2] (§6). The Player itself clamps; this handler only rejects a
// malformed request body.
func (s *Server) handleSetVolume(w http.ResponseWriter, r *http.Request) {
	var req setVolumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.config.Player.SetVolume(float64(req.Value))
	writeJSON(w, http.StatusOK, volumeResponse{Volume: s.config.Player.Volume(), Muted: s.config.Player.Muted()})
}

type uriResponse struct {
	URI string `json:"uri"`
}

func (s *Server) handleGetURI(w http.ResponseWriter, _ *http.Request) {
	item := s.config.Player.Item()
	if item == nil {
		writeJSON(w, http.StatusOK, uriResponse{})
		return
	}
	writeJSON(w, http.StatusOK, uriResponse{URI: item.URI()})
}

func (s *Server) handleGetState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, stateResponse{State: s.config.Player.PlaybackState().String()})
}
