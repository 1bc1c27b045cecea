package scripting

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/zsiec/playcore/certs"
	"github.com/zsiec/playcore/controller"
	"github.com/zsiec/playcore/playlist"
)

type fakePlayer struct {
	played  int
	stopped int
	paused  int
	toggled int
	muted   bool
	volume  float64
	item    playlist.Item
	state   controller.State
}

func (p *fakePlayer) Play()           { p.played++; p.state = controller.StatePlaying }
func (p *fakePlayer) Stop()           { p.stopped++; p.state = controller.StateStopped }
func (p *fakePlayer) Pause()          { p.paused++; p.state = controller.StatePaused }
func (p *fakePlayer) TogglePlaying()  { p.toggled++ }
func (p *fakePlayer) ToggleMute()     { p.muted = !p.muted }
func (p *fakePlayer) SetVolume(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 2 {
		v = 2
	}
	p.volume = v
}
func (p *fakePlayer) Volume() float64              { return p.volume }
func (p *fakePlayer) Muted() bool                  { return p.muted }
func (p *fakePlayer) Item() playlist.Item          { return p.item }
func (p *fakePlayer) PlaybackState() controller.State { return p.state }

type fakeNavigator struct {
	nextErr error
	prevErr error
	nextN   int
	prevN   int
}

func (n *fakeNavigator) Next() error { n.nextN++; return n.nextErr }
func (n *fakeNavigator) Prev() error { n.prevN++; return n.prevErr }

func newTestServer(t *testing.T, player Player, nav Navigator) *Server {
	t.Helper()
	cert, err := certs.Generate(24 * time.Hour)
	if err != nil {
		t.Fatalf("certs.Generate: %v", err)
	}
	srv, err := NewServer(ServerConfig{
		Addr:      ":0",
		Cert:      cert,
		Player:    player,
		Navigator: nav,
	})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return srv
}

func TestHandleExecuteEndpoints(t *testing.T) {
	t.Parallel()

	player := &fakePlayer{volume: 1}
	srv := newTestServer(t, player, nil)
	handler := srv.Handler()

	cases := []struct {
		path  string
		check func()
	}{
		{"/api/scripting/play", func() {
			if player.played != 1 {
				t.Fatalf("played = %d, want 1", player.played)
			}
		}},
		{"/api/scripting/pause", func() {
			if player.paused != 1 {
				t.Fatalf("paused = %d, want 1", player.paused)
			}
		}},
		{"/api/scripting/stop", func() {
			if player.stopped != 1 {
				t.Fatalf("stopped = %d, want 1", player.stopped)
			}
		}},
		{"/api/scripting/toggle-playing", func() {
			if player.toggled != 1 {
				t.Fatalf("toggled = %d, want 1", player.toggled)
			}
		}},
		{"/api/scripting/mute", func() {
			if !player.muted {
				t.Fatal("expected muted after toggle")
			}
		}},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPost, tc.path, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status = %d, want %d", tc.path, rec.Code, http.StatusOK)
		}
		tc.check()
	}
}

func TestHandleGetSetVolume(t *testing.T) {
	t.Parallel()

	player := &fakePlayer{volume: 1}
	srv := newTestServer(t, player, nil)
	handler := srv.Handler()

	req := httptest.NewRequest(http.MethodPut, "/api/scripting/volume", strings.NewReader(`{"value": 3.5}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp volumeResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Volume != 2 {
		t.Fatalf("volume = %v, want clamped to 2", resp.Volume)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/scripting/volume", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Volume != 2 {
		t.Fatalf("volume = %v, want 2", resp.Volume)
	}
}

func TestHandleSetVolumeBadBody(t *testing.T) {
	t.Parallel()

	player := &fakePlayer{volume: 1}
	srv := newTestServer(t, player, nil)
	handler := srv.Handler()

	req := httptest.NewRequest(http.MethodPut, "/api/scripting/volume", strings.NewReader(`not json`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestHandleGetURI(t *testing.T) {
	t.Parallel()

	player := &fakePlayer{item: playlist.NewFileItem("/media/movie.mp4")}
	srv := newTestServer(t, player, nil)
	handler := srv.Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/scripting/uri", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var resp uriResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.URI != "/media/movie.mp4" {
		t.Fatalf("uri = %q, want %q", resp.URI, "/media/movie.mp4")
	}
}

func TestHandleGetURIEmptyPlaylist(t *testing.T) {
	t.Parallel()

	player := &fakePlayer{}
	srv := newTestServer(t, player, nil)
	handler := srv.Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/scripting/uri", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var resp uriResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.URI != "" {
		t.Fatalf("uri = %q, want empty", resp.URI)
	}
}

func TestHandleNextPrevWithoutNavigator(t *testing.T) {
	t.Parallel()

	player := &fakePlayer{}
	srv := newTestServer(t, player, nil)
	handler := srv.Handler()

	for _, path := range []string{"/api/scripting/next", "/api/scripting/prev"} {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("%s: status = %d, want %d", path, rec.Code, http.StatusServiceUnavailable)
		}
	}
}

func TestHandleNextPrevDelegatesToNavigator(t *testing.T) {
	t.Parallel()

	player := &fakePlayer{}
	nav := &fakeNavigator{}
	srv := newTestServer(t, player, nav)
	handler := srv.Handler()

	for _, path := range []string{"/api/scripting/next", "/api/scripting/prev"} {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status = %d, want %d", path, rec.Code, http.StatusOK)
		}
	}
	if nav.nextN != 1 || nav.prevN != 1 {
		t.Fatalf("nextN=%d prevN=%d, want 1,1", nav.nextN, nav.prevN)
	}
}

func TestHandleNextFailsAtPlaylistBoundary(t *testing.T) {
	t.Parallel()

	player := &fakePlayer{}
	nav := &fakeNavigator{nextErr: errors.New("no next item")}
	srv := newTestServer(t, player, nav)
	handler := srv.Handler()

	req := httptest.NewRequest(http.MethodPost, "/api/scripting/next", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusConflict)
	}
}

func TestNewServerRequiresCertAddrPlayer(t *testing.T) {
	t.Parallel()

	if _, err := NewServer(ServerConfig{Addr: ":0", Player: &fakePlayer{}}); err == nil {
		t.Fatal("expected error without Cert")
	}
	cert, err := certs.Generate(time.Hour)
	if err != nil {
		t.Fatalf("certs.Generate: %v", err)
	}
	if _, err := NewServer(ServerConfig{Cert: cert, Player: &fakePlayer{}}); err == nil {
		t.Fatal("expected error without Addr")
	}
	if _, err := NewServer(ServerConfig{Cert: cert, Addr: ":0"}); err == nil {
		t.Fatal("expected error without Player")
	}
}
