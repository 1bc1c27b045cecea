// Command player is the playback-core entrypoint (§4.7, §6): it wires a
// playlist, the media-file track-supplier factory, the playback
// coordinator, and the HTTP/3 scripting surface together, then drives
// the audio and video proxy suppliers on their own real-time deadlines
// (§5 "Audio output thread" / "Video display thread"), the way
// cmd/prism/main.go wires ingest, pipeline, and distribution.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zsiec/playcore/certs"
	"github.com/zsiec/playcore/controller"
	"github.com/zsiec/playcore/controller/scripting"
	"github.com/zsiec/playcore/netsource"
	"github.com/zsiec/playcore/playlist"
)

var version = "dev"

func main() {
	level := slog.LevelInfo
	if os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	slog.Info("generating self-signed certificate")
	cert, err := certs.Generate(14 * 24 * time.Hour)
	if err != nil {
		slog.Error("failed to generate cert", "error", err)
		os.Exit(1)
	}
	slog.Info("certificate generated",
		"fingerprint", cert.FingerprintBase64(),
		"expires", cert.NotAfter.Format(time.RFC3339),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		cancel()
	}()

	scriptAddr := envOr("SCRIPT_ADDR", ":4545")
	autoplay := os.Getenv("AUTOPLAY") != "0"

	list := playlist.New(log)
	defer list.Close()

	if len(os.Args) > 1 {
		if err := list.AppendItems(os.Args[1:], playlist.AppendReplace, false); err != nil {
			slog.Error("failed to import playlist entries", "error", err)
		}
	}

	netsources := netsource.NewRegistry()
	// ContainerOpener is left nil: demuxing/decoding a real media file is
	// out of this module's scope (no new container parsers or codec
	// implementations), so OpenItem fails closed with errs.NotSupported
	// until a deployment wires a concrete binding in.
	factory := newMediaFileFactory(nil, netsources, log)

	sink := &logSubtitleSink{log: log}
	ctrl := controller.New(factory, sink, log)
	defer ctrl.Close()
	ctrl.SetAutoplaySetting(autoplay)

	nav := newPlaylistNavigator(list, ctrl)

	if !list.IsEmpty() {
		if item := list.ItemAt(0); item != nil {
			list.SetCurrentItemIndex(0, false)
			if err := ctrl.SetTo(item); err != nil {
				slog.Error("failed to load initial item", "uri", item.URI(), "error", err)
			}
		}
	}

	scriptSrv, err := scripting.NewServer(scripting.ServerConfig{
		Addr:      scriptAddr,
		Cert:      cert,
		Player:    ctrl,
		Navigator: nav,
	})
	if err != nil {
		slog.Error("failed to create scripting server", "error", err)
		os.Exit(1)
	}

	slog.Info("player starting",
		"version", version,
		"scripting", scriptAddr,
		"cert_hash", cert.FingerprintBase64(),
		"playlist_items", list.CountItems(),
		"autoplay", autoplay,
	)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return scriptSrv.Start(ctx)
	})

	g.Go(func() error {
		return runAudioOutput(ctx, ctrl, log)
	})

	g.Go(func() error {
		return runVideoOutput(ctx, ctrl, log)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("player error", "error", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// logSubtitleSink implements controller.SubtitleSink by logging the
// current cue, standing in for a real caption-rendering surface (out of
// scope here: no UI toolkit is part of this module's dependency stack).
type logSubtitleSink struct {
	log *slog.Logger
}

func (s *logSubtitleSink) SetSubtitle(text string, ok bool) {
	if !ok {
		return
	}
	s.log.Debug("subtitle", "text", text)
}
