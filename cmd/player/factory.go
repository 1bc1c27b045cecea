package main

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/zsiec/playcore/errs"
	"github.com/zsiec/playcore/netsource"
	"github.com/zsiec/playcore/playlist"
	"github.com/zsiec/playcore/subtitle"
	"github.com/zsiec/playcore/track"
	"github.com/zsiec/playcore/track/mediafile"
)

// ContainerOpener demuxes a local file or a network byte stream into the
// mediafile.Container(s) (plus any bitmap cover art) a media-file track
// supplier aggregates. Codec and container parsing are explicit spec
// non-goals ("no new codec implementations; no new container parsers"),
// so this module ships no concrete implementation; a deployment wires
// one in (e.g. an ffmpeg/libav binding) via this seam. Left nil, the
// factory below still does every non-goal-adjacent thing this module
// owns — playlist/subtitle/netsource wiring — and fails closed with
// errs.NotSupported only at the point an implementation would be needed.
type ContainerOpener interface {
	OpenFile(path string) ([]mediafile.Container, []mediafile.Bitmap, error)
	OpenStream(stream netsource.Stream, uri string) ([]mediafile.Container, []mediafile.Bitmap, error)
}

// mediaFileFactory implements controller.SupplierFactory (§4.7): it
// resolves a playlist item to containers (local file or, via the net
// source registry, a streamed URL), binds sibling `.srt` extra media
// through subtitle.FileOpener, and hands the result to mediafile.New.
type mediaFileFactory struct {
	containers ContainerOpener
	netsources *netsource.Registry
	log        *slog.Logger
}

func newMediaFileFactory(containers ContainerOpener, netsources *netsource.Registry, log *slog.Logger) *mediaFileFactory {
	return &mediaFileFactory{containers: containers, netsources: netsources, log: log}
}

// OpenItem implements controller.SupplierFactory.
func (f *mediaFileFactory) OpenItem(item playlist.Item) (track.Supplier, error) {
	if f.containers == nil {
		return nil, errs.New(errs.NotSupported, "no container backend configured for %q", item.URI())
	}

	var (
		containers []mediafile.Container
		bitmaps    []mediafile.Bitmap
		err        error
	)

	switch v := item.(type) {
	case *playlist.FileItem:
		containers, bitmaps, err = f.containers.OpenFile(v.Path)
	case *playlist.URLItem:
		containers, bitmaps, err = f.openURL(v.URL)
	default:
		return nil, errs.New(errs.BadInput, "unsupported playlist item type for %q", item.URI())
	}
	if err != nil {
		return nil, errs.Wrap(err, "open %q", item.URI())
	}

	srtPaths := subtitlePaths(item)
	supplier, err := mediafile.New(containers, bitmaps, srtPaths, subtitle.FileOpener{}, f.log)
	if err != nil {
		closeContainers(containers)
		return nil, errs.Wrap(err, "build media-file supplier for %q", item.URI())
	}
	return supplier, nil
}

func (f *mediaFileFactory) openURL(rawURL string) ([]mediafile.Container, []mediafile.Bitmap, error) {
	stream, err := f.netsources.Open(context.Background(), rawURL)
	if err != nil {
		return nil, nil, err
	}
	defer stream.Close()
	return f.containers.OpenStream(stream, rawURL)
}

func closeContainers(containers []mediafile.Container) {
	for _, c := range containers {
		c.Close()
	}
}

// subtitlePaths filters an item's extra media down to `.srt` paths:
// mediafile.New's subtitle-opening loop errors on any other extension,
// so non-subtitle extra media (cover art, secondary audio) must never
// reach it.
func subtitlePaths(item playlist.Item) []string {
	var out []string
	for _, ref := range item.ExtraMedia() {
		if strings.EqualFold(extOf(ref), ".srt") {
			out = append(out, ref)
		}
	}
	return out
}

func extOf(ref string) string {
	if u, err := url.Parse(ref); err == nil && u.Path != "" {
		ref = u.Path
	}
	if i := strings.LastIndexByte(ref, '.'); i >= 0 {
		return ref[i:]
	}
	return ""
}
