// Package netsource opens playlist network items (§3 Playlist item "Url",
// §6 scripting "URI" property) as byte streams for the media-file track
// supplier to hand to a container decoder, dispatching by URL scheme.
package netsource

import (
	"context"
	"io"
	"net/url"

	"github.com/zsiec/playcore/errs"
)

// Stream is the byte source a container decoder reads from once a
// network playlist item has been opened.
type Stream = io.ReadCloser

// Opener establishes a Stream for one URL scheme.
type Opener interface {
	Open(ctx context.Context, rawURL string) (Stream, error)
}

// Registry dispatches Open calls to the Opener registered for a URL's
// scheme. The zero value has no openers registered; use NewRegistry for
// the default srt/http/https set.
type Registry struct {
	openers map[string]Opener
}

// NewRegistry returns a Registry pre-populated with the teacher-grounded
// SRT and HTTP(S) openers.
func NewRegistry() *Registry {
	r := &Registry{openers: make(map[string]Opener)}
	r.Register("srt", SRTOpener{})
	r.Register("http", HTTPOpener{})
	r.Register("https", HTTPOpener{})
	return r
}

// Register installs or replaces the opener used for scheme.
func (r *Registry) Register(scheme string, o Opener) {
	if r.openers == nil {
		r.openers = make(map[string]Opener)
	}
	r.openers[scheme] = o
}

// Open parses rawURL's scheme and dispatches to the registered opener.
func (r *Registry) Open(ctx context.Context, rawURL string) (Stream, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errs.Wrap(err, "parse network source URL %q", rawURL)
	}

	o, ok := r.openers[u.Scheme]
	if !ok {
		return nil, errs.New(errs.NotSupported, "no opener registered for scheme %q", u.Scheme)
	}
	return o.Open(ctx, rawURL)
}
