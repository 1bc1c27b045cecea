package netsource

import (
	"context"
	"net/http"

	"github.com/zsiec/playcore/errs"
)

// HTTPOpener opens an http:// or https:// playlist network source as a
// plain GET byte stream. Range-based seeking, if the remote supports it,
// is the container decoder's concern once it has the response body and
// the original URL; this opener only establishes the initial connection.
type HTTPOpener struct {
	Client *http.Client
}

func (o HTTPOpener) client() *http.Client {
	if o.Client != nil {
		return o.Client
	}
	return http.DefaultClient
}

func (o HTTPOpener) Open(ctx context.Context, rawURL string) (Stream, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errs.Wrap(err, "build request for %q", rawURL)
	}

	resp, err := o.client().Do(req)
	if err != nil {
		return nil, errs.Wrap(err, "GET %q", rawURL)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, errs.New(errs.IOFailure, "GET %q: unexpected status %s", rawURL, resp.Status)
	}

	return resp.Body, nil
}
