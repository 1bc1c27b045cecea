package netsource

import (
	"context"
	"fmt"
	"net/url"
	"time"

	srtgo "github.com/zsiec/srtgo"

	"github.com/zsiec/playcore/errs"
)

// srtLatencyNs mirrors the teacher's ingest-side SRT latency setting
// (120 ms); a playback-side caller wants the same jitter buffer depth a
// live ingest pull uses.
const srtLatencyNs = 120_000_000

const srtDialTimeout = 10 * time.Second

// SRTOpener dials a remote SRT listener as a playlist network source
// (`srt://host:port?streamid=...`), grounded on the teacher's
// ingest/srt/caller.go Caller.Pull dial-with-timeout pattern.
type SRTOpener struct {
	DialTimeout time.Duration
}

func (o SRTOpener) timeout() time.Duration {
	if o.DialTimeout > 0 {
		return o.DialTimeout
	}
	return srtDialTimeout
}

// Open dials rawURL and returns the connection as a byte stream. The
// stream ID, if present as a query parameter, is forwarded to the SRT
// handshake so the remote can route the pull.
func (o SRTOpener) Open(ctx context.Context, rawURL string) (Stream, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errs.Wrap(err, "parse SRT source URL %q", rawURL)
	}

	cfg := srtgo.DefaultConfig()
	cfg.Latency = srtLatencyNs
	if streamID := u.Query().Get("streamid"); streamID != "" {
		cfg.StreamID = streamID
	}

	type dialResult struct {
		conn *srtgo.Conn
		err  error
	}
	ch := make(chan dialResult, 1)
	go func() {
		conn, err := srtgo.Dial(u.Host, cfg)
		ch <- dialResult{conn, err}
	}()

	timer := time.NewTimer(o.timeout())
	defer timer.Stop()

	select {
	case res := <-ch:
		if res.err != nil {
			return nil, errs.Wrap(res.err, "SRT dial to %q failed", u.Host)
		}
		return res.conn, nil
	case <-timer.C:
		go func() {
			if res := <-ch; res.conn != nil {
				res.conn.Close()
			}
		}()
		return nil, errs.New(errs.Timeout, "SRT dial to %q timed out after %s", u.Host, o.timeout())
	case <-ctx.Done():
		go func() {
			if res := <-ch; res.conn != nil {
				res.conn.Close()
			}
		}()
		return nil, fmt.Errorf("SRT dial to %q: %w", u.Host, ctx.Err())
	}
}
