package backend

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"n8n-restore/src/errdefs"
)

// stallReader guards a fetch stream against a remote that accepts the
// request and then stops sending. Every chunk rearms the timer; when it
// fires the request context is canceled, which unblocks the pending Read
// inside the HTTP transport.
type stallReader struct {
	rc      io.ReadCloser
	cancel  context.CancelFunc
	window  time.Duration
	timer   *time.Timer
	stalled atomic.Bool
}

// GuardStall wraps a fetch body so a stream that makes no progress for
// window fails with ErrTimeout instead of blocking forever. cancel must
// cancel the context the request was issued with; Close releases it.
func GuardStall(rc io.ReadCloser, cancel context.CancelFunc, window time.Duration) io.ReadCloser {
	s := &stallReader{rc: rc, cancel: cancel, window: window}
	s.timer = time.AfterFunc(window, func() {
		s.stalled.Store(true)
		cancel()
	})
	return s
}

func (s *stallReader) Read(b []byte) (int, error) {
	n, err := s.rc.Read(b)
	if err != nil && err != io.EOF && s.stalled.Load() {
		return n, fmt.Errorf("stream stalled for %s: %w", s.window, errdefs.ErrTimeout)
	}
	if n > 0 {
		s.timer.Reset(s.window)
	}
	return n, err
}

func (s *stallReader) Close() error {
	s.timer.Stop()
	s.cancel()
	return s.rc.Close()
}
