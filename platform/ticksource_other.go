//go:build !linux

package platform

import "time"

// portableTickSource wraps time.Ticker, the same fallback posture the
// teacher takes on darwin/windows build variants that lack epoll-style
// readiness polling for a timer fd.
type portableTickSource struct {
	ticker *time.Ticker
}

// NewTickSource returns a TickSource backed by time.Ticker. Close stops
// the ticker; the Ticks channel is not closed.
func NewTickSource(interval time.Duration) (TickSource, error) {
	return &portableTickSource{ticker: time.NewTicker(interval)}, nil
}

func (s *portableTickSource) Ticks() <-chan time.Time {
	return s.ticker.C
}

func (s *portableTickSource) Close() error {
	s.ticker.Stop()
	return nil
}
