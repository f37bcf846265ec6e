package viewer

import (
	"context"
	"sync"
	"time"
)

// Scheduler runs callbacks on the next frame.
type Scheduler interface {
	RequestFrame(fn func())
}

// ManualScheduler queues frame callbacks until its host calls Flush. Hosts
// with their own frame loop (an ebiten Update, a test) drive it directly.
type ManualScheduler struct {
	mu    sync.Mutex
	queue []func()
}

func (s *ManualScheduler) RequestFrame(fn func()) {
	s.mu.Lock()
	s.queue = append(s.queue, fn)
	s.mu.Unlock()
}

// Flush runs one frame: every callback queued before the call. Callbacks
// queued while flushing wait for the next frame. It returns how many ran.
func (s *ManualScheduler) Flush() int {
	s.mu.Lock()
	queue := s.queue
	s.queue = nil
	s.mu.Unlock()

	for _, fn := range queue {
		fn()
	}
	return len(queue)
}

// Pending returns the number of queued callbacks.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// DefaultFPS is the frame rate of a FrameLoop created with fps <= 0.
const DefaultFPS = 60

// FrameLoop flushes its queue at a fixed rate until stopped.
type FrameLoop struct {
	ManualScheduler
	interval time.Duration
}

// NewFrameLoop returns a loop ticking fps times per second.
func NewFrameLoop(fps int) *FrameLoop {
	if fps <= 0 {
		fps = DefaultFPS
	}
	return &FrameLoop{interval: time.Second / time.Duration(fps)}
}

// Interval returns the frame period.
func (l *FrameLoop) Interval() time.Duration {
	return l.interval
}

// Run blocks, running one frame per tick, until ctx is done.
func (l *FrameLoop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			l.Flush()
		}
	}
}
