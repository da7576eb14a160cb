package showcase

import (
	"context"
	"time"
)

// Run advances the scene every interval and hands each frame to emit, until ctx is done
// or emit fails. The elapsed time of each step is measured, not assumed.
func (s *Scene) Run(ctx context.Context, interval time.Duration, emit func(Frame) error) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			frame := s.Advance(now.Sub(last))
			last = now
			if err := emit(frame); err != nil {
				return err
			}
		}
	}
}
