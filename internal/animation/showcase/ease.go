// Package showcase holds the project showcase scene: camera, picking and the per-frame
// animation of every shape. It renders nothing; clients draw the frames it produces.
package showcase

import (
	"math"
	"time"
)

// FrameDuration is the reference frame length the per-frame constants are tuned for.
const FrameDuration = time.Second / 60

// Frames converts elapsed wall time into reference frames.
func Frames(elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	return float64(elapsed) / float64(FrameDuration)
}

// Ease moves current toward target, closing factor of the gap per reference frame.
// It depends only on its arguments, so replaying the same elapsed time gives the same value
// regardless of how it is split into calls.
func Ease(current, target, factor float64, elapsed time.Duration) float64 {
	frames := Frames(elapsed)
	if frames == 0 || factor <= 0 {
		return current
	}
	if factor >= 1 {
		return target
	}
	return target + (current-target)*math.Pow(1-factor, frames)
}
