// Package hero computes the landing section animations: a looping typewriter over role titles
// and stat counters that count up once. Every value is a pure function of elapsed time.
package hero

import (
	"context"
	"math"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
)

// Typewriter timing.
const (
	TypeDelay   = 100 * time.Millisecond
	HoldDelay   = 2000 * time.Millisecond
	DeleteDelay = 50 * time.Millisecond
)

// Counter timing.
const (
	CounterStart    = 2000 * time.Millisecond
	CounterDuration = 2000 * time.Millisecond
	CounterTick     = 16 * time.Millisecond
)

// DefaultTexts are the rotating role titles.
var DefaultTexts = []string{
	"AI/ML Research Engineer",
	"Full Stack Developer",
	"A Curious Problem Solver!",
}

// Counter is one animated statistic.
type Counter struct {
	Label    string        `json:"label"`
	Target   float64       `json:"target"`
	Suffix   string        `json:"suffix"`
	Duration time.Duration `json:"-"`
}

// DefaultCounters are the landing section statistics.
var DefaultCounters = []Counter{
	{Label: "Harvard HPAIR Top", Target: 0.0012, Suffix: "%", Duration: CounterDuration},
	{Label: "Concurrent Users", Target: 500, Suffix: "+", Duration: CounterDuration},
	{Label: "Languages", Target: 5, Suffix: "+", Duration: CounterDuration},
	{Label: "Olympiad Winner", Target: 20, Suffix: "X +", Duration: CounterDuration},
}

// Value returns the counter value after running for elapsed. It advances in CounterTick steps
// and lands exactly on Target.
func (c Counter) Value(elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	if c.Duration <= 0 {
		return c.Target
	}
	ticks := elapsed / CounterTick
	if ticks*CounterTick >= c.Duration {
		return c.Target
	}
	step := c.Target / (float64(c.Duration) / float64(CounterTick))
	return math.Min(float64(ticks)*step, c.Target)
}

// Format renders v the way the counter displays it: four decimals for fractional targets,
// otherwise a floored integer with thousands separators.
func (c Counter) Format(v float64) string {
	if c.Target < 1 {
		return strconv.FormatFloat(v, 'f', 4, 64) + c.Suffix
	}
	return humanize.Comma(int64(math.Floor(v))) + c.Suffix
}

// TypeFrame is the typewriter state at an instant.
type TypeFrame struct {
	Index    int    `json:"index"`
	Text     string `json:"text"`
	Deleting bool   `json:"deleting"`
}

// CounterFrame is a counter state at an instant.
type CounterFrame struct {
	Label   string  `json:"label"`
	Value   float64 `json:"value"`
	Display string  `json:"display"`
	Done    bool    `json:"done"`
}

// Frame is the whole hero state at an instant.
type Frame struct {
	ElapsedMs  int64          `json:"elapsedMs"`
	Typewriter TypeFrame      `json:"typewriter"`
	Counters   []CounterFrame `json:"counters"`
}

// Hero bundles the animation content.
type Hero struct {
	Texts    []string
	Counters []Counter
}

// Default returns the landing section content.
func Default() Hero {
	return Hero{
		Texts:    append([]string(nil), DefaultTexts...),
		Counters: append([]Counter(nil), DefaultCounters...),
	}
}

// cycleLength is how long one text takes to type, hold and delete.
func cycleLength(n int) time.Duration {
	return time.Duration(n)*TypeDelay + HoldDelay + time.Duration(n)*DeleteDelay
}

// TypewriterAt returns the typewriter state after elapsed. The texts loop forever.
func (h Hero) TypewriterAt(elapsed time.Duration) TypeFrame {
	if len(h.Texts) == 0 {
		return TypeFrame{}
	}

	var total time.Duration
	for _, t := range h.Texts {
		total += cycleLength(utf8.RuneCountInString(t))
	}
	if elapsed < 0 {
		elapsed = 0
	}
	e := elapsed % total

	for i, text := range h.Texts {
		runes := []rune(text)
		n := len(runes)
		cycle := cycleLength(n)
		if e >= cycle {
			e -= cycle
			continue
		}

		typing := time.Duration(n) * TypeDelay
		switch {
		case e < typing:
			return TypeFrame{Index: i, Text: string(runes[:int(e/TypeDelay)])}
		case e < typing+HoldDelay:
			return TypeFrame{Index: i, Text: text}
		default:
			removed := int((e - typing - HoldDelay) / DeleteDelay)
			return TypeFrame{Index: i, Text: string(runes[:n-removed]), Deleting: true}
		}
	}
	return TypeFrame{}
}

// CountersAt returns every counter after elapsed since the section appeared. Counters hold at
// zero until CounterStart.
func (h Hero) CountersAt(elapsed time.Duration) []CounterFrame {
	running := elapsed - CounterStart
	out := make([]CounterFrame, len(h.Counters))
	for i, c := range h.Counters {
		v := c.Value(running)
		out[i] = CounterFrame{
			Label:   c.Label,
			Value:   v,
			Display: c.Format(v),
			Done:    v == c.Target,
		}
	}
	return out
}

// At returns the hero frame after elapsed.
func (h Hero) At(elapsed time.Duration) Frame {
	return Frame{
		ElapsedMs:  elapsed.Milliseconds(),
		Typewriter: h.TypewriterAt(elapsed),
		Counters:   h.CountersAt(elapsed),
	}
}

// Stream emits a frame every interval until ctx is done or emit fails.
func (h Hero) Stream(ctx context.Context, interval time.Duration, emit func(Frame) error) error {
	start := time.Now()
	if err := emit(h.At(0)); err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			if err := emit(h.At(now.Sub(start))); err != nil {
				return err
			}
		}
	}
}
