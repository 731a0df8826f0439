package mapview

import "time"

// Animator runs an animated zoom by calling step with intermediate zoom
// levels. The final call must be step(to).
//
// Each step applies the zoom immediately, so stopping an animation is simply
// a matter of no longer calling step.
type Animator interface {
	AnimateZoom(from, to float64, duration time.Duration, step func(zoom float64))
}

// StepAnimator interpolates linearly in a fixed number of synchronous steps.
// It suits headless hosts that have no frame loop.
type StepAnimator struct {
	Steps int
}

// AnimateZoom implements Animator.
func (a StepAnimator) AnimateZoom(from, to float64, duration time.Duration, step func(zoom float64)) {
	n := a.Steps
	if n < 1 {
		n = 1
	}
	for i := 1; i < n; i++ {
		step(from + (to-from)*float64(i)/float64(n))
	}
	step(to)
}
