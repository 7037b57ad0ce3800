package image //nolint:revive // it's okay for an internal package to use this name

import "time"

// Option to tune dashboard snapshots.
type Option func(*options)

type options struct {
	height      int64
	width       int64
	settle      time.Duration
	timeout     time.Duration
	waitVisible string
}

const (
	defaultHeight  int64 = 1080
	defaultWidth   int64 = 1920
	defaultSettle        = time.Second
	defaultTimeout       = 30 * time.Second
)

func optionsWithDefaults(opts []Option) options {
	o := options{
		height:  defaultHeight,
		width:   defaultWidth,
		settle:  defaultSettle,
		timeout: defaultTimeout,
	}

	for _, apply := range opts {
		apply(&o)
	}

	return o
}

// WithViewport sets the size of the browser viewport, in pixels.
//
// Non-positive dimensions keep the default 1920x1080.
func WithViewport(width, height int64) Option {
	return func(o *options) {
		if width > 0 {
			o.width = width
		}

		if height > 0 {
			o.height = height
		}
	}
}

// WithSettle sets the time left to the chart animations to complete before the capture.
//
// Defaults to 1s.
func WithSettle(settle time.Duration) Option {
	return func(o *options) {
		if settle <= 0 {
			return
		}

		o.settle = settle
	}
}

// WithTimeout bounds the whole capture.
//
// Defaults to 30s.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		if timeout <= 0 {
			return
		}

		o.timeout = timeout
	}
}

// WithWaitVisible waits for an element matching a CSS selector before capturing the page,
// e.g. the canvas of a chart.
func WithWaitVisible(selector string) Option {
	return func(o *options) {
		o.waitVisible = selector
	}
}
