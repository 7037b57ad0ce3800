package reactive

// Option to tune the reactive [Runtime].
type Option func(*options)

type options struct {
	queueSize int
}

const defaultQueueSize = 16

func optionsWithDefaults(opts []Option) options {
	o := options{
		queueSize: defaultQueueSize,
	}

	for _, apply := range opts {
		apply(&o)
	}

	return o
}

// WithQueueSize sets how many updates may wait for the event loop.
//
// Defaults to 16.
func WithQueueSize(size int) Option {
	return func(o *options) {
		if size < 0 {
			return
		}

		o.queueSize = size
	}
}
