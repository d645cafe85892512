package serialize

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// Option configures a conversion.
type Option func(*options)

type options struct {
	lenient bool
	freshID func() string
	logger  *log.Logger
}

func newOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = log.New(io.Discard)
	}
	return o
}

// Lenient makes [ToDocument] repair instead of reject: dangling ids are
// skipped, cycles and shared nodes are cut at their second visit, untyped
// nodes become Containers and a ROOT with zero or several children is itself
// treated as the page. A missing ROOT is still an error.
func Lenient() Option {
	return func(o *options) { o.lenient = true }
}

// WithFreshIDs makes [ToGraph] assign a new id to every node, e.g. when a
// page is duplicated. A nil gen uses random UUIDs.
func WithFreshIDs(gen func() string) Option {
	return func(o *options) {
		if gen == nil {
			gen = uuid.NewString
		}
		o.freshID = gen
	}
}

// WithLogger sets the logger for repairs and unknown types (debug level).
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}
