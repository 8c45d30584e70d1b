package reloc

import (
	"github.com/rawbytedev/reloc/pkg/sink"
)

// Options controls how archives are built and read.
type Options struct {
	// UnsafeStrings lets string views alias the archive buffer without
	// copying; the caller must keep the buffer alive and unmodified.
	UnsafeStrings bool `yaml:"unsafe_strings"`
	// CheckUnique makes the map adapter reject duplicate keys instead of
	// trusting the caller.
	CheckUnique bool `yaml:"check_unique"`
	// ScratchSize is the scratch block reserved by sinks built from these options.
	ScratchSize int `yaml:"scratch_size"`
	// ScratchFallback serves oversized scratch requests from the heap.
	ScratchFallback bool `yaml:"scratch_fallback"`
	// MaxSize caps the archive size; zero means sink.MaxArchiveSize.
	MaxSize int `yaml:"max_size"`
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		ScratchSize:     sink.DefaultScratchSize,
		ScratchFallback: true,
	}
}

// SinkOptions translates o into sink options.
func (o Options) SinkOptions() []sink.Option {
	opts := []sink.Option{sink.WithScratchFallback(o.ScratchFallback)}
	if o.ScratchSize > 0 {
		opts = append(opts, sink.WithScratchSize(o.ScratchSize))
	}
	if o.MaxSize > 0 {
		opts = append(opts, sink.WithLimit(o.MaxSize))
	}
	return opts
}

// NewBuffer returns an in-memory sink configured by o.
func (o Options) NewBuffer() *sink.Buffer {
	return sink.NewBuffer(o.SinkOptions()...)
}
