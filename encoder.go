package reloc

import (
	"github.com/sirupsen/logrus"

	"github.com/rawbytedev/reloc/pkg/sink"
)

// Encoder builds archives into a reusable in-memory buffer.
// It is not safe for concurrent use.
type Encoder struct {
	Opts Options
	Log  logrus.FieldLogger
	buf  *sink.Buffer
}

// NewEncoder returns an encoder logging through the standard logrus logger.
func NewEncoder(opts Options) *Encoder {
	return &Encoder{Opts: opts, Log: logrus.StandardLogger()}
}

// Sink returns the encoder's buffer, creating it on first use.
func (e *Encoder) Sink() *sink.Buffer {
	if e.buf == nil {
		e.buf = e.Opts.NewBuffer()
	}
	return e.buf
}

// Reset discards the archive built so far.
func (e *Encoder) Reset() {
	if e.buf != nil {
		e.buf.Reset()
	}
}

// Encode archives v as the root of a fresh archive. The returned slice
// aliases the encoder's buffer until the next Encode or Reset.
func Encode[T, A, R any](e *Encoder, ad Adapter[T, A, R], v *T) ([]byte, error) {
	e.Reset()
	s := e.Sink()
	pos, err := Serialize(s, ad, v)
	if err != nil {
		if e.Log != nil {
			e.Log.WithError(err).WithField("written", s.Pos()).Debug("archive build failed")
		}
		return nil, err
	}
	out := s.Bytes()
	if e.Log != nil {
		e.Log.WithFields(logrus.Fields{
			"root": pos,
			"size": len(out),
		}).Debug("archive built")
	}
	return out, nil
}
