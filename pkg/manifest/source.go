package manifest

import (
	"errors"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/rawbytedev/reloc/pkg/asmap"
	"github.com/rawbytedev/reloc/pkg/bitvec"
)

// Source is the YAML form of a manifest:
//
//	entries:
//	  - key: region
//	    value: eu-west-1
//	bits: "1011_1000"
//	order: lsb0
type Source struct {
	Entries []asmap.Pair[string, string] `yaml:"entries"`
	Bits    string                       `yaml:"bits,omitempty"`
	Order   string                       `yaml:"order,omitempty"`
}

// Manifest converts s to the owned form.
func (s *Source) Manifest() (Manifest, error) {
	order, err := bitvec.ParseOrder(s.Order)
	if err != nil {
		return Manifest{}, err
	}
	fl, err := bitvec.Parse[uint64](s.Bits, order)
	if err != nil {
		return Manifest{}, err
	}
	return Manifest{Entries: s.Entries, Flags: fl}, nil
}

// FromManifest returns the YAML form of m.
func FromManifest(m *Manifest) Source {
	return Source{
		Entries: m.Entries,
		Bits:    m.Flags.String(),
		Order:   m.Flags.Order().String(),
	}
}

// Load decodes a YAML source document. An empty document is an empty manifest.
func Load(r io.Reader) (Manifest, error) {
	var src Source
	if err := yaml.NewDecoder(r).Decode(&src); err != nil && !errors.Is(err, io.EOF) {
		return Manifest{}, err
	}
	return src.Manifest()
}

// Dump encodes m as a YAML source document.
func Dump(w io.Writer, m *Manifest) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	src := FromManifest(m)
	if err := enc.Encode(&src); err != nil {
		return err
	}
	return enc.Close()
}
