// Package manifest defines the archive the reloc tool works with: a string
// map of entries plus a flag bit vector, stored in one composite record.
//
// Record: {entries: map record @0, flags: bit-vector record @12, order u8 @24},
// padded to 28 bytes aligned to 4.
package manifest

import (
	"fmt"

	"github.com/rawbytedev/reloc"
	"github.com/rawbytedev/reloc/pkg/asbitvec"
	"github.com/rawbytedev/reloc/pkg/asmap"
	"github.com/rawbytedev/reloc/pkg/bitvec"
	"github.com/rawbytedev/reloc/pkg/codec"
	"github.com/rawbytedev/reloc/pkg/sink"
)

// Manifest is the owned form.
type Manifest struct {
	Entries []asmap.Pair[string, string]
	Flags   bitvec.BitVec[uint64]
}

// Get returns the value of the first entry holding key.
func (m *Manifest) Get(key string) (string, bool) {
	for _, p := range m.Entries {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

var (
	entriesOff, flagsOff, orderOff int
	recordShape                    reloc.Shape
)

func init() {
	var l reloc.Layout
	entriesOff = l.Field(asmap.Shape())
	flagsOff = l.Field(asbitvec.Shape())
	orderOff = l.Field(codec.Uint8{}.Layout())
	recordShape = l.Shape()
}

// Shape is the shape of the manifest record.
func Shape() reloc.Shape { return recordShape }

// Resolver carries the resolvers of both fields.
type Resolver struct {
	Entries asmap.Resolver
	Flags   asbitvec.Resolver
}

// Adapter archives a Manifest.
type Adapter struct {
	Entries asmap.Adapter[string, string]
}

var _ reloc.Adapter[Manifest, Archived, Resolver] = Adapter{}

// NewAdapter returns an adapter configured by opts.
func NewAdapter(opts reloc.Options) Adapter {
	str := codec.String{Unsafe: opts.UnsafeStrings}
	m := asmap.New[string, string](str, str)
	m.CheckUnique = opts.CheckUnique
	return Adapter{Entries: m}
}

func (Adapter) Shape(*Manifest) reloc.Shape { return recordShape }

func (ad Adapter) Serialize(v *Manifest, s sink.Sink) (Resolver, error) {
	er, err := ad.Entries.Serialize(&v.Entries, s)
	if err != nil {
		return Resolver{}, err
	}
	fr, err := flags(v.Flags.Order()).Serialize(&v.Flags, s)
	if err != nil {
		return Resolver{}, err
	}
	return Resolver{Entries: er, Flags: fr}, nil
}

func (ad Adapter) Resolve(v *Manifest, pos int, r Resolver, out []byte) {
	ad.Entries.Resolve(&v.Entries, pos+entriesOff, r.Entries, out[entriesOff:flagsOff])
	flags(v.Flags.Order()).Resolve(&v.Flags, pos+flagsOff, r.Flags, out[flagsOff:orderOff])
	order := uint8(v.Flags.Order())
	codec.Uint8{}.Resolve(&order, pos+orderOff, codec.Resolver{}, out[orderOff:orderOff+1])
}

func (ad Adapter) Access(buf []byte, pos int) (Archived, error) {
	if err := reloc.CheckRange(buf, pos, recordShape.Size); err != nil {
		return Archived{}, err
	}
	raw, err := codec.Uint8{}.Access(buf, pos+orderOff)
	if err != nil {
		return Archived{}, err
	}
	order := bitvec.Order(raw)
	if order != bitvec.Lsb0 && order != bitvec.Msb0 {
		return Archived{}, fmt.Errorf("%w: bit order %d", reloc.ErrElementFailure, raw)
	}
	entries, err := ad.Entries.Access(buf, pos+entriesOff)
	if err != nil {
		return Archived{}, err
	}
	fl, err := flags(order).Access(buf, pos+flagsOff)
	if err != nil {
		return Archived{}, err
	}
	return Archived{Entries: entries, Flags: fl, Order: order}, nil
}

func (ad Adapter) Deserialize(a Archived, ctx *reloc.Context) (Manifest, error) {
	entries, err := ad.Entries.Deserialize(a.Entries, ctx)
	if err != nil {
		return Manifest{}, err
	}
	fl, err := flags(a.Order).Deserialize(a.Flags, ctx)
	if err != nil {
		return Manifest{}, err
	}
	return Manifest{Entries: entries, Flags: fl}, nil
}

func flags(o bitvec.Order) asbitvec.Adapter[uint64] {
	return asbitvec.Adapter[uint64]{Order: o}
}

// Archived is a zero-copy view of a manifest.
type Archived struct {
	Entries asmap.Archived[string, string]
	Flags   asbitvec.Archived[uint64]
	Order   bitvec.Order
}
