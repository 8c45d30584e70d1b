// Package asmap archives a slice of key/value pairs directly as an
// open-addressing hash map, without building an in-memory map first.
//
// Record: {buckets rel int32 @0, entries rel int32 @4, len uint32 @8},
// 12 bytes aligned to 4.
//
// The entry array holds len {key, value} records in input order. The bucket
// array holds BucketCount(len) uint32 words: 0 marks an empty bucket, i+1
// refers to entry i. A key's home bucket is its xxhash64 masked to the bucket
// count; collisions probe forward one bucket at a time.
package asmap

import (
	"errors"
	"fmt"
	"math"

	"github.com/rawbytedev/reloc"
	"github.com/rawbytedev/reloc/internal/common"
	"github.com/rawbytedev/reloc/pkg/codec"
	"github.com/rawbytedev/reloc/pkg/sink"
	"github.com/rawbytedev/reloc/pkg/wordarray"
)

// ErrDuplicateKey is reported when CheckUnique is set and two pairs share a key.
var ErrDuplicateKey = fmt.Errorf("%w: duplicate key", reloc.ErrElementFailure)

const (
	bucketsOff = 0
	entriesOff = reloc.RelPtrSize
	lenOff     = 2 * reloc.RelPtrSize
	bucketSize = 4
)

var recordShape = reloc.Shape{Size: lenOff + reloc.LenSize, Align: reloc.RelPtrSize}

// Shape is the shape of every archived map.
func Shape() reloc.Shape { return recordShape }

// BucketCount returns the number of buckets used for n entries: zero for an
// empty map, otherwise the smallest power of two above n that keeps the load
// factor at or under 7/8. Writers and readers must agree on it.
func BucketCount(n int) int {
	if n <= 0 {
		return 0
	}
	c := 1
	for c <= n || c*7/8 < n {
		c <<= 1
	}
	return c
}

// Pair is one key/value entry.
type Pair[K, V any] struct {
	Key   K `yaml:"key"`
	Value V `yaml:"value"`
}

// Resolver carries the positions of the bucket and entry arrays.
type Resolver struct {
	Buckets int
	Entries int
}

// Adapter archives []Pair[K, V] as a map.
//
// Keys are expected to be unique. With CheckUnique unset a duplicate is not
// detected and lookups return the first pair holding the key.
type Adapter[K, V any] struct {
	Keys        codec.Codec[K]
	Values      codec.Codec[V]
	CheckUnique bool
}

// New returns an adapter using the given key and value codecs.
func New[K, V any](keys codec.Codec[K], values codec.Codec[V]) Adapter[K, V] {
	return Adapter[K, V]{Keys: keys, Values: values}
}

type entryLayout struct {
	key, value int
	shape      reloc.Shape
}

func (ad Adapter[K, V]) entry() entryLayout {
	var l reloc.Layout
	k := l.Field(ad.Keys.Layout())
	v := l.Field(ad.Values.Layout())
	return entryLayout{key: k, value: v, shape: l.Shape()}
}

func elementErr(err error) error {
	if errors.Is(err, reloc.ErrSinkFailure) {
		return err
	}
	return reloc.ElementError(err)
}

func (Adapter[K, V]) Shape(*[]Pair[K, V]) reloc.Shape { return recordShape }

func (ad Adapter[K, V]) Serialize(v *[]Pair[K, V], s sink.Sink) (Resolver, error) {
	pairs := *v
	n := len(pairs)
	if uint64(n) > math.MaxUint32 {
		return Resolver{}, fmt.Errorf("%w: %d entries exceed archived length range", reloc.ErrElementFailure, n)
	}
	var r Resolver
	// resolvers: key payload pos, value payload pos, as u32 pairs
	err := sink.WithScratch(s, 8*n, func(rs []byte) error {
		for i := range pairs {
			kr, err := ad.Keys.Serialize(&pairs[i].Key, s)
			if err != nil {
				return elementErr(err)
			}
			vr, err := ad.Values.Serialize(&pairs[i].Value, s)
			if err != nil {
				return elementErr(err)
			}
			common.PutU32(rs[8*i:], uint32(kr.Pos))
			common.PutU32(rs[8*i+4:], uint32(vr.Pos))
		}
		pos, err := ad.writeEntries(pairs, rs, s)
		if err != nil {
			return err
		}
		r.Entries = pos
		pos, err = ad.writeBuckets(pairs, s)
		if err != nil {
			return err
		}
		r.Buckets = pos
		return nil
	})
	if err != nil {
		return Resolver{}, err
	}
	return r, nil
}

func (ad Adapter[K, V]) writeEntries(pairs []Pair[K, V], rs []byte, s sink.Sink) (int, error) {
	e := ad.entry()
	pos, err := s.Align(e.shape.Align)
	if err != nil {
		return 0, err
	}
	if len(pairs) == 0 {
		return pos, nil
	}
	ks, vs := ad.Keys.Layout().Size, ad.Values.Layout().Size
	err = sink.WithScratch(s, e.shape.Size, func(out []byte) error {
		for i := range pairs {
			clear(out)
			at := pos + i*e.shape.Size
			kr := codec.Resolver{Pos: int(common.ReadU32(rs[8*i:]))}
			vr := codec.Resolver{Pos: int(common.ReadU32(rs[8*i+4:]))}
			ad.Keys.Resolve(&pairs[i].Key, at+e.key, kr, out[e.key:e.key+ks])
			ad.Values.Resolve(&pairs[i].Value, at+e.value, vr, out[e.value:e.value+vs])
			if err := s.Write(out); err != nil {
				return err
			}
		}
		return nil
	})
	return pos, err
}

func (ad Adapter[K, V]) writeBuckets(pairs []Pair[K, V], s sink.Sink) (int, error) {
	c := BucketCount(len(pairs))
	var pos int
	err := sink.WithScratch(s, bucketSize*c, func(buckets []byte) error {
		var a, b []byte
		for i := range pairs {
			h := ad.Keys.Hash(&pairs[i].Key)
			at := int(h & uint64(c-1))
			for {
				slot := common.ReadU32(buckets[bucketSize*at:])
				if slot == 0 {
					common.PutU32(buckets[bucketSize*at:], uint32(i+1))
					break
				}
				if ad.CheckUnique {
					j := int(slot - 1)
					a = ad.Keys.AppendCanonical(a[:0], &pairs[i].Key)
					b = ad.Keys.AppendCanonical(b[:0], &pairs[j].Key)
					if string(a) == string(b) {
						return fmt.Errorf("%w: entries %d and %d", ErrDuplicateKey, j, i)
					}
				}
				at = (at + 1) & (c - 1)
			}
		}
		r, err := wordarray.SerializeEncoded(buckets, bucketSize, s)
		pos = r.Pos
		return err
	})
	return pos, err
}

func (Adapter[K, V]) Resolve(v *[]Pair[K, V], pos int, r Resolver, out []byte) {
	reloc.ResolveRelPtr(out[bucketsOff:], pos+bucketsOff, r.Buckets)
	reloc.ResolveRelPtr(out[entriesOff:], pos+entriesOff, r.Entries)
	reloc.PutLen(out[lenOff:], len(*v))
}

func (ad Adapter[K, V]) Access(buf []byte, pos int) (Archived[K, V], error) {
	if err := reloc.CheckRange(buf, pos, recordShape.Size); err != nil {
		return Archived[K, V]{}, err
	}
	bp, err := reloc.RelPtrTarget(buf, pos+bucketsOff)
	if err != nil {
		return Archived[K, V]{}, err
	}
	ep, err := reloc.RelPtrTarget(buf, pos+entriesOff)
	if err != nil {
		return Archived[K, V]{}, err
	}
	n, err := reloc.ReadLen(buf, pos+lenOff)
	if err != nil {
		return Archived[K, V]{}, err
	}
	c := BucketCount(n)
	if err := reloc.CheckRange(buf, bp, bucketSize*c); err != nil {
		return Archived[K, V]{}, err
	}
	e := ad.entry()
	if err := reloc.CheckRange(buf, ep, n*e.shape.Size); err != nil {
		return Archived[K, V]{}, err
	}
	return Archived[K, V]{
		ad:      ad,
		layout:  e,
		buf:     buf,
		buckets: buf[bp : bp+bucketSize*c],
		entries: ep,
		n:       n,
	}, nil
}

// Deserialize rebuilds the pairs in stored order, which is input order.
func (ad Adapter[K, V]) Deserialize(a Archived[K, V], ctx *reloc.Context) ([]Pair[K, V], error) {
	if a.n == 0 {
		return nil, nil
	}
	out := make([]Pair[K, V], 0, a.n)
	for i := range a.n {
		ak, av, err := a.Entry(i)
		if err != nil {
			return nil, ctx.Fail(err)
		}
		k, err := ad.Keys.Deserialize(ak, ctx)
		if err != nil {
			return nil, ctx.Fail(err)
		}
		v, err := ad.Values.Deserialize(av, ctx)
		if err != nil {
			return nil, ctx.Fail(err)
		}
		out = append(out, Pair[K, V]{Key: k, Value: v})
	}
	return out, nil
}
