package asmap

import (
	"fmt"
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rawbytedev/reloc"
	"github.com/rawbytedev/reloc/internal/common"
	"github.com/rawbytedev/reloc/pkg/codec"
	"github.com/rawbytedev/reloc/pkg/sink"
)

func build[K, V any](t testing.TB, ad Adapter[K, V], pairs []Pair[K, V]) ([]byte, Archived[K, V]) {
	t.Helper()
	b := reloc.DefaultOptions().NewBuffer()
	pos, err := reloc.Serialize(b, reloc.Adapter[[]Pair[K, V], Archived[K, V], Resolver](ad), &pairs)
	require.NoError(t, err)
	require.Equal(t, 0, b.Live())
	buf := b.Bytes()
	require.Equal(t, len(buf)-Shape().Size, pos)
	a, err := ad.Access(buf, pos)
	require.NoError(t, err)
	return buf, a
}

func TestBucketCount(t *testing.T) {
	for n, want := range map[int]int{0: 0, 1: 2, 2: 4, 3: 4, 4: 8, 7: 8, 8: 16, 14: 16, 15: 32, 100: 128, 112: 128, 113: 256} {
		assert.Equal(t, want, BucketCount(n), "n=%d", n)
	}
	for n := 1; n < 2000; n++ {
		c := BucketCount(n)
		require.Greater(t, c, n)
		require.GreaterOrEqual(t, c*7/8, n)
		require.Zero(t, c&(c-1))
	}
}

func TestExample(t *testing.T) {
	ad := New[uint32, string](codec.Uint32{}, codec.String{})
	pairs := []Pair[uint32, string]{{1, "a"}, {2, "b"}}
	buf, m := build(t, ad, pairs)

	require.Equal(t, 2, m.Len())
	v, ok := m.Get(1)
	require.True(t, ok)
	assert.Equal(t, "a", v)
	v, ok = m.Get(2)
	require.True(t, ok)
	assert.Equal(t, "b", v)
	_, ok = m.Get(3)
	assert.False(t, ok)
	assert.False(t, m.Contains(0))

	got, err := reloc.Decode(reloc.Adapter[[]Pair[uint32, string], Archived[uint32, string], Resolver](ad), buf)
	require.NoError(t, err)
	assert.Equal(t, pairs, got)
}

func TestEmptyMap(t *testing.T) {
	ad := New[uint32, string](codec.Uint32{}, codec.String{})
	buf, m := build(t, ad, nil)
	assert.Len(t, buf, 12)
	assert.Equal(t, 0, m.Len())
	_, ok := m.Get(7)
	assert.False(t, ok)
	for range m.All() {
		t.Fatal("empty map yielded an entry")
	}
	var ctx reloc.Context
	got, err := ad.Deserialize(m, &ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStringKeysStoredOrder(t *testing.T) {
	ad := New[string, uint64](codec.String{}, codec.Uint64{})
	var pairs []Pair[string, uint64]
	for i := range 500 {
		pairs = append(pairs, Pair[string, uint64]{Key: fmt.Sprintf("key-%d", i), Value: uint64(i * i)})
	}
	_, m := build(t, ad, pairs)
	for i, p := range pairs {
		idx, ok := m.Index(p.Key)
		require.True(t, ok, p.Key)
		require.Equal(t, i, idx)
		v, ok := m.Get(p.Key)
		require.True(t, ok)
		require.Equal(t, p.Value, v)
		k, v, err := m.Entry(i)
		require.NoError(t, err)
		require.Equal(t, p.Key, k)
		require.Equal(t, p.Value, v)
	}
	for i := 500; i < 1000; i++ {
		require.False(t, m.Contains(fmt.Sprintf("key-%d", i)))
	}
	i := 0
	for k, v := range m.All() {
		require.Equal(t, pairs[i].Key, k)
		require.Equal(t, pairs[i].Value, v)
		i++
	}
	require.Equal(t, len(pairs), i)

	_, _, err := m.Entry(500)
	require.ErrorIs(t, err, reloc.ErrOutOfBounds)
}

func TestRoundTripProperty(t *testing.T) {
	ad := New[int64, string](codec.Int64{}, codec.String{})
	rt := reloc.Adapter[[]Pair[int64, string], Archived[int64, string], Resolver](ad)
	check := func(src map[int64]string) bool {
		var pairs []Pair[int64, string]
		for k, v := range src {
			pairs = append(pairs, Pair[int64, string]{k, v})
		}
		buf, m := build(t, ad, pairs)
		for k, v := range src {
			got, ok := m.Get(k)
			if !ok || got != v {
				return false
			}
		}
		out, err := reloc.Decode(rt, buf)
		require.NoError(t, err)
		again, _ := build(t, ad, out)
		return assert.ObjectsAreEqual(pairs, out) && string(buf) == string(again)
	}
	require.NoError(t, quick.Check(check, nil))
}

func TestDuplicateKeys(t *testing.T) {
	pairs := []Pair[uint32, string]{{5, "first"}, {6, "x"}, {5, "second"}}

	ad := New[uint32, string](codec.Uint32{}, codec.String{})
	_, m := build(t, ad, pairs)
	v, ok := m.Get(5)
	require.True(t, ok)
	assert.Equal(t, "first", v)
	assert.Equal(t, 3, m.Len())

	ad.CheckUnique = true
	checked := reloc.Adapter[[]Pair[uint32, string], Archived[uint32, string], Resolver](ad)
	b := sink.NewBuffer()
	_, err := reloc.Serialize(b, checked, &pairs)
	require.ErrorIs(t, err, ErrDuplicateKey)
	require.ErrorIs(t, err, reloc.ErrElementFailure)
	assert.Equal(t, 0, b.Live())

	unique := []Pair[uint32, string]{{5, "a"}, {6, "b"}}
	_, err = reloc.Serialize(sink.NewBuffer(), checked, &unique)
	require.NoError(t, err)
}

func TestRelocation(t *testing.T) {
	ad := New[string, string](codec.String{}, codec.String{Unsafe: true})
	pairs := []Pair[string, string]{{"region", "eu"}, {"tier", "gold"}}
	buf, _ := build(t, ad, pairs)

	moved := append([]byte("some unrelated prefix"), buf...)
	m, err := reloc.AccessRoot(reloc.Adapter[[]Pair[string, string], Archived[string, string], Resolver](ad), moved)
	require.NoError(t, err)
	v, ok := m.Get("tier")
	require.True(t, ok)
	assert.Equal(t, "gold", v)
}

func TestCorruptArchive(t *testing.T) {
	ad := New[uint32, uint32](codec.Uint32{}, codec.Uint32{})
	pairs := []Pair[uint32, uint32]{{1, 10}, {2, 20}, {3, 30}}
	buf, m := build(t, ad, pairs)
	pos := len(buf) - Shape().Size

	// every bucket points at an entry past the end: lookups must still stop
	for i := range len(m.buckets) / bucketSize {
		common.PutU32(m.buckets[i*bucketSize:], 99)
	}
	_, ok := m.Get(1)
	assert.False(t, ok)

	bad := append([]byte(nil), buf...)
	common.PutU32(bad[pos+lenOff:], 1000)
	_, err := ad.Access(bad, pos)
	require.ErrorIs(t, err, reloc.ErrOutOfBounds)

	bad = append([]byte(nil), buf...)
	common.PutI32(bad[pos+entriesOff:], -int32(pos+entriesOff)-1)
	_, err = ad.Access(bad, pos)
	require.ErrorIs(t, err, reloc.ErrOutOfBounds)
}

func TestCorruptValueOnDeserialize(t *testing.T) {
	ad := New[uint32, string](codec.Uint32{}, codec.String{})
	pairs := []Pair[uint32, string]{{1, "a"}}
	buf, m := build(t, ad, pairs)
	// entry layout: key u32 @0, value {rel, len} @4
	common.PutU32(buf[m.entryPos(0)+m.layout.value+4:], 1<<20)

	_, ok, err := m.Lookup(1)
	require.ErrorIs(t, err, reloc.ErrOutOfBounds)
	assert.False(t, ok)

	var ctx reloc.Context
	_, err = ad.Deserialize(m, &ctx)
	require.ErrorIs(t, err, reloc.ErrElementFailure)
	require.ErrorIs(t, ctx.Err(), reloc.ErrOutOfBounds)
}

func TestSinkFailure(t *testing.T) {
	ad := New[string, string](codec.String{}, codec.String{})
	pairs := []Pair[string, string]{{"k", "a long value that will not fit"}}
	b := sink.NewBuffer(sink.WithLimit(16))
	_, err := reloc.Serialize(b, reloc.Adapter[[]Pair[string, string], Archived[string, string], Resolver](ad), &pairs)
	require.ErrorIs(t, err, reloc.ErrSinkFailure)
	assert.Equal(t, 0, b.Live())
}

func TestScratchExhausted(t *testing.T) {
	ad := New[uint32, uint32](codec.Uint32{}, codec.Uint32{})
	pairs := make([]Pair[uint32, uint32], 64)
	for i := range pairs {
		pairs[i] = Pair[uint32, uint32]{uint32(i), uint32(i)}
	}
	b := sink.NewBuffer(sink.WithScratchSize(64))
	_, err := reloc.Serialize(b, reloc.Adapter[[]Pair[uint32, uint32], Archived[uint32, uint32], Resolver](ad), &pairs)
	require.ErrorIs(t, err, sink.ErrScratchExhausted)
	assert.Equal(t, 0, b.InUse())

	b = sink.NewBuffer(sink.WithScratchSize(64), sink.WithScratchFallback(true))
	_, err = reloc.Serialize(b, reloc.Adapter[[]Pair[uint32, uint32], Archived[uint32, uint32], Resolver](ad), &pairs)
	require.NoError(t, err)
}

func BenchmarkGet(b *testing.B) {
	ad := New[string, uint32](codec.String{}, codec.Uint32{})
	pairs := make([]Pair[string, uint32], 10000)
	for i := range pairs {
		pairs[i] = Pair[string, uint32]{fmt.Sprintf("k%05d", i), uint32(i)}
	}
	_, m := build(b, ad, pairs)
	b.ReportAllocs()
	for b.Loop() {
		_, _ = m.Get("k04242")
	}
}

func BenchmarkSerialize(b *testing.B) {
	ad := New[uint64, uint64](codec.Uint64{}, codec.Uint64{})
	pairs := make([]Pair[uint64, uint64], 10000)
	for i := range pairs {
		pairs[i] = Pair[uint64, uint64]{uint64(i), uint64(i)}
	}
	buf := sink.NewBuffer(sink.WithScratchSize(1 << 20))
	rt := reloc.Adapter[[]Pair[uint64, uint64], Archived[uint64, uint64], Resolver](ad)
	b.ReportAllocs()
	for b.Loop() {
		buf.Reset()
		_, _ = reloc.Serialize(buf, rt, &pairs)
	}
}
