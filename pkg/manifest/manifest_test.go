package manifest

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rawbytedev/reloc"
	"github.com/rawbytedev/reloc/pkg/asmap"
	"github.com/rawbytedev/reloc/pkg/bitvec"
)

const sample = `
entries:
  - key: region
    value: eu-west-1
  - key: tier
    value: gold
bits: "1011_1"
order: msb0
`

func TestShape(t *testing.T) {
	assert.Equal(t, 0, entriesOff)
	assert.Equal(t, 12, flagsOff)
	assert.Equal(t, 24, orderOff)
	assert.Equal(t, reloc.Shape{Size: 28, Align: 4}, Shape())
}

func TestLoad(t *testing.T) {
	m, err := Load(strings.NewReader(sample))
	require.NoError(t, err)
	require.Len(t, m.Entries, 2)
	assert.Equal(t, asmap.Pair[string, string]{Key: "tier", Value: "gold"}, m.Entries[1])
	assert.Equal(t, "10111", m.Flags.String())
	assert.Equal(t, bitvec.Msb0, m.Flags.Order())
	v, ok := m.Get("region")
	assert.True(t, ok)
	assert.Equal(t, "eu-west-1", v)

	empty, err := Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, empty.Entries)
	assert.Equal(t, 0, empty.Flags.Len())

	_, err = Load(strings.NewReader(`bits: "12"`))
	require.ErrorIs(t, err, bitvec.ErrBadDigit)
	_, err = Load(strings.NewReader("order: sideways"))
	require.ErrorIs(t, err, bitvec.ErrBadOrder)
}

func TestArchiveRoundTrip(t *testing.T) {
	m, err := Load(strings.NewReader(sample))
	require.NoError(t, err)
	ad := NewAdapter(reloc.DefaultOptions())
	data, err := reloc.Encode(reloc.NewEncoder(reloc.DefaultOptions()), reloc.Adapter[Manifest, Archived, Resolver](ad), &m)
	require.NoError(t, err)

	a, err := reloc.AccessRoot(reloc.Adapter[Manifest, Archived, Resolver](ad), data)
	require.NoError(t, err)
	assert.Equal(t, bitvec.Msb0, a.Order)
	assert.Equal(t, 2, a.Entries.Len())
	tier, ok := a.Entries.Get("tier")
	require.True(t, ok)
	assert.Equal(t, "gold", tier)
	assert.Equal(t, "10111", a.Flags.View().String())

	got, err := reloc.Decode(reloc.Adapter[Manifest, Archived, Resolver](ad), data)
	require.NoError(t, err)
	assert.Equal(t, m.Entries, got.Entries)
	assert.True(t, got.Flags.Equal(&m.Flags))
	assert.Equal(t, bitvec.Msb0, got.Flags.Order())
}

func TestCheckUnique(t *testing.T) {
	m, err := Load(strings.NewReader("entries: [{key: a, value: '1'}, {key: a, value: '2'}]"))
	require.NoError(t, err)
	opts := reloc.DefaultOptions()
	opts.CheckUnique = true
	_, err = reloc.Encode(reloc.NewEncoder(opts), reloc.Adapter[Manifest, Archived, Resolver](NewAdapter(opts)), &m)
	require.ErrorIs(t, err, reloc.ErrElementFailure)
}

func TestBadOrderByte(t *testing.T) {
	var m Manifest
	ad := NewAdapter(reloc.DefaultOptions())
	data, err := reloc.Encode(reloc.NewEncoder(reloc.DefaultOptions()), reloc.Adapter[Manifest, Archived, Resolver](ad), &m)
	require.NoError(t, err)
	require.Len(t, data, 28)
	data[orderOff] = 7
	_, err = ad.Access(data, 0)
	require.ErrorIs(t, err, reloc.ErrElementFailure)
}

func TestDump(t *testing.T) {
	m, err := Load(strings.NewReader(sample))
	require.NoError(t, err)
	var out bytes.Buffer
	require.NoError(t, Dump(&out, &m))
	assert.Contains(t, out.String(), "key: region")
	assert.Contains(t, out.String(), "10111")

	again, err := Load(&out)
	require.NoError(t, err)
	assert.Equal(t, m.Entries, again.Entries)
	assert.True(t, again.Flags.Equal(&m.Flags))
}
