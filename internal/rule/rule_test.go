package rule

import (
	"errors"
	"testing"

	"eca-morph/internal/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogFormulasMatchWolframCodes(t *testing.T) {
	table := Default()
	for _, id := range table.IDs() {
		r, err := table.Lookup(id)
		require.NoError(t, err)
		if got := Code(r); int(got) != id {
			t.Fatalf("rule %d evaluates as Wolfram code %d", id, got)
		}
	}
}

func TestRule22IsXorMajority(t *testing.T) {
	table := Default()
	for idx := uint8(0); idx < 8; idx++ {
		l, c, r := idx>>2&1, idx>>1&1, idx&1
		want := (l ^ c ^ r) ^ (l & c & r)
		got, err := table.Apply(22, l, c, r)
		require.NoError(t, err)
		assert.Equal(t, want, got, "neighborhood %03b", idx)
	}
}

func TestOutputsStayBinary(t *testing.T) {
	table := Full()
	for _, id := range table.IDs() {
		for idx := uint8(0); idx < 8; idx++ {
			got, err := table.Apply(id, idx>>2&1, idx>>1&1, idx&1)
			require.NoError(t, err)
			if got > 1 {
				t.Fatalf("rule %d produced %d for %03b", id, got, idx)
			}
		}
	}
	assert.Len(t, table.IDs(), 256)
}

func TestLookupUnknownRule(t *testing.T) {
	table := Default()
	_, err := table.Lookup(7)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrUnknownRule))

	var unknown *errs.UnknownRuleError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, 7, unknown.ID)

	_, err = table.Apply(7, 0, 1, 0)
	assert.ErrorIs(t, err, errs.ErrUnknownRule)
}

func TestRegisterCustomRule(t *testing.T) {
	table := NewTable()
	xorLR := Func(func(l, _, r uint8) uint8 { return l ^ r })
	require.NoError(t, table.Register(300, xorLR))
	assert.True(t, table.Has(300))
	assert.Equal(t, []int{300}, table.IDs())

	assert.ErrorIs(t, table.Register(-1, xorLR), errs.ErrInvalidParameter)
	assert.ErrorIs(t, table.Register(1, nil), errs.ErrInvalidParameter)
}

func TestWolframRoundTrip(t *testing.T) {
	for code := 0; code < 256; code++ {
		assert.Equal(t, uint8(code), Code(Wolfram(uint8(code))))
	}
}
