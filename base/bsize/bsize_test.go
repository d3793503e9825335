package bsize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mbeattie/picochan/base/bsize"
)

func TestDecodeEncodeRoundTrip(t *testing.T) {
	for n := 0; n <= bsize.MaxValue; n++ {
		e, exact := bsize.EncodeExact(uint16(n))
		got := bsize.Decode(e)
		assert.LessOrEqualf(t, got, uint16(n), "n=%d decoded to %d > n", n, got)
		if exact {
			assert.Equalf(t, uint16(n), got, "n=%d claimed exact but decode(encode(n))=%d", n, got)
		}
	}
}

func TestEncodeMonotonic(t *testing.T) {
	prev := bsize.Decode(bsize.Encode(0))
	for n := uint16(1); n <= bsize.MaxValue; n++ {
		cur := bsize.Decode(bsize.Encode(n))
		assert.GreaterOrEqualf(t, cur, prev, "decode(encode(%d))=%d < decode(encode(%d))=%d", n, cur, n-1, prev)
		prev = cur
	}
}

func TestEncodeOverflow(t *testing.T) {
	assert.Equal(t, bsize.Overflow, bsize.Encode(bsize.MaxValue+1))
	assert.Equal(t, bsize.Overflow, bsize.Encode(65535))
}

func TestEncodeExactBoundaries(t *testing.T) {
	cases := []struct {
		n     uint16
		want  uint16
		exact bool
	}{
		{0, 0, true},
		{63, 63, true},
		{64, 64, true},
		{65, 64, false},
		{190, 190, true},
		{191, 190, false},
		{192, 192, true},
		{696, 696, true},
		{703, 696, false},
		{704, 704, true},
		{4736, 4736, true},
	}
	for _, c := range cases {
		e, exact := bsize.EncodeExact(c.n)
		assert.Equalf(t, c.exact, exact, "n=%d", c.n)
		assert.Equalf(t, c.want, bsize.Decode(e), "n=%d", c.n)
	}
}
