package cidr

import (
	"net/netip"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ipfeeds/listgen/src/internal/errors"
)

func TestParseRange(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		family  Family
		coerced bool
	}{
		{"1.2.3.4", "1.2.3.4/32", V4, false},
		{"  1.2.3.4  ", "1.2.3.4/32", V4, false},
		{"10.0.0.0/8", "10.0.0.0/8", V4, false},
		{"10.0.0.5/24", "10.0.0.0/24", V4, true},
		{"0.0.0.0/0", "0.0.0.0/0", V4, false},
		{"255.255.255.255/1", "128.0.0.0/1", V4, true},
		{"2001:db8::1", "2001:db8::1/128", V6, false},
		{"2001:db8::1/32", "2001:db8::/32", V6, true},
		{"2001:DB8::/48", "2001:db8::/48", V6, false},
		{"::/0", "::/0", V6, false},
		{"::ffff:1.2.3.4", "1.2.3.4/32", V4, false},
		{"::ffff:10.1.2.3/120", "10.1.2.0/24", V4, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			r, coerced, err := ParseRange(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, r.String())
			assert.Equal(t, tt.family, r.Family)
			assert.Equal(t, tt.coerced, coerced)
		})
	}
}

func TestParseRange_Invalid(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"example.com",
		"300.300.300.300",
		"1.2.3.4/33",
		"2001:db8::/129",
		"1.2.3.4/-1",
		"1.2.3",
		"fe80::1%eth0",
		"10.0.0.0/8/8",
		"# comment",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			_, _, err := ParseRange(input)
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.ErrCodeValidation), "expected VALIDATION_ERROR, got %v", err)
		})
	}
}

func TestEqualityIsOnCanonicalForm(t *testing.T) {
	a := MustParse("10.0.0.5/24")
	b := MustParse("10.0.0.0/24")
	c := MustParse("10.0.0.0/25")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)

	set := map[NetworkRange]struct{}{a: {}, b: {}}
	assert.Len(t, set, 1)
}

func TestHostBitsAlwaysZero(t *testing.T) {
	for _, s := range []string{"192.168.77.200/17", "2001:db8:ffff:ffff::1/33", "1.2.3.4/0"} {
		r := MustParse(s)
		assert.True(t, r.Network.And(Mask(r.Family, r.Bits).Xor(Mask(r.Family, r.Family.Width()))).IsZero(), s)
	}
}

func TestContains(t *testing.T) {
	tests := []struct {
		outer, inner string
		want         bool
	}{
		{"10.0.0.0/8", "10.1.2.0/24", true},
		{"10.0.0.0/8", "10.0.0.0/8", true},
		{"10.0.0.0/8", "11.0.0.0/24", false},
		{"10.1.2.0/24", "10.0.0.0/8", false},
		{"0.0.0.0/0", "203.0.113.7", true},
		{"2001:db8::/32", "2001:db8:1::/48", true},
		{"2001:db8::/32", "2001:db9::/48", false},
		{"::/0", "1.2.3.4", false},
		{"0.0.0.0/0", "::1", false},
	}

	for _, tt := range tests {
		t.Run(tt.outer+" "+tt.inner, func(t *testing.T) {
			assert.Equal(t, tt.want, MustParse(tt.outer).Contains(MustParse(tt.inner)))
		})
	}
}

func TestOverlaps(t *testing.T) {
	assert.True(t, MustParse("10.0.0.0/8").Overlaps(MustParse("10.1.0.0/16")))
	assert.True(t, MustParse("10.1.0.0/16").Overlaps(MustParse("10.0.0.0/8")))
	assert.False(t, MustParse("10.0.0.0/16").Overlaps(MustParse("10.1.0.0/16")))
}

func TestLast(t *testing.T) {
	r := MustParse("10.0.0.0/30")
	assert.Equal(t, uint64(0x0A000003), r.Last().Lo)

	v6 := MustParse("2001:db8::/127")
	assert.Equal(t, v6.Network.Add64(1), v6.Last())

	full := MustParse("::/0")
	assert.True(t, full.Last().Equals(Mask(V6, 128)))
}

func TestCompareOrdering(t *testing.T) {
	ranges := []NetworkRange{
		MustParse("2001:db8::/32"),
		MustParse("10.0.0.0/24"),
		MustParse("9.255.255.255"),
		MustParse("10.0.0.0/8"),
		MustParse("::1"),
	}
	slices.SortFunc(ranges, Compare)

	var got []string
	for _, r := range ranges {
		got = append(got, r.String())
	}
	assert.Equal(t, []string{
		"9.255.255.255/32",
		"10.0.0.0/8",
		"10.0.0.0/24",
		"::1/128",
		"2001:db8::/32",
	}, got)
}

func TestNumericNotLexicalOrder(t *testing.T) {
	a := MustParse("9.0.0.0/8")
	b := MustParse("10.0.0.0/8")
	assert.Equal(t, -1, Compare(a, b))
}

func TestPrefixRoundTrip(t *testing.T) {
	p := netip.MustParsePrefix("198.51.100.0/24")
	assert.Equal(t, p, MustParse(p.String()).Prefix())
}

func TestNew_RejectsOutOfRangeBits(t *testing.T) {
	_, _, err := New(netip.MustParseAddr("1.2.3.4"), 40)
	assert.Error(t, err)

	_, _, err = New(netip.Addr{}, 0)
	assert.Error(t, err)
}
