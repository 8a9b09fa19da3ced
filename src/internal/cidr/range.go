package cidr

import (
	"fmt"
	"net/netip"
	"strings"

	"lukechampine.com/uint128"

	"github.com/ipfeeds/listgen/src/internal/errors"
)

// Family is the address family of a NetworkRange.
type Family uint8

const (
	V4 Family = 4
	V6 Family = 6
)

func (f Family) String() string {
	switch f {
	case V4:
		return "IPv4"
	case V6:
		return "IPv6"
	default:
		return fmt.Sprintf("Family(%d)", uint8(f))
	}
}

// Width returns the address width of the family in bits.
func (f Family) Width() uint8 {
	if f == V4 {
		return 32
	}
	return 128
}

var v4AllOnes = uint128.From64(0xFFFFFFFF)

// NetworkRange is a canonical CIDR: the network address is stored in host order
// with host bits always zero. IPv4 addresses occupy the low 32 bits.
// NetworkRange values are comparable and are used directly as set keys.
type NetworkRange struct {
	Family  Family
	Network uint128.Uint128
	Bits    uint8
}

// Mask returns the network mask of the given prefix length within the family width.
func Mask(family Family, bits uint8) uint128.Uint128 {
	if bits == 0 {
		return uint128.Zero
	}
	width := family.Width()
	if bits > width {
		bits = width
	}
	m := uint128.Max.Lsh(uint(width - bits))
	if family == V4 {
		m = m.And(v4AllOnes)
	}
	return m
}

// New builds a NetworkRange from an address and prefix length, zeroing host bits.
// It reports whether any host bit had to be cleared.
func New(addr netip.Addr, bits int) (NetworkRange, bool, error) {
	if !addr.IsValid() {
		return NetworkRange{}, false, fmt.Errorf("invalid address")
	}
	if addr.Zone() != "" {
		return NetworkRange{}, false, fmt.Errorf("zoned address %s is not allowed", addr)
	}

	family, value := addrToInt(addr)
	if bits < 0 || bits > int(family.Width()) {
		return NetworkRange{}, false, fmt.Errorf("prefix length %d out of range for %s", bits, family)
	}

	masked := value.And(Mask(family, uint8(bits)))
	return NetworkRange{Family: family, Network: masked, Bits: uint8(bits)}, !masked.Equals(value), nil
}

// ParseRange parses a bare IP address or a CIDR into its canonical form.
// Host bits outside the prefix are masked off; coerced reports whether that happened.
// IPv4-mapped IPv6 values are unmapped when the prefix keeps the whole mapping.
func ParseRange(s string) (r NetworkRange, coerced bool, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return NetworkRange{}, false, errors.NewValidationError("empty address entry", nil)
	}

	if strings.Contains(s, "/") {
		prefix, perr := netip.ParsePrefix(s)
		if perr != nil {
			return NetworkRange{}, false, errors.NewValidationError(fmt.Sprintf("invalid CIDR %q", s), perr)
		}
		addr, bits := prefix.Addr(), prefix.Bits()
		if addr.Is4In6() && bits >= 96 {
			addr, bits = addr.Unmap(), bits-96
		}
		r, coerced, err = New(addr, bits)
	} else {
		addr, perr := netip.ParseAddr(s)
		if perr != nil {
			return NetworkRange{}, false, errors.NewValidationError(fmt.Sprintf("invalid IP address %q", s), perr)
		}
		addr = addr.Unmap()
		r, coerced, err = New(addr, addr.BitLen())
	}

	if err != nil {
		return NetworkRange{}, false, errors.NewValidationError(fmt.Sprintf("invalid address entry %q", s), err)
	}
	return r, coerced, nil
}

// Normalize parses s into its canonical NetworkRange, coercing host bits.
func Normalize(s string) (NetworkRange, error) {
	r, _, err := ParseRange(s)
	return r, err
}

// MustParse is like Normalize but panics on error. Intended for tests and constants.
func MustParse(s string) NetworkRange {
	r, err := Normalize(s)
	if err != nil {
		panic(err)
	}
	return r
}

// Addr returns the network address.
func (r NetworkRange) Addr() netip.Addr {
	return intToAddr(r.Family, r.Network)
}

// Prefix returns the range as a netip.Prefix.
func (r NetworkRange) Prefix() netip.Prefix {
	return netip.PrefixFrom(r.Addr(), int(r.Bits))
}

// String returns the canonical CIDR notation, e.g. "10.0.0.0/24".
func (r NetworkRange) String() string {
	return r.Prefix().String()
}

// Last returns the numerically highest address covered by the range.
func (r NetworkRange) Last() uint128.Uint128 {
	host := Mask(r.Family, r.Bits).Xor(Mask(r.Family, r.Family.Width()))
	return r.Network.Or(host)
}

// Contains reports whether other lies entirely within r.
func (r NetworkRange) Contains(other NetworkRange) bool {
	if r.Family != other.Family || r.Bits > other.Bits {
		return false
	}
	return r.Network.Cmp(other.Network) <= 0 && other.Last().Cmp(r.Last()) <= 0
}

// Overlaps reports whether r and other share at least one address.
func (r NetworkRange) Overlaps(other NetworkRange) bool {
	return r.Contains(other) || other.Contains(r)
}

// Compare orders ranges by family (IPv4 first), then network address, then prefix length.
func Compare(a, b NetworkRange) int {
	if a.Family != b.Family {
		if a.Family < b.Family {
			return -1
		}
		return 1
	}
	if c := a.Network.Cmp(b.Network); c != 0 {
		return c
	}
	switch {
	case a.Bits < b.Bits:
		return -1
	case a.Bits > b.Bits:
		return 1
	}
	return 0
}

func addrToInt(addr netip.Addr) (Family, uint128.Uint128) {
	if addr.Is4() {
		b := addr.As4()
		return V4, uint128.From64(uint64(b[0])<<24 | uint64(b[1])<<16 | uint64(b[2])<<8 | uint64(b[3]))
	}
	b := addr.As16()
	return V6, uint128.FromBytesBE(b[:])
}

func intToAddr(family Family, v uint128.Uint128) netip.Addr {
	if family == V4 {
		lo := v.Lo
		return netip.AddrFrom4([4]byte{byte(lo >> 24), byte(lo >> 16), byte(lo >> 8), byte(lo)})
	}
	var b [16]byte
	v.PutBytesBE(b[:])
	return netip.AddrFrom16(b)
}
