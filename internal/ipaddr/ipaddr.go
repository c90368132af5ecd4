// Package ipaddr bridges net/netip's parsing and text representation with
// the wideint.Uint128 arithmetic that range parsing and iteration need.
// Addresses are always carried in network (big-endian) numeric form.
package ipaddr

import (
	"fmt"
	"net/netip"

	"github.com/cjbrigato/ippoolctl/internal/wideint"
)

// Family distinguishes the address width a Uint128 value should be
// interpreted and printed as.
type Family int

const (
	// V4 addresses occupy the low 32 bits of Val.
	V4 Family = 4
	// V6 addresses occupy the full 128 bits of Val.
	V6 Family = 6
)

// Width returns the address width in bits for the family.
func (f Family) Width() int {
	if f == V4 {
		return 32
	}
	return 128
}

func (f Family) String() string {
	if f == V4 {
		return "ipv4"
	}
	return "ipv6"
}

// Addr is a single address plus the prefix length it was parsed or derived
// with. Prefix is meaningful only where the caller documents it (e.g. the
// allocation prefix carried alongside a range boundary); a bare address has
// Prefix set to the family width.
type Addr struct {
	Family Family
	Val    wideint.Uint128
	Prefix int
}

// FromNetip converts a net/netip.Addr into an Addr with Prefix set to the
// family width.
func FromNetip(a netip.Addr) (Addr, error) {
	switch {
	case a.Is4():
		b := a.As4()
		return Addr{Family: V4, Val: wideint.FromBytes(b[:]), Prefix: 32}, nil
	case a.Is4In6():
		b := a.As4()
		return Addr{Family: V4, Val: wideint.FromBytes(b[:]), Prefix: 32}, nil
	case a.Is6():
		b := a.As16()
		return Addr{Family: V6, Val: wideint.FromBytes(b[:]), Prefix: 128}, nil
	default:
		return Addr{}, fmt.Errorf("ipaddr: invalid address %v", a)
	}
}

// Netip converts back to a net/netip.Addr, dropping the Prefix.
func (a Addr) Netip() netip.Addr {
	b := a.Val.Bytes()
	if a.Family == V4 {
		var v4 [4]byte
		copy(v4[:], b[12:16])
		return netip.AddrFrom4(v4)
	}
	return netip.AddrFrom16(b)
}

// String renders the address in its family's canonical text form.
func (a Addr) String() string {
	return a.Netip().String()
}

// WithPrefix returns a copy of a with Prefix set to p.
func (a Addr) WithPrefix(p int) Addr {
	a.Prefix = p
	return a
}

// HostMask returns the mask of the host bits below prefix p within the
// address family's width: (1<<(width-p)) - 1.
func (f Family) HostMask(p int) wideint.Uint128 {
	width := f.Width()
	bits := width - p
	if bits <= 0 {
		return wideint.Zero
	}
	if bits >= 128 {
		return wideint.Zero.Not()
	}
	return wideint.One.Lsh(uint(bits)).Sub(wideint.One)
}

// Mask returns a with all bits at or below the family width but above
// prefix p cleared (i.e. the network address of a/p), with Prefix set to p.
func (a Addr) Mask(p int) Addr {
	mask := a.Family.HostMask(p).Not()
	return Addr{Family: a.Family, Val: a.Val.And(mask), Prefix: p}
}

// Broadcast returns the last address of the network a/p (all host bits set).
func (a Addr) Broadcast(p int) Addr {
	mask := a.Family.HostMask(p)
	return Addr{Family: a.Family, Val: a.Mask(p).Val.Or(mask), Prefix: p}
}

// Cmp compares two addresses numerically. It does not compare Family; the
// caller is expected to have already checked the families match.
func (a Addr) Cmp(b Addr) int {
	return a.Val.Cmp(b.Val)
}
