// Package wideint implements unsigned 128-bit arithmetic on top of a pair of
// 64-bit halves, since Go has no native 128-bit integer type. It backs the
// IPv6 (and, uniformly, IPv4) address arithmetic used to parse and iterate
// lease pool ranges.
package wideint

import (
	"encoding/binary"
	"math/bits"
)

// Uint128 is an unsigned 128-bit integer, most significant half first.
// The zero value is 0.
type Uint128 struct {
	Hi, Lo uint64
}

// Zero is the additive identity.
var Zero = Uint128{}

// New builds a Uint128 from its high and low 64-bit halves.
func New(hi, lo uint64) Uint128 {
	return Uint128{Hi: hi, Lo: lo}
}

// One is the multiplicative identity, used throughout range arithmetic to
// build host-bit masks via (1<<n)-1.
var One = New(0, 1)

// carryOfAddSlow reports the carry out of bit 63 of a+b using the classic
// "((a&b&1)+(a>>1)+(b>>1))>>63" trick, kept only because the spec this
// package implements calls that formula out by name as the reference
// algorithm. bits.Add64 computes the same carry and is what Add actually
// uses; wideint_test.go checks the two agree on every case exercised.
func carryOfAddSlow(a, b uint64) uint64 {
	return ((a & b & 1) + (a >> 1) + (b >> 1)) >> 63
}

// Add returns x+y, truncated modulo 2^128.
func (x Uint128) Add(y Uint128) Uint128 {
	lo, carry := bits.Add64(x.Lo, y.Lo, 0)
	hi, _ := bits.Add64(x.Hi, y.Hi, carry)
	return Uint128{Hi: hi, Lo: lo}
}

// Sub returns x-y, truncated modulo 2^128.
func (x Uint128) Sub(y Uint128) Uint128 {
	lo, borrow := bits.Sub64(x.Lo, y.Lo, 0)
	hi, _ := bits.Sub64(x.Hi, y.Hi, borrow)
	return Uint128{Hi: hi, Lo: lo}
}

// Lsh returns x shifted left by k bits, 0 <= k < 128. Shifting by exactly
// 128 is not supported, matching the contract in the spec this mirrors.
func (x Uint128) Lsh(k uint) Uint128 {
	switch {
	case k == 0:
		return x
	case k >= 128:
		panic("wideint: shift amount out of range")
	case k >= 64:
		return Uint128{Hi: x.Lo << (k - 64), Lo: 0}
	default:
		return Uint128{Hi: (x.Hi << k) | (x.Lo >> (64 - k)), Lo: x.Lo << k}
	}
}

// And returns the bitwise AND of x and y.
func (x Uint128) And(y Uint128) Uint128 {
	return Uint128{Hi: x.Hi & y.Hi, Lo: x.Lo & y.Lo}
}

// Or returns the bitwise OR of x and y. Both halves use the actual OR
// operator; a well-known variant of this routine mistakenly uses '+' for the
// high half, which is not the same operation whenever the two operands share
// a set bit in the high half.
func (x Uint128) Or(y Uint128) Uint128 {
	return Uint128{Hi: x.Hi | y.Hi, Lo: x.Lo | y.Lo}
}

// Not returns the bitwise complement of x.
func (x Uint128) Not() Uint128 {
	return Uint128{Hi: ^x.Hi, Lo: ^x.Lo}
}

// Cmp returns -1, 0 or 1 as x is numerically less than, equal to, or
// greater than y, comparing lexicographically over (Hi, Lo).
func (x Uint128) Cmp(y Uint128) int {
	switch {
	case x.Hi < y.Hi:
		return -1
	case x.Hi > y.Hi:
		return 1
	case x.Lo < y.Lo:
		return -1
	case x.Lo > y.Lo:
		return 1
	default:
		return 0
	}
}

// Equal reports whether x and y hold the same value.
func (x Uint128) Equal(y Uint128) bool {
	return x == y
}

// Bytes renders x as a 16-byte big-endian ("network order") buffer.
func (x Uint128) Bytes() [16]byte {
	var b [16]byte
	binary.BigEndian.PutUint64(b[0:8], x.Hi)
	binary.BigEndian.PutUint64(b[8:16], x.Lo)
	return b
}

// FromBytes decodes a big-endian buffer into a Uint128. Buffers shorter than
// 16 bytes are treated as right-aligned and zero-extended on the left, so a
// 4-byte IPv4 address decodes into the low 32 bits of Lo.
func FromBytes(b []byte) Uint128 {
	var buf [16]byte
	if len(b) > 16 {
		b = b[len(b)-16:]
	}
	copy(buf[16-len(b):], b)
	return Uint128{
		Hi: binary.BigEndian.Uint64(buf[0:8]),
		Lo: binary.BigEndian.Uint64(buf[8:16]),
	}
}

// swapAll reverses the byte order of the full 128-bit word.
func (x Uint128) swapAll() Uint128 {
	b := x.Bytes()
	var r [16]byte
	for i := range b {
		r[i] = b[15-i]
	}
	return FromBytes(r[:])
}

// ToNetworkOrder reverses the byte order of x. On the platforms this tool
// targets, address bytes are already decoded/encoded via explicit
// big-endian calls at the wire boundary (see internal/ipaddr), so this is
// not exercised on that path; it exists so the 128-bit contract this
// package implements (add/sub/shift plus the host/network order pair) is
// complete and independently testable, matching the arithmetic primitive
// the original tool exposes.
func (x Uint128) ToNetworkOrder() Uint128 {
	return x.swapAll()
}

// ToHostOrder is the inverse of ToNetworkOrder; the byte swap is its own
// inverse, so the implementation is shared.
func (x Uint128) ToHostOrder() Uint128 {
	return x.swapAll()
}
