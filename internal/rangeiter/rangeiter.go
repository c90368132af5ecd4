// Package rangeiter implements the pure "next" stepping operation used to
// walk a rangeparse.Range in units of one allocation block, without
// mutating the caller's address in place.
package rangeiter

import (
	"github.com/cjbrigato/ippoolctl/internal/ipaddr"
	"github.com/cjbrigato/ippoolctl/internal/wideint"
)

// Iterator steps through [Start, End] in increments of one allocation
// block (2^(family width - Prefix)).
type Iterator struct {
	End  ipaddr.Addr
	step wideint.Uint128
}

// New builds an Iterator over [start, end] where each step advances by
// 2^(family width - prefix).
func New(start, end ipaddr.Addr, prefix int) Iterator {
	width := start.Family.Width()
	bits := uint(width - prefix)
	step := wideint.One
	if bits > 0 {
		step = wideint.One.Lsh(bits)
	}
	return Iterator{End: end, step: step}
}

// Next returns the address after current and whether the caller should
// continue iterating. It returns false iff current already equals End
// (checked before incrementing); the returned address is undefined in
// that case and must not be used. current is never mutated.
func (it Iterator) Next(current ipaddr.Addr) (ipaddr.Addr, bool) {
	if current.Val.Equal(it.End.Val) {
		return current, false
	}
	next := current
	next.Val = current.Val.Add(it.step)
	return next, true
}
