// Package rangeparse parses the tool's `<prefix>` grammar (`A`, `A/N`,
// `A-B`) into a normalized start/end/allocation-prefix triple, applying
// broadcast exclusion the same way the allocator's atomic scripts expect.
package rangeparse

import (
	"net/netip"
	"strings"

	"github.com/cjbrigato/ippoolctl/internal/ipaddr"
	"github.com/cjbrigato/ippoolctl/internal/ippoolerr"
	"github.com/cjbrigato/ippoolctl/internal/wideint"
)

// Range is a normalized, mask-applied address range plus the allocation
// prefix that will be used to step through it.
type Range struct {
	Start  ipaddr.Addr
	End    ipaddr.Addr
	Prefix int
}

// Parse parses text against the tool's range grammar. allocPrefix is the
// caller-supplied `-p` value; 0 means "use the family width" (allocate
// individual hosts).
func Parse(text string, allocPrefix int) (Range, error) {
	text = strings.TrimSpace(text)
	switch {
	case strings.Contains(text, "-"):
		return parseExplicitRange(text, allocPrefix)
	case strings.Contains(text, "/"):
		return parseNetwork(text, allocPrefix)
	default:
		return parseHost(text, allocPrefix)
	}
}

func parseExplicitRange(text string, allocPrefix int) (Range, error) {
	parts := strings.SplitN(text, "-", 2)
	if len(parts) != 2 {
		return Range{}, ippoolerr.Parse("rangeparse: malformed range %q", text)
	}
	aNet, err := netip.ParseAddr(strings.TrimSpace(parts[0]))
	if err != nil {
		return Range{}, ippoolerr.Parse("rangeparse: malformed address %q: %v", parts[0], err)
	}
	bNet, err := netip.ParseAddr(strings.TrimSpace(parts[1]))
	if err != nil {
		return Range{}, ippoolerr.Parse("rangeparse: malformed address %q: %v", parts[1], err)
	}
	a, err := ipaddr.FromNetip(aNet)
	if err != nil {
		return Range{}, ippoolerr.Parse("rangeparse: %v", err)
	}
	b, err := ipaddr.FromNetip(bNet)
	if err != nil {
		return Range{}, ippoolerr.Parse("rangeparse: %v", err)
	}
	if a.Family != b.Family {
		return Range{}, ippoolerr.Parse("rangeparse: family mismatch between %q and %q", parts[0], parts[1])
	}
	p, err := effectivePrefix(a.Family, a.Prefix, allocPrefix)
	if err != nil {
		return Range{}, err
	}
	start := a.Mask(p)
	end := b.Mask(p)
	if start.Cmp(end) > 0 {
		return Range{}, ippoolerr.Parse("rangeparse: start %s is after end %s", start, end)
	}
	return Range{Start: start, End: end, Prefix: p}, nil
}

func parseNetwork(text string, allocPrefix int) (Range, error) {
	prefixNet, err := netip.ParsePrefix(text)
	if err != nil {
		return Range{}, ippoolerr.Parse("rangeparse: malformed network %q: %v", text, err)
	}
	a, err := ipaddr.FromNetip(prefixNet.Addr())
	if err != nil {
		return Range{}, ippoolerr.Parse("rangeparse: %v", err)
	}
	return finishFromStart(a, prefixNet.Bits(), allocPrefix)
}

func parseHost(text string, allocPrefix int) (Range, error) {
	aNet, err := netip.ParseAddr(text)
	if err != nil {
		return Range{}, ippoolerr.Parse("rangeparse: malformed address %q: %v", text, err)
	}
	a, err := ipaddr.FromNetip(aNet)
	if err != nil {
		return Range{}, ippoolerr.Parse("rangeparse: %v", err)
	}
	return finishFromStart(a, a.Family.Width(), allocPrefix)
}

// finishFromStart implements the `A/N` and bare-`A` grammar: mask a down to
// startPrefix, resolve the effective allocation prefix P, then compute end
// per the broadcast-exclusion rule (rule 3).
func finishFromStart(a ipaddr.Addr, startPrefix, allocPrefix int) (Range, error) {
	start := a.Mask(startPrefix)
	p, err := effectivePrefix(a.Family, startPrefix, allocPrefix)
	if err != nil {
		return Range{}, err
	}

	width := a.Family.Width()
	end := start

	// Host-bit mask for bits [startPrefix, p), positioned at
	// [width-p, width-startPrefix) within the address.
	hostMask := func() wideint.Uint128 {
		bits := uint(p - startPrefix)
		if bits == 0 {
			return wideint.Zero
		}
		ones := wideint.One.Lsh(bits).Sub(wideint.One)
		return ones.Lsh(uint(width - p))
	}

	switch {
	case p == width && startPrefix >= width-1:
		// Single address; broadcast exclusion has nothing to exclude.
		end = start
	case p == width:
		last := start
		last.Val = last.Val.Or(hostMask())
		end = ipaddr.Addr{Family: a.Family, Val: last.Val.Sub(wideint.One), Prefix: p}
	default:
		end = start
		end.Val = end.Val.Or(hostMask())
	}
	end.Prefix = p
	start.Prefix = p
	return Range{Start: start, End: end, Prefix: p}, nil
}

// effectivePrefix resolves rule 1 (P=0 means family width) and validates
// rule 2 (bounds and span).
func effectivePrefix(fam ipaddr.Family, startPrefix, allocPrefix int) (int, error) {
	p := allocPrefix
	if p == 0 {
		p = fam.Width()
	}
	if p < startPrefix {
		return 0, ippoolerr.Parse("rangeparse: allocation prefix %d is smaller than network prefix %d", p, startPrefix)
	}
	if p > fam.Width() {
		return 0, ippoolerr.Parse("rangeparse: allocation prefix %d exceeds %s width %d", p, fam, fam.Width())
	}
	if p-startPrefix > 64 {
		return 0, ippoolerr.Parse("rangeparse: prefix span %d exceeds 64", p-startPrefix)
	}
	return p, nil
}
