// Package keys builds the brace-hash-tagged Redis key strings shared by a
// single pool, so that every key touched by one atomic operation maps to
// the same cluster slot.
package keys

import (
	"fmt"
	"strconv"

	"github.com/cjbrigato/ippoolctl/internal/ipaddr"
)

// Pool returns the pool's ZSET key: {pool-id}:pool.
func Pool(poolID string) string {
	return fmt.Sprintf("{%s}:pool", poolID)
}

// Address returns the per-address hash key: {pool-id}:ip:<address-text>.
func Address(poolID string, addr ipaddr.Addr) string {
	return fmt.Sprintf("{%s}:ip:%s", poolID, AddressText(addr))
}

// Device returns the reverse device lookup key: {pool-id}:device:<device-id>.
func Device(poolID, deviceID string) string {
	return fmt.Sprintf("{%s}:device:%s", poolID, deviceID)
}

// AddressText renders the canonical text form used as both the ZSET member
// and the address-key suffix: the address's text form, followed by "/P"
// only when addr represents a sub-prefix allocation (Prefix != family
// width).
func AddressText(addr ipaddr.Addr) string {
	if addr.Prefix != addr.Family.Width() {
		return addr.String() + "/" + strconv.Itoa(addr.Prefix)
	}
	return addr.String()
}
