package redisops

import "github.com/redis/go-redis/v9"

// removeScriptSource implements the REMOVE action atomically: it removes
// the address from the pool ZSET, tolerates a partially-removed prior
// state (ZSET entry gone but the hash or device key lingering), and, only
// when the address hash has a device field, unlinks the device
// reverse-lookup key and deletes the address hash. An address with no
// device (the common case — a range field only) keeps its hash on
// REMOVE.
//
// KEYS[1] is the bare pool id (not the braced key); the script rebuilds
// the braced key family itself so every key it touches shares the same
// hash tag and therefore the same cluster slot.
//
// Kept as a named constant, rather than inlined into redis.NewScript, so
// scripts_test.go can assert on its structure directly.
const removeScriptSource = `
local pool_key = "{" .. KEYS[1] .. "}:pool"
local addr_key = "{" .. KEYS[1] .. "}:ip:" .. ARGV[1]
local removed = redis.call("ZREM", pool_key, ARGV[1])
local device = redis.call("HGET", addr_key, "device")
if device then
	local device_key = "{" .. KEYS[1] .. "}:device:" .. device
	redis.call("DEL", device_key)
	redis.call("DEL", addr_key)
end
if removed and removed > 0 then
	return 1
end
return 0
`

// releaseScriptSource implements the RELEASE action: it zeroes the
// address's expiry score if the address is present in the pool, and
// unlinks any device reverse-lookup key. It never deletes the address
// hash or the ZSET entry.
const releaseScriptSource = `
local pool_key = "{" .. KEYS[1] .. "}:pool"
local addr_key = "{" .. KEYS[1] .. "}:ip:" .. ARGV[1]
local updated = redis.call("ZADD", pool_key, "XX", "CH", 0, ARGV[1])
if not updated or updated == 0 then
	return 0
end
local device = redis.call("HGET", addr_key, "device")
if device then
	local device_key = "{" .. KEYS[1] .. "}:device:" .. device
	redis.call("DEL", device_key)
end
return 1
`

var removeScript = redis.NewScript(removeScriptSource)
var releaseScript = redis.NewScript(releaseScriptSource)
