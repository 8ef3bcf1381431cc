// Package recorder fans recorder messages out across N catalog shards by a
// SHA-1-derived hash of the file path, then writes each shard to its own
// SQLite catalog. Grounded on original_source's
// sqlite_recording_agent_impl::run(), including its byte-wise modulo
// reduction of the digest rather than treating it as one big integer.
package recorder

import "crypto/sha1"

// Shard computes the destination shard index for path across n shards. It
// reduces the SHA-1 digest byte by byte with the same recurrence the
// original agent uses:
//
//	acc = ((acc*(256 mod n)) mod n + (b mod n)) mod n
//
// rather than converting the full digest to a big integer and taking one
// modulus, so the result matches a deployment migrating from the original
// agent bit for bit. n must be positive.
func Shard(path string, n int) int {
	if n <= 0 {
		panic("recorder: n must be positive")
	}
	sum := sha1.Sum([]byte(path))

	acc := 0
	for _, b := range sum {
		acc = (acc*(256%n))%n + (int(b) % n)
		acc %= n
	}
	return acc
}
