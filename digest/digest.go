// Package digest supplies ready-made Capabilities records for the
// common case where a node's value is a fixed-size hash digest: V and P
// are both []byte, Merge is a single call to the chosen hash function
// over the concatenated children, and Padding derives a
// per-index pseudorandom digest so that padded subtrees are
// indistinguishable from populated ones. This is the direct analogue of
// the teacher package's node/HashFunc pair (merkle.go), generalized to
// the Capabilities[V, P] record instead of a single package-level hash
// function, and to two different hash implementations instead of the
// teacher's single vendored one.
package digest

import (
	"crypto/hmac"

	sha256simd "github.com/minio/sha256-simd"
	"lukechampine.com/blake3"

	"github.com/padl-systems/psmt"
)

// Size is the digest width produced by every Capabilities record in this
// package.
const Size = 32

// domainInner/domainPadding prefix every hash input so that an inner-node
// digest can never be replayed as a padding digest or vice versa — the
// same second-preimage defense the teacher's node-tagging
// (OnProvenPath is a membership flag, not a domain tag, but the
// principle of not letting one layer's output masquerade as another's
// input is the same one shared/types.go's HashFunc signature enforces
// by always taking two full children rather than raw bytes).
const (
	domainInner   = 0x01
	domainPadding = 0x02
)

// SHA256 returns a Capabilities[[]byte, []byte] built on
// github.com/minio/sha256-simd, the hardware-accelerated implementation
// the wider example pool reaches for wherever a project needs SHA-256 at
// Merkle-tree throughput. seed is mixed into every padding digest; two
// trees built with different seeds produce unlinkable padding even over
// the same leaf set.
func SHA256(seed []byte) psmt.Capabilities[[]byte, []byte] {
	return capabilities(seed, func(b []byte) []byte {
		h := sha256simd.Sum256(b)
		return h[:]
	})
}

// Blake3 returns a Capabilities[[]byte, []byte] built on
// lukechampine.com/blake3, offered alongside SHA256 as the second
// concrete hash family a caller might pick — the phantom-type-parameter
// "hash algorithm family" design note resolves here to simply offering
// two interchangeable constructors rather than parameterizing Merge
// itself over an algorithm type.
func Blake3(seed []byte) psmt.Capabilities[[]byte, []byte] {
	return capabilities(seed, func(b []byte) []byte {
		h := blake3.Sum256(b)
		return h[:]
	})
}

func capabilities(seed []byte, sum func([]byte) []byte) psmt.Capabilities[[]byte, []byte] {
	return psmt.Capabilities[[]byte, []byte]{
		Default: func() []byte {
			return make([]byte, Size)
		},
		Merge: func(left, right []byte) []byte {
			buf := make([]byte, 0, 1+len(left)+len(right))
			buf = append(buf, domainInner)
			buf = append(buf, left...)
			buf = append(buf, right...)
			return sum(buf)
		},
		Padding: func(idx psmt.TreeIndex) []byte {
			encoded := psmt.EncodeIndex(nil, idx)
			buf := make([]byte, 0, 1+len(seed)+len(encoded))
			buf = append(buf, domainPadding)
			buf = append(buf, seed...)
			buf = append(buf, encoded...)
			return sum(buf)
		},
		Project: func(v []byte) []byte {
			return v
		},
		SerializeValue: func(v []byte) []byte {
			return append([]byte(nil), v...)
		},
		DeserializeValue: func(buf []byte) ([]byte, int, error) {
			if len(buf) < Size {
				return nil, 0, psmt.ErrBytesNotEnough
			}
			return append([]byte(nil), buf[:Size]...), Size, nil
		},
	}
}

// ProofCapabilities returns the matching ProofCapabilities[[]byte] for
// either constructor above: equality is constant-time (hmac.Equal, the
// standard library's constant-time byte comparison) since digests may
// gate access control decisions in a caller's larger system, and Merge
// mirrors the Capabilities.Merge domain separation exactly so that
// MerkleProof.Verify's fold agrees with the tree's own Merge.
func ProofCapabilities(sum func([]byte) []byte) psmt.ProofCapabilities[[]byte] {
	return psmt.ProofCapabilities[[]byte]{
		Equal: hmac.Equal,
		Merge: func(left, right []byte) []byte {
			buf := make([]byte, 0, 1+len(left)+len(right))
			buf = append(buf, domainInner)
			buf = append(buf, left...)
			buf = append(buf, right...)
			return sum(buf)
		},
		Serialize: func(p []byte) []byte {
			return append([]byte(nil), p...)
		},
		Deserialize: func(buf []byte) ([]byte, int, error) {
			if len(buf) < Size {
				return nil, 0, psmt.ErrBytesNotEnough
			}
			return append([]byte(nil), buf[:Size]...), Size, nil
		},
	}
}

// SHA256Sum and Blake3Sum are exported so ProofCapabilities can be built
// matching either hash family without duplicating the sum function.
func SHA256Sum(b []byte) []byte {
	h := sha256simd.Sum256(b)
	return h[:]
}

func Blake3Sum(b []byte) []byte {
	h := blake3.Sum256(b)
	return h[:]
}
