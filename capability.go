package psmt

// Capabilities is the trait surface a node value type V must satisfy,
// expressed as a record of plain functions rather than methods on V.
// Padding must be callable with no V in hand (it is a pure function of an
// index alone), which rules out an interface with methods on V for that
// one capability — so the whole set is a function-value record instead,
// the "vtable" form the design notes call for. P is the projection of V
// that is carried on the wire in proofs.
type Capabilities[V, P any] struct {
	// Default returns the zero value for uninitialized slots. Never
	// used on a security-critical path.
	Default func() V

	// Merge combines a left and right child into their parent value.
	// Must be deterministic and pure, and only needs to be associative
	// along the shape of the tree itself.
	Merge func(left, right V) V

	// Padding is a deterministic function of an index alone. Two
	// distinct indices must produce distinct padding with overwhelming
	// probability, so that padded subtrees are indistinguishable from
	// populated ones under the root.
	Padding func(idx TreeIndex) V

	// Project reduces a node value to what appears in proofs.
	Project func(v V) P

	// SerializeValue encodes a V for storage/debugging use (not used by
	// MerkleProof's own wire format, which encodes P).
	SerializeValue func(v V) []byte

	// DeserializeValue decodes a V from the front of buf, returning the
	// value and the number of bytes consumed.
	DeserializeValue func(buf []byte) (V, int, error)
}

// ProofCapabilities is the trait surface the wire projection type P must
// satisfy so that proofs can be folded, compared, and serialized.
type ProofCapabilities[P any] struct {
	// Equal is structural equality on P.
	Equal func(a, b P) bool

	// Merge combines a left and right sibling projection into their
	// parent's projection, under the same algebra Capabilities.Merge
	// uses (typically Merge = func(l, r P) P { return Project(caps.Merge(unproject(l), unproject(r))) },
	// but P need not round-trip back to V — only the merge operator on
	// P needs to agree with merge-then-project on V).
	Merge func(left, right P) P

	// Serialize encodes a P for the wire.
	Serialize func(p P) []byte

	// Deserialize decodes a P from the front of buf, returning the
	// value and the number of bytes consumed.
	Deserialize func(buf []byte) (P, int, error)
}

// PaddingProvable is the optional capability needed for random-sampling
// proofs to additionally witness that a node stored at a padding apex
// equals Capabilities.Padding(idx), without the verifier needing to
// recompute Padding itself from the index (useful when Padding is
// expensive, or when V carries private material Padding derives from
// without reproducing it byte for byte).
type PaddingProvable[V, P, PP any] struct {
	// ProvePadding produces a witness that v == Padding(idx).
	ProvePadding func(v V, idx TreeIndex) PP

	// VerifyPadding checks a witness against a claimed projection and
	// index.
	VerifyPadding func(p P, proof PP, idx TreeIndex) bool

	// SerializeProof/DeserializeProof make PP self-delimiting on the
	// wire, the same contract as Capabilities.SerializeValue.
	SerializeProof   func(pp PP) []byte
	DeserializeProof func(buf []byte) (PP, int, error)
}
