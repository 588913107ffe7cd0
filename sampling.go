package psmt

import "fmt"

// SamplingTag distinguishes a random-sampling proof that lands on a real
// leaf from one that lands on a padded (empty) subtree's apex.
type SamplingTag uint8

const (
	TagLeaf SamplingTag = iota
	TagPadding
)

func (t SamplingTag) String() string {
	if t == TagLeaf {
		return "LEAF"
	}
	return "PADDING"
}

// RandomSamplingProof convinces a verifier of the identity of the closest
// real leaf to a query index Q, or that a specific padded subtree covers
// Q, without revealing which case held for any other query — the padding
// construction makes the two indistinguishable except for the content of
// this proof. V is carried only as a phantom type parameter so Verify can
// accept the same PaddingProvable[V, P, PP] capability record RandomSample
// was given; no V-typed value is ever stored here.
type RandomSamplingProof[V, P, PP any] struct {
	Target       TreeIndex
	Tag          SamplingTag
	Value        P
	PaddingProof *PP // nil when Tag == TagLeaf
	Inclusion    *MerkleProof[P]
}

// RandomSample finds the node A that covers query index Q — descending
// from the root along Q's bit path through stored children until a child
// is missing, at which point the last node found is A, the highest
// position whose subtree contains no real leaf other than possibly Q
// itself. pp may be nil if the caller never needs to sample into a padded
// region (RandomSample returns an error in that case instead of a
// PaddingProof-less proof, since a verifier could not check TagPadding
// proofs without it).
func RandomSample[V, P, PP any](t *Tree[V, P], q TreeIndex, pp *PaddingProvable[V, P, PP]) (*RandomSamplingProof[V, P, PP], error) {
	if q.Height != t.Height {
		return nil, fmt.Errorf("%w: query height %d, want %d", ErrHeightMismatch, q.Height, t.Height)
	}

	cur := TreeIndex{Height: 0}
	for cur.Height < t.Height {
		bit := q.Bit(cur.Height)
		child, err := cur.Child(bit)
		if err != nil {
			return nil, err
		}
		if _, ok := t.GetNode(child); !ok {
			break
		}
		cur = child
	}

	val, err := t.mustGetNode(cur)
	if err != nil {
		return nil, fmt.Errorf("psmt: internal invariant violated fetching sampled node %s: %w", cur, err)
	}

	// A node at leaf height is not necessarily a real leaf: a whole empty
	// sibling subtree that happens to span only the bottom level is
	// materialized as Padding(idx) at exactly height t.Height too (the
	// same ambiguity HasLeaf resolves for the tree store), so the tag can
	// only be decided by consulting the leaf set, not by height alone.
	tag := TagPadding
	if cur.Height == t.Height && t.HasLeaf(cur) {
		tag = TagLeaf
	}

	var paddingProof *PP
	if tag == TagPadding {
		if pp == nil {
			return nil, fmt.Errorf("psmt: sampled node %s is padding but no PaddingProvable capability was given", cur)
		}
		proof := pp.ProvePadding(val, cur)
		paddingProof = &proof
	}

	inclusion, err := generateInclusionAt(t, cur)
	if err != nil {
		return nil, err
	}

	return &RandomSamplingProof[V, P, PP]{
		Target:       cur,
		Tag:          tag,
		Value:        t.caps.Project(val),
		PaddingProof: paddingProof,
		Inclusion:    inclusion,
	}, nil
}

// generateInclusionAt builds a single-node inclusion proof for an
// arbitrary stored position (which may be above leaf level, as a random
// sampling apex often is), by walking it up to the root exactly like
// GenerateInclusion's single-leaf path, but without requiring the
// position to be at full tree height.
func generateInclusionAt[V, P any](t *Tree[V, P], pos TreeIndex) (*MerkleProof[P], error) {
	val, err := t.mustGetNode(pos)
	if err != nil {
		return nil, err
	}

	proof := &MerkleProof[P]{
		Height:      pos.Height,
		LeafIndices: []TreeIndex{pos},
		LeafValues:  []P{t.caps.Project(val)},
	}

	cur := pos
	for cur.Height > 0 {
		sib, err := cur.Sibling()
		if err != nil {
			return nil, err
		}
		sibVal, err := t.mustGetNode(sib)
		if err != nil {
			return nil, fmt.Errorf("psmt: internal invariant violated fetching sibling %s: %w", sib, err)
		}
		proof.SiblingIndices = append(proof.SiblingIndices, sib)
		proof.SiblingValues = append(proof.SiblingValues, t.caps.Project(sibVal))

		parent, err := cur.Parent()
		if err != nil {
			return nil, err
		}
		cur = parent
	}
	return proof, nil
}

// Verify checks the random-sampling proof against root: for TagLeaf it is
// exactly single-leaf inclusion verification; for TagPadding it first
// verifies the padding witness, then runs the same inclusion check using
// the padded projection. In both cases the verifier also checks that
// Target actually covers q — that is what makes A "the" closest node for
// q.
func (p *RandomSamplingProof[V, P, PP]) Verify(q TreeIndex, caps ProofCapabilities[P], pp *PaddingProvable[V, P, PP], root P) (bool, error) {
	if !p.Target.IsAncestorOf(q) {
		return false, fmt.Errorf("%w: target %s does not cover query %s", ErrInvalidProof, p.Target, q)
	}
	if p.Inclusion == nil {
		return false, fmt.Errorf("%w: missing inclusion proof", ErrInvalidProof)
	}
	if len(p.Inclusion.LeafIndices) != 1 || !p.Inclusion.LeafIndices[0].Equal(p.Target) {
		return false, fmt.Errorf("%w: inclusion proof is not for the claimed target", ErrInvalidProof)
	}
	if !caps.Equal(p.Inclusion.LeafValues[0], p.Value) {
		return false, fmt.Errorf("%w: inclusion proof leaf value does not match claimed value", ErrInvalidProof)
	}

	switch p.Tag {
	case TagLeaf:
		if p.Target.Height != q.Height {
			return false, fmt.Errorf("%w: leaf-tagged target must be at full leaf height", ErrInvalidProof)
		}
	case TagPadding:
		if pp == nil {
			return false, fmt.Errorf("psmt: padding-tagged proof but no PaddingProvable capability was given")
		}
		if p.PaddingProof == nil {
			return false, fmt.Errorf("%w: padding-tagged proof is missing its padding witness", ErrInvalidProof)
		}
		if !pp.VerifyPadding(p.Value, *p.PaddingProof, p.Target) {
			return false, ErrInvalidPaddingWitness
		}
	default:
		return false, fmt.Errorf("%w: unknown sampling tag %d", ErrInvalidProof, p.Tag)
	}

	return p.Inclusion.Verify(ProofCapabilities[P]{
		Equal: caps.Equal,
		Merge: caps.Merge,
	}, root)
}
