package psmt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func paddingProvable() PaddingProvable[[]byte, []byte, []byte] {
	caps := testCaps()
	return PaddingProvable[[]byte, []byte, []byte]{
		ProvePadding: func(v []byte, idx TreeIndex) []byte {
			return append([]byte(nil), v...)
		},
		VerifyPadding: func(p []byte, proof []byte, idx TreeIndex) bool {
			want := caps.Padding(idx)
			if len(proof) != len(want) {
				return false
			}
			for i := range want {
				if proof[i] != want[i] {
					return false
				}
			}
			return true
		},
		SerializeProof: func(pp []byte) []byte {
			return append([]byte(nil), pp...)
		},
		DeserializeProof: func(buf []byte) ([]byte, int, error) {
			if len(buf) < 8 {
				return nil, 0, ErrBytesNotEnough
			}
			return append([]byte(nil), buf[:8]...), 8, nil
		},
	}
}

func TestRandomSampleHitsRealLeaf(t *testing.T) {
	r := require.New(t)
	caps := testCaps()

	leaves := []LeafEntry[[]byte]{
		{Index: idxAt(4, 3), Value: leafValue(5)},
	}
	tree, err := Build(4, leaves, caps)
	r.NoError(err)
	root, err := tree.Root()
	r.NoError(err)

	pp := paddingProvable()
	proof, err := RandomSample[[]byte, []byte, []byte](tree, idxAt(4, 3), &pp)
	r.NoError(err)
	r.Equal(TagLeaf, proof.Tag)
	r.True(proof.Target.Equal(idxAt(4, 3)))
	r.Nil(proof.PaddingProof)

	ok, err := proof.Verify(idxAt(4, 3), proofCaps(), &pp, root)
	r.NoError(err)
	r.True(ok)
}

func TestRandomSampleMissesIntoPaddingApex(t *testing.T) {
	r := require.New(t)
	caps := testCaps()

	leaves := []LeafEntry[[]byte]{
		{Index: idxAt(4, 0), Value: leafValue(1)},
	}
	tree, err := Build(4, leaves, caps)
	r.NoError(err)
	root, err := tree.Root()
	r.NoError(err)

	pp := paddingProvable()
	// Index 15 shares nothing with leaf 0 below the root, so the descent
	// stops immediately at the root's right child, a whole empty subtree.
	query := idxAt(4, 15)
	proof, err := RandomSample[[]byte, []byte, []byte](tree, query, &pp)
	r.NoError(err)
	r.Equal(TagPadding, proof.Tag)
	r.NotNil(proof.PaddingProof)
	r.True(proof.Target.IsAncestorOf(query))

	ok, err := proof.Verify(query, proofCaps(), &pp, root)
	r.NoError(err)
	r.True(ok)
}

func TestRandomSampleVerifyRejectsTargetNotCoveringQuery(t *testing.T) {
	r := require.New(t)
	caps := testCaps()

	leaves := []LeafEntry[[]byte]{
		{Index: idxAt(4, 0), Value: leafValue(1)},
	}
	tree, err := Build(4, leaves, caps)
	r.NoError(err)
	root, err := tree.Root()
	r.NoError(err)

	pp := paddingProvable()
	proof, err := RandomSample[[]byte, []byte, []byte](tree, idxAt(4, 15), &pp)
	r.NoError(err)

	_, err = proof.Verify(idxAt(4, 0), proofCaps(), &pp, root)
	r.ErrorIs(err, ErrInvalidProof)
}

func TestRandomSampleWithoutPaddingCapabilityErrorsOnMiss(t *testing.T) {
	r := require.New(t)
	caps := testCaps()
	leaves := []LeafEntry[[]byte]{
		{Index: idxAt(4, 0), Value: leafValue(1)},
	}
	tree, err := Build(4, leaves, caps)
	r.NoError(err)

	_, err = RandomSample[[]byte, []byte, []byte](tree, idxAt(4, 15), nil)
	r.Error(err)
}

func TestRandomSampleDistinguishesPaddingApexAtLeafHeightFromRealLeaf(t *testing.T) {
	r := require.New(t)
	caps := testCaps()

	// Height 2, single leaf at 0b00: the sibling subtree rooted at 0b01 is
	// a single empty leaf position, so its padding apex is materialized
	// at leaf height too — the exact position HasLeaf/RandomSample must
	// not mistake for a real leaf.
	leaves := []LeafEntry[[]byte]{
		{Index: idxAt(2, 0), Value: leafValue(1)},
	}
	tree, err := Build(2, leaves, caps)
	r.NoError(err)
	root, err := tree.Root()
	r.NoError(err)

	r.False(tree.HasLeaf(idxAt(2, 1)), "idx 1 is a padding apex stored at leaf height, not a real leaf")
	r.True(tree.HasLeaf(idxAt(2, 0)))

	pp := paddingProvable()
	query := idxAt(2, 1)
	proof, err := RandomSample[[]byte, []byte, []byte](tree, query, &pp)
	r.NoError(err)
	r.Equal(TagPadding, proof.Tag)
	r.NotNil(proof.PaddingProof)

	ok, err := proof.Verify(query, proofCaps(), &pp, root)
	r.NoError(err)
	r.True(ok)

	// Requesting an inclusion proof for the same padding-at-leaf-height
	// position must report absent, not fabricate a proof for it.
	absent, err := GenerateInclusion(tree, []TreeIndex{idxAt(2, 1)})
	r.NoError(err)
	r.Nil(absent)
}
