package psmt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeIndexRoundTrips(t *testing.T) {
	r := require.New(t)

	idx := idxAt(12, 0xABC)
	buf := EncodeIndex(nil, idx)
	r.Len(buf, 2+2) // 2-byte height header + ceil(12/8)=2 path bytes

	decoded, err := DecodeIndex(buf)
	r.NoError(err)
	r.True(idx.Equal(decoded))
}

func TestDecodeIndexRejectsTrailingBytes(t *testing.T) {
	r := require.New(t)
	idx := idxAt(8, 0x5A)
	buf := EncodeIndex(nil, idx)
	buf = append(buf, 0x00)

	_, err := DecodeIndex(buf)
	r.ErrorIs(err, ErrTrailingBytes)
}

func TestDecodeIndexRejectsShortBuffer(t *testing.T) {
	r := require.New(t)
	idx := idxAt(16, 0x1234)
	buf := EncodeIndex(nil, idx)

	_, err := DecodeIndex(buf[:len(buf)-1])
	r.ErrorIs(err, ErrBytesNotEnough)
}

func TestEncodeDecodeProofRoundTrips(t *testing.T) {
	r := require.New(t)
	caps := testCaps()
	pcaps := proofCaps()

	leaves := []LeafEntry[[]byte]{
		{Index: idxAt(4, 0), Value: leafValue(1)},
		{Index: idxAt(4, 9), Value: leafValue(2)},
	}
	tree, err := Build(4, leaves, caps)
	r.NoError(err)
	root, err := tree.Root()
	r.NoError(err)

	proof, err := GenerateInclusion(tree, []TreeIndex{idxAt(4, 0), idxAt(4, 9)})
	r.NoError(err)

	buf := EncodeProof(nil, proof, pcaps)
	decoded, err := DecodeProof(buf, pcaps)
	r.NoError(err)

	ok, err := decoded.Verify(pcaps, root)
	r.NoError(err)
	r.True(ok)
}

func TestDecodeProofRejectsTrailingBytes(t *testing.T) {
	r := require.New(t)
	caps := testCaps()
	pcaps := proofCaps()

	tree, err := Build(4, []LeafEntry[[]byte]{{Index: idxAt(4, 0), Value: leafValue(1)}}, caps)
	r.NoError(err)
	proof, err := GenerateInclusion(tree, []TreeIndex{idxAt(4, 0)})
	r.NoError(err)

	buf := EncodeProof(nil, proof, pcaps)
	buf = append(buf, 0xFF)

	_, err = DecodeProof(buf, pcaps)
	r.ErrorIs(err, ErrTrailingBytes)
}

func TestEncodeDecodeSamplingProofRoundTrips(t *testing.T) {
	r := require.New(t)
	caps := testCaps()
	pcaps := proofCaps()
	pp := paddingProvable()

	tree, err := Build(4, []LeafEntry[[]byte]{{Index: idxAt(4, 0), Value: leafValue(1)}}, caps)
	r.NoError(err)
	root, err := tree.Root()
	r.NoError(err)

	query := idxAt(4, 15)
	proof, err := RandomSample[[]byte, []byte, []byte](tree, query, &pp)
	r.NoError(err)

	buf := EncodeSamplingProof(nil, proof, pcaps, pp)
	decoded, err := DecodeSamplingProof(buf, pcaps, pp)
	r.NoError(err)

	ok, err := decoded.Verify(query, pcaps, &pp, root)
	r.NoError(err)
	r.True(ok)
}

func TestEncodeDecodeSamplingProofRoundTripsForLeafTagWithNoWitness(t *testing.T) {
	r := require.New(t)
	caps := testCaps()
	pcaps := proofCaps()
	pp := paddingProvable()

	tree, err := Build(4, []LeafEntry[[]byte]{{Index: idxAt(4, 5), Value: leafValue(1)}}, caps)
	r.NoError(err)
	root, err := tree.Root()
	r.NoError(err)

	query := idxAt(4, 5)
	proof, err := RandomSample[[]byte, []byte, []byte](tree, query, &pp)
	r.NoError(err)
	r.Equal(TagLeaf, proof.Tag)
	r.Nil(proof.PaddingProof)

	buf := EncodeSamplingProof(nil, proof, pcaps, pp)
	decoded, err := DecodeSamplingProof(buf, pcaps, pp)
	r.NoError(err)
	r.Equal(TagLeaf, decoded.Tag)
	r.Nil(decoded.PaddingProof)

	ok, err := decoded.Verify(query, pcaps, &pp, root)
	r.NoError(err)
	r.True(ok)
}
