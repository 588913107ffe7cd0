package psmt

import (
	"encoding/binary"
	"fmt"
)

// This file implements the wire codec (component C7): canonical,
// self-delimiting binary encodings for TreeIndex, MerkleProof, and
// RandomSamplingProof. There is no general-purpose framing library in
// the reference stack for this — encoding/gob and encoding/json both
// produce formats far larger and less stable than the fixed-width,
// length-prefixed layout a Merkle proof wants, so the cursor here is
// hand-rolled against the standard library's encoding/binary, the same
// choice the capability records already make callers responsible for
// (SerializeValue/Serialize) one level up.
//
// Layout:
//
//	TreeIndex:    2 bytes height (BE) || ceil(height/8) path bytes
//	MerkleProof:  2 bytes height (BE)
//	              4 bytes leaf count N (BE)
//	              N encoded TreeIndex (leaf indices, fixed width for the proof's height)
//	              N self-delimiting encoded P (leaf values)
//	              4 bytes sibling count M (BE)
//	              M encoded TreeIndex (sibling indices)
//	              M self-delimiting encoded P (sibling values)
//	RandomSamplingProof:
//	              encoded TreeIndex (Target)
//	              1 byte tag (0 = LEAF, 1 = PADDING)
//	              self-delimiting encoded P (Value)
//	              self-delimiting encoded PP, present iff tag == PADDING
//	              encoded MerkleProof (Inclusion)
//
// The padding witness has no wire presence flag of its own: its presence is
// entirely a function of the tag byte, so a decoder can never read a
// witness flag that disagrees with the tag it was paired with.

// cursor is a read position into a byte slice, used by the Decode*
// functions below to chain sequential reads and report exactly how many
// bytes were consumed versus left over.
type cursor struct {
	buf []byte
	pos int
}

func (c *cursor) remaining() []byte {
	return c.buf[c.pos:]
}

func (c *cursor) take(n int) ([]byte, error) {
	if len(c.buf)-c.pos < n {
		return nil, ErrBytesNotEnough
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// treeIndexByteLen returns the number of path bytes a TreeIndex of the
// given height occupies on the wire.
func treeIndexByteLen(height uint16) int {
	return int((height + 7) / 8)
}

// EncodeIndex appends the canonical encoding of idx to dst and returns
// the result.
func EncodeIndex(dst []byte, idx TreeIndex) []byte {
	var hdr [2]byte
	binary.BigEndian.PutUint16(hdr[:], idx.Height)
	dst = append(dst, hdr[:]...)
	dst = append(dst, idx.Path[:treeIndexByteLen(idx.Height)]...)
	return dst
}

// decodeIndex reads one encoded TreeIndex from c.
func decodeIndex(c *cursor) (TreeIndex, error) {
	hdr, err := c.take(2)
	if err != nil {
		return TreeIndex{}, fmt.Errorf("decoding index height: %w", err)
	}
	height := binary.BigEndian.Uint16(hdr)
	if int(height) > MaxHeight {
		return TreeIndex{}, fmt.Errorf("%w: decoded height %d exceeds MaxHeight", ErrInvalidHeight, height)
	}
	n := treeIndexByteLen(height)
	pathBytes, err := c.take(n)
	if err != nil {
		return TreeIndex{}, fmt.Errorf("decoding index path: %w", err)
	}
	var idx TreeIndex
	idx.Height = height
	copy(idx.Path[:], pathBytes)
	return idx, nil
}

// DecodeIndex decodes a single TreeIndex from buf, requiring the whole
// buffer to be consumed.
func DecodeIndex(buf []byte) (TreeIndex, error) {
	c := &cursor{buf: buf}
	idx, err := decodeIndex(c)
	if err != nil {
		return TreeIndex{}, err
	}
	if c.pos != len(buf) {
		return TreeIndex{}, ErrTrailingBytes
	}
	return idx, nil
}

// EncodeProof appends the canonical encoding of p to dst, using caps to
// serialize the wire projection values, and returns the result.
func EncodeProof[P any](dst []byte, p *MerkleProof[P], caps ProofCapabilities[P]) []byte {
	var hdr [2]byte
	binary.BigEndian.PutUint16(hdr[:], p.Height)
	dst = append(dst, hdr[:]...)

	dst = appendUint32(dst, uint32(len(p.LeafIndices)))
	for _, idx := range p.LeafIndices {
		dst = EncodeIndex(dst, idx)
	}
	for _, v := range p.LeafValues {
		dst = append(dst, caps.Serialize(v)...)
	}

	dst = appendUint32(dst, uint32(len(p.SiblingIndices)))
	for _, idx := range p.SiblingIndices {
		dst = EncodeIndex(dst, idx)
	}
	for _, v := range p.SiblingValues {
		dst = append(dst, caps.Serialize(v)...)
	}
	return dst
}

func appendUint32(dst []byte, v uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return append(dst, b[:]...)
}

func takeUint32(c *cursor) (uint32, error) {
	b, err := c.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// DecodeProof decodes a MerkleProof from buf, requiring the whole buffer
// to be consumed.
func DecodeProof[P any](buf []byte, caps ProofCapabilities[P]) (*MerkleProof[P], error) {
	c := &cursor{buf: buf}
	p, err := decodeProof(c, caps)
	if err != nil {
		return nil, err
	}
	if c.pos != len(buf) {
		return nil, ErrTrailingBytes
	}
	return p, nil
}

func decodeProof[P any](c *cursor, caps ProofCapabilities[P]) (*MerkleProof[P], error) {
	hdr, err := c.take(2)
	if err != nil {
		return nil, fmt.Errorf("decoding proof height: %w", err)
	}
	height := binary.BigEndian.Uint16(hdr)

	nLeaves, err := takeUint32(c)
	if err != nil {
		return nil, fmt.Errorf("decoding leaf count: %w", err)
	}
	leafIdx := make([]TreeIndex, nLeaves)
	for i := range leafIdx {
		idx, err := decodeIndex(c)
		if err != nil {
			return nil, fmt.Errorf("decoding leaf index %d: %w", i, err)
		}
		leafIdx[i] = idx
	}
	leafVal := make([]P, nLeaves)
	for i := range leafVal {
		v, n, err := caps.Deserialize(c.remaining())
		if err != nil {
			return nil, fmt.Errorf("decoding leaf value %d: %w", i, err)
		}
		leafVal[i] = v
		if _, err := c.take(n); err != nil {
			return nil, err
		}
	}

	nSibs, err := takeUint32(c)
	if err != nil {
		return nil, fmt.Errorf("decoding sibling count: %w", err)
	}
	sibIdx := make([]TreeIndex, nSibs)
	for i := range sibIdx {
		idx, err := decodeIndex(c)
		if err != nil {
			return nil, fmt.Errorf("decoding sibling index %d: %w", i, err)
		}
		sibIdx[i] = idx
	}
	sibVal := make([]P, nSibs)
	for i := range sibVal {
		v, n, err := caps.Deserialize(c.remaining())
		if err != nil {
			return nil, fmt.Errorf("decoding sibling value %d: %w", i, err)
		}
		sibVal[i] = v
		if _, err := c.take(n); err != nil {
			return nil, err
		}
	}

	return &MerkleProof[P]{
		Height:         height,
		LeafIndices:    leafIdx,
		LeafValues:     leafVal,
		SiblingIndices: sibIdx,
		SiblingValues:  sibVal,
	}, nil
}

// EncodeSamplingProof appends the canonical encoding of p to dst. Whether
// the padding witness is written is decided by p.Tag alone, not by a
// separate flag: callers must maintain RandomSample's own invariant that
// PaddingProof is non-nil exactly when Tag == TagPadding.
func EncodeSamplingProof[V, P, PP any](dst []byte, p *RandomSamplingProof[V, P, PP], caps ProofCapabilities[P], pp PaddingProvable[V, P, PP]) []byte {
	dst = EncodeIndex(dst, p.Target)
	dst = append(dst, byte(p.Tag))
	dst = append(dst, caps.Serialize(p.Value)...)
	if p.Tag == TagPadding {
		dst = append(dst, pp.SerializeProof(*p.PaddingProof)...)
	}
	dst = EncodeProof(dst, p.Inclusion, caps)
	return dst
}

// DecodeSamplingProof decodes a RandomSamplingProof from buf, requiring
// the whole buffer to be consumed.
func DecodeSamplingProof[V, P, PP any](buf []byte, caps ProofCapabilities[P], pp PaddingProvable[V, P, PP]) (*RandomSamplingProof[V, P, PP], error) {
	c := &cursor{buf: buf}

	target, err := decodeIndex(c)
	if err != nil {
		return nil, fmt.Errorf("decoding target: %w", err)
	}

	tagByte, err := c.take(1)
	if err != nil {
		return nil, fmt.Errorf("decoding tag: %w", err)
	}
	tag := SamplingTag(tagByte[0])
	if tag != TagLeaf && tag != TagPadding {
		return nil, fmt.Errorf("%w: unknown sampling tag %d", ErrInvalidProof, tagByte[0])
	}

	val, n, err := caps.Deserialize(c.remaining())
	if err != nil {
		return nil, fmt.Errorf("decoding value: %w", err)
	}
	if _, err := c.take(n); err != nil {
		return nil, err
	}

	// Presence of the padding witness is derived solely from tag, the same
	// way EncodeSamplingProof decided whether to write it — there is no
	// independent flag byte that could disagree with tag.
	var paddingProof *PP
	if tag == TagPadding {
		proof, n, err := pp.DeserializeProof(c.remaining())
		if err != nil {
			return nil, fmt.Errorf("decoding padding witness: %w", err)
		}
		if _, err := c.take(n); err != nil {
			return nil, err
		}
		paddingProof = &proof
	}

	inclusion, err := decodeProof(c, caps)
	if err != nil {
		return nil, fmt.Errorf("decoding inclusion proof: %w", err)
	}

	if c.pos != len(buf) {
		return nil, ErrTrailingBytes
	}

	return &RandomSamplingProof[V, P, PP]{
		Target:       target,
		Tag:          tag,
		Value:        val,
		PaddingProof: paddingProof,
		Inclusion:    inclusion,
	}, nil
}
