package psmt

import "errors"

// Sentinel error kinds. Callers should check with errors.Is; batch
// operations (Build, GenerateInclusion's input validation) wrap one or
// more of these in a *multierror.Error so every violation surfaces at
// once instead of only the first one encountered.
var (
	// ErrInvalidHeight is returned for a tree/index height outside [1, MaxHeight].
	ErrInvalidHeight = errors.New("psmt: invalid height")

	// ErrAtRoot is returned when Parent/Sibling is requested on a
	// height-0 (root) index, which has no parent or sibling.
	ErrAtRoot = errors.New("psmt: index is already at the root")

	// ErrHeightMismatch is returned when an index's height differs from
	// the tree's height where a leaf-level index was required.
	ErrHeightMismatch = errors.New("psmt: index height does not match tree height")

	// ErrDuplicateIndex is returned when a build or batch-proof request
	// contains the same index twice.
	ErrDuplicateIndex = errors.New("psmt: duplicate index")

	// ErrBytesNotEnough is returned when a codec cursor reaches the end
	// of the buffer before decoding completes.
	ErrBytesNotEnough = errors.New("psmt: not enough bytes to decode")

	// ErrTrailingBytes is returned when a whole-buffer decode finishes
	// with unread bytes remaining.
	ErrTrailingBytes = errors.New("psmt: trailing bytes after decode")

	// ErrInvalidProof is returned for any structural mismatch in a
	// proof, or when a reconstructed root disagrees with the claimed
	// root.
	ErrInvalidProof = errors.New("psmt: invalid proof")

	// ErrInvalidPaddingWitness is returned when PaddingProvable.VerifyPadding
	// rejects a padding proof.
	ErrInvalidPaddingWitness = errors.New("psmt: invalid padding witness")

	// ErrNodeNotFound is an internal invariant violation: a position
	// that the Tree invariants guarantee to be stored was not found.
	// Seeing this escape the package indicates a bug in Build, not bad
	// caller input.
	ErrNodeNotFound = errors.New("psmt: node not found at position")
)
