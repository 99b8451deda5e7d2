// Package anonymize produces short display codes that mask a candidate's identity on screen.
//
// Code is a display convenience, not a privacy control: it is trivially reversible and
// distinct ids may collide. Keyed derives labels from a secret with a one-way hash and is
// the option to use when labels must not be traceable back to ids.
package anonymize

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2b"
)

// Alphabet is the symbol set of every label.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// LabelLength is the number of characters in a label.
const LabelLength = 6

const (
	seedMultiplier = 12345
	seedIncrement  = 7
)

// unknownLabel is returned for ids outside the positive range.
const unknownLabel = "000000"

// Labeler maps a candidate id to its display label.
type Labeler interface {
	Label(id int64) string
}

// Code returns the 6-character label for id using the linear sequence
// seed = id*12345; emit Alphabet[seed%36]; seed = seed/36 + 7.
func Code(id int64) string {
	if id <= 0 {
		return unknownLabel
	}
	return encode(uint64(id) * seedMultiplier)
}

func encode(seed uint64) string {
	base := uint64(len(Alphabet))
	out := make([]byte, LabelLength)
	for i := range out {
		out[i] = Alphabet[seed%base]
		seed = seed/base + seedIncrement
	}
	return string(out)
}

// Sequential is the Labeler backed by Code.
type Sequential struct{}

// Label implements Labeler.
func (Sequential) Label(id int64) string {
	return Code(id)
}

// Keyed labels ids with a keyed BLAKE2b-256 digest of the id.
type Keyed struct {
	key []byte
}

// NewKeyed creates a keyed labeler. The key must be at most 64 bytes.
func NewKeyed(key []byte) (*Keyed, error) {
	// validate the key once so Label cannot fail later
	if _, err := blake2b.New256(key); err != nil {
		return nil, err
	}
	k := make([]byte, len(key))
	copy(k, key)
	return &Keyed{key: k}, nil
}

// Label implements Labeler.
func (k *Keyed) Label(id int64) string {
	if id <= 0 {
		return unknownLabel
	}
	h, _ := blake2b.New256(k.key)
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(id))
	h.Write(buf[:])
	sum := h.Sum(nil)

	base := byte(len(Alphabet))
	out := make([]byte, LabelLength)
	for i := range out {
		out[i] = Alphabet[sum[i]%base]
	}
	return string(out)
}
