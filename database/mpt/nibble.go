// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package mpt

import (
	"fmt"
	"strings"
)

// Nibble is a 4-bit unsigned integer in the range 0-F. It is a single letter
// used to navigate in the MPT structure.
type Nibble byte

// Rune converts a Nibble in a hexa-decimal rune (0-9a-f).
func (n Nibble) Rune() rune {
	if n < 10 {
		return rune('0' + n)
	} else if n < 16 {
		return rune('a' + n - 10)
	} else {
		return '?'
	}
}

// String converts a Nibble in a hexa-decimal string (0-9a-f).
func (n Nibble) String() string {
	return string(n.Rune())
}

func (n Nibble) isValid() bool {
	return n < 16
}

// ToNibbles converts the given key into the path used to navigate the trie.
// Each byte is split into two nibbles, the high nibble first.
func ToNibbles(key []byte) []Nibble {
	res := make([]Nibble, len(key)*2)
	parseNibbles(res, key)
	return res
}

func parseNibbles(dst []Nibble, src []byte) {
	for i := 0; i < len(src); i++ {
		dst[2*i] = Nibble(src[i] >> 4)
		dst[2*i+1] = Nibble(src[i] & 0xF)
	}
}

// NibblesFromBytes interprets each of the given bytes as a single nibble.
// Values outside the range 0-15 are rejected.
func NibblesFromBytes(raw []byte) ([]Nibble, error) {
	res := make([]Nibble, len(raw))
	for i, cur := range raw {
		if !Nibble(cur).isValid() {
			return nil, fmt.Errorf("%w: %d at position %d", ErrInvalidNibble, cur, i)
		}
		res[i] = Nibble(cur)
	}
	return res, nil
}

// HexPrefixed adds the hex-prefix flag nibbles to the given path. The result
// always has an even length. The first nibble encodes whether the path has an
// odd length (+1) and whether it belongs to a leaf node (+2). For even paths
// a zero padding nibble follows the flag.
func HexPrefixed(path []Nibble, isLeaf bool) []Nibble {
	var flag Nibble
	if isLeaf {
		flag = 2
	}
	var res []Nibble
	if len(path)%2 == 1 {
		res = make([]Nibble, 0, len(path)+1)
		res = append(res, flag+1)
	} else {
		res = make([]Nibble, 0, len(path)+2)
		res = append(res, flag, 0)
	}
	return append(res, path...)
}

// NibblesToBytes packs pairs of nibbles into bytes, the first nibble of each
// pair forming the high half. The path must have an even length, which is
// guaranteed for results of HexPrefixed.
func NibblesToBytes(path []Nibble) ([]byte, error) {
	if len(path)%2 != 0 {
		return nil, fmt.Errorf("%w: got %d nibbles", ErrOddNibbleCount, len(path))
	}
	res := make([]byte, len(path)/2)
	for i := 0; i < len(path); i += 2 {
		if !path[i].isValid() || !path[i+1].isValid() {
			return nil, fmt.Errorf("%w: in pair at position %d", ErrInvalidNibble, i)
		}
		res[i/2] = byte(path[i])<<4 | byte(path[i+1])
	}
	return res, nil
}

// GetCommonPrefixLength computes the length of the common prefix of the given
// Nibble-slices.
func GetCommonPrefixLength(a, b []Nibble) int {
	lengthA := len(a)
	if lengthA > len(b) {
		return GetCommonPrefixLength(b, a)
	}
	for i := 0; i < lengthA; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return lengthA
}

// IsPrefixOf tests whether one Nibble slice is the prefix of another.
func IsPrefixOf(a, b []Nibble) bool {
	return len(a) <= len(b) && GetCommonPrefixLength(a, b) == len(a)
}

// encodePartialPath appends the compact form of the given path to target. The
// result equals NibblesToBytes(HexPrefixed(path, isLeaf)) but skips the
// intermediate allocation. All nibbles of the path must be valid.
func encodePartialPath(path []Nibble, isLeaf bool, target []byte) []byte {
	// Path encoding derived from Ethereum.
	// see https://github.com/ethereum/go-ethereum/blob/v1.12.0/trie/encoding.go#L37
	var flag byte
	if isLeaf {
		flag = 2
	}
	if len(path)%2 == 1 {
		target = append(target, (flag+1)<<4|byte(path[0]))
		path = path[1:]
	} else {
		target = append(target, flag<<4)
	}
	for i := 0; i < len(path); i += 2 {
		target = append(target, byte(path[i])<<4|byte(path[i+1]))
	}
	return target
}

// decodePartialPath reverts encodePartialPath. Besides the path, it reports
// whether the leaf flag was set.
func decodePartialPath(compact []byte) ([]Nibble, bool, error) {
	if len(compact) == 0 {
		return nil, false, fmt.Errorf("%w: empty path", ErrMalformedEncoding)
	}
	flag := compact[0] >> 4
	if flag > 3 {
		return nil, false, fmt.Errorf("%w: invalid path flag %d", ErrMalformedEncoding, flag)
	}
	isLeaf := flag&2 != 0
	odd := flag&1 != 0
	if !odd && compact[0]&0xF != 0 {
		return nil, false, fmt.Errorf("%w: non-zero padding nibble in even path", ErrMalformedEncoding)
	}
	res := make([]Nibble, 0, len(compact)*2)
	if odd {
		res = append(res, Nibble(compact[0]&0xF))
	}
	for _, cur := range compact[1:] {
		res = append(res, Nibble(cur>>4), Nibble(cur&0xF))
	}
	return res, isLeaf, nil
}

// formatPath renders a path as a compact string of hex digits.
func formatPath(path []Nibble) string {
	var builder strings.Builder
	builder.Grow(len(path))
	for _, cur := range path {
		builder.WriteRune(cur.Rune())
	}
	return builder.String()
}
