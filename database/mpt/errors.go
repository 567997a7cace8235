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

import "github.com/statetrie/statetrie/common"

const (
	// ErrInvalidNibble is reported for values outside the range 0-15 where a
	// nibble is expected.
	ErrInvalidNibble = common.ConstError("invalid nibble value")

	// ErrEmptyExtensionPath is reported when an extension node without a path
	// segment is to be created.
	ErrEmptyExtensionPath = common.ConstError("extension with empty path")

	// ErrEmptyValue is reported when an empty value is to be stored in a
	// trie. The encoding of a branch does not distinguish an empty value from
	// an absent one.
	ErrEmptyValue = common.ConstError("empty value")

	// ErrOddNibbleCount is reported when an odd number of nibbles is to be
	// packed into bytes.
	ErrOddNibbleCount = common.ConstError("odd number of nibbles")

	// ErrInconsistentState signals a broken internal invariant of the trie.
	// It can not be caused by any input and indicates a bug.
	ErrInconsistentState = common.ConstError("inconsistent trie state")

	// ErrMalformedEncoding is reported when decoding node data that is not a
	// canonical node encoding.
	ErrMalformedEncoding = common.ConstError("malformed node encoding")

	// ErrHashMismatch is reported when loaded node data does not match the
	// hash it was requested by.
	ErrHashMismatch = common.ConstError("node hash mismatch")
)
