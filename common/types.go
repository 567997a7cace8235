// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package common

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Hash is a 256-bit digest, in this code base always a Keccak-256 hash.
type Hash [32]byte

// String renders the hash as a 0x-prefixed hex string.
func (h Hash) String() string {
	return "0x" + hex.EncodeToString(h[:])
}

// HashFromString parses a hex encoded hash. The 0x prefix is optional.
func HashFromString(s string) (Hash, error) {
	var res Hash
	data, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return res, fmt.Errorf("invalid hash %q: %w", s, err)
	}
	if len(data) != len(res) {
		return res, fmt.Errorf("invalid hash %q: expected %d bytes, got %d", s, len(res), len(data))
	}
	copy(res[:], data)
	return res, nil
}
