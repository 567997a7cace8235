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
	"github.com/statetrie/statetrie/common"
	"github.com/statetrie/statetrie/database/mpt/rlp"
)

// DeriveListRoot computes the root hash of a trie mapping the RLP encoded
// index of each item to the item itself. This is how Ethereum commits to the
// transactions and receipts of a block.
func DeriveListRoot(items [][]byte) (common.Hash, error) {
	trie := NewTrie()
	for i, item := range items {
		if err := trie.Put(ListKey(i), item); err != nil {
			return common.Hash{}, err
		}
	}
	return trie.Hash(), nil
}

// ListKey returns the key under which DeriveListRoot stores the item at the
// given index.
func ListKey(index int) []byte {
	item := rlp.Uint64{Value: uint64(index)}
	return rlp.EncodeInto(make([]byte, 0, rlp.EncodedLength(item)), item)
}
