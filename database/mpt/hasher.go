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

// inlineThreshold is the encoding size below which a child node is embedded in
// its parent's encoding instead of being referenced by its hash.
const inlineThreshold = 32

// emptyStringRlpEncoded is the RLP encoding of an empty string, used to
// represent empty nodes and absent branch values.
var emptyStringRlpEncoded = rlp.Encode(rlp.String{})

// EmptyNodeHash is the hash of an empty trie.
var EmptyNodeHash = common.Keccak256(emptyStringRlpEncoded)

// hashedNodeHandler is informed about every node referenced by its hash while
// encoding a trie. The data is the node's encoding and must not be modified.
type hashedNodeHandler func(hash common.Hash, data []byte) error

// Raw produces the structural representation of the given node, ready to be
// RLP encoded. Children with an encoding of at least inlineThreshold bytes are
// represented by their hash, all others are embedded.
func Raw(node Node) rlp.Item {
	// Without a handler no error can occur.
	item, _ := toItem(node, nil)
	return item
}

// Serialize computes the canonical encoding of the given node.
func Serialize(node Node) []byte {
	data, _ := encodeNode(node, nil)
	return data
}

// Hash computes the hash of the given node. Unlike child references, the
// result is always a hash, even for nodes with a short encoding.
func Hash(node Node) common.Hash {
	if isEmptyNode(node) {
		return EmptyNodeHash
	}
	return common.Keccak256(Serialize(node))
}

func encodeNode(node Node, onHashed hashedNodeHandler) ([]byte, error) {
	item, err := toItem(node, onHashed)
	if err != nil {
		return nil, err
	}
	return rlp.EncodeInto(make([]byte, 0, rlp.EncodedLength(item)), item), nil
}

// toItem converts the given node into its RLP structure. Children are encoded
// exactly once, bottom-up.
func toItem(node Node, onHashed hashedNodeHandler) (rlp.Item, error) {
	switch n := node.(type) {
	case *LeafNode:
		return rlp.List{Items: []rlp.Item{
			rlp.String{Str: encodePartialPath(n.path, true, nil)},
			rlp.String{Str: n.value},
		}}, nil

	case *ExtensionNode:
		next, err := childReference(n.next, onHashed)
		if err != nil {
			return nil, err
		}
		return rlp.List{Items: []rlp.Item{
			rlp.String{Str: encodePartialPath(n.path, false, nil)},
			next,
		}}, nil

	case *BranchNode:
		items := make([]rlp.Item, 17)
		for i, child := range n.children {
			ref, err := childReference(child, onHashed)
			if err != nil {
				return nil, err
			}
			items[i] = ref
		}
		items[16] = rlp.String{Str: n.value}
		return rlp.List{Items: items}, nil
	}
	return rlp.Encoded{Data: emptyStringRlpEncoded}, nil
}

func childReference(child Node, onHashed hashedNodeHandler) (rlp.Item, error) {
	if isEmptyNode(child) {
		return rlp.Encoded{Data: emptyStringRlpEncoded}, nil
	}
	data, err := encodeNode(child, onHashed)
	if err != nil {
		return nil, err
	}
	if len(data) < inlineThreshold {
		return rlp.Encoded{Data: data}, nil
	}
	hash := common.Keccak256(data)
	if onHashed != nil {
		if err := onHashed(hash, data); err != nil {
			return nil, err
		}
	}
	return rlp.Hash{Hash: &hash}, nil
}
