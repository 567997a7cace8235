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
	"errors"
	"fmt"

	"github.com/statetrie/statetrie/backend/nodestore"
	"github.com/statetrie/statetrie/common"
)

// Commit writes the encoding of every node of this trie referenced by its hash
// to the given store and returns the root hash. Nodes embedded in their
// parent's encoding are not stored separately. The root node is always stored,
// unless the trie is empty.
func (t *Trie) Commit(store nodestore.NodeStore) (common.Hash, error) {
	if isEmptyNode(t.getRoot()) {
		return EmptyNodeHash, nil
	}
	data, err := encodeNode(t.getRoot(), store.Put)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to store trie nodes: %w", err)
	}
	hash := common.Keccak256(data)
	if err := store.Put(hash, data); err != nil {
		return common.Hash{}, fmt.Errorf("failed to store root node: %w", err)
	}
	if err := store.Flush(); err != nil {
		return common.Hash{}, fmt.Errorf("failed to flush node store: %w", err)
	}
	return hash, nil
}

// LoadTrie restores the trie with the given root hash from the given store.
// All nodes are loaded eagerly and verified against their hashes.
func LoadTrie(store nodestore.NodeStore, root common.Hash) (*Trie, error) {
	if root == EmptyNodeHash {
		return NewTrie(), nil
	}
	node, err := loadNode(store, root)
	if err != nil {
		return nil, err
	}
	return &Trie{root: node}, nil
}

func loadNode(store nodestore.NodeStore, hash common.Hash) (Node, error) {
	data, err := store.Get(hash)
	if err != nil {
		return nil, fmt.Errorf("failed to load node %v: %w", hash, err)
	}
	if got := common.Keccak256(data); got != hash {
		return nil, fmt.Errorf("%w: expected %v, got %v", ErrHashMismatch, hash, got)
	}
	node, err := DecodeNode(data, func(child common.Hash) (Node, error) {
		return loadNode(store, child)
	})
	if err != nil {
		return nil, errors.Join(fmt.Errorf("failed to decode node %v", hash), err)
	}
	return node, nil
}
