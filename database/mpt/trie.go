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
	"bytes"
	"fmt"
	"io"

	"github.com/statetrie/statetrie/common"
)

// Trie is an in-memory Merkle Patricia Trie mapping byte-string keys to
// byte-string values. The root hash of a trie depends only on its content, not
// on the order in which entries have been inserted.
//
// The zero value is an empty trie. A Trie is not synchronized. Any number of concurrent readers is supported as
// long as there is no concurrent writer. Use SyncedTrie for shared access.
type Trie struct {
	root Node
}

// NewTrie creates an empty trie.
func NewTrie() *Trie {
	return &Trie{root: EmptyNode{}}
}

// Put associates the given value with the given key, replacing any previous
// value. The value is copied and must not be empty. If an error is reported,
// the trie is unchanged.
func (t *Trie) Put(key []byte, value []byte) error {
	if len(value) == 0 {
		return fmt.Errorf("%w: key %x", ErrEmptyValue, key)
	}
	root, err := t.getRoot().SetValue(ToNibbles(key), bytes.Clone(value))
	if err != nil {
		return err
	}
	t.root = root
	return nil
}

// Get returns a copy of the value associated with the given key. The second
// result is false if the key is not present.
func (t *Trie) Get(key []byte) ([]byte, bool) {
	value, found := t.getRoot().GetValue(ToNibbles(key))
	if !found {
		return nil, false
	}
	return bytes.Clone(value), true
}

// Hash computes the root hash of this trie.
func (t *Trie) Hash() common.Hash {
	return Hash(t.getRoot())
}

// Root provides access to the root node of this trie. Nodes must not be
// modified by the caller.
func (t *Trie) Root() Node {
	return t.getRoot()
}

// getRoot treats the root of a zero-valued trie as empty.
func (t *Trie) getRoot() Node {
	if t.root == nil {
		return EmptyNode{}
	}
	return t.root
}

// Dump prints the node structure of this trie.
func (t *Trie) Dump(out io.Writer) {
	t.getRoot().Dump(out, "")
}

// Check verifies the structural invariants of all nodes of this trie.
func (t *Trie) Check() error {
	return t.getRoot().Check(nil)
}
