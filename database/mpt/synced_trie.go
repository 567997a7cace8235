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
	"io"
	"sync"

	"github.com/statetrie/statetrie/backend/nodestore"
	"github.com/statetrie/statetrie/common"
)

// SyncedTrie wraps a trie with a read/write lock. Updates are mutually
// exclusive while lookups and hashing may proceed concurrently.
type SyncedTrie struct {
	trie *Trie
	mu   sync.RWMutex
}

// WrapIntoSyncedTrie wraps the given trie. The trie must not be accessed
// directly afterwards.
func WrapIntoSyncedTrie(trie *Trie) *SyncedTrie {
	return &SyncedTrie{trie: trie}
}

func (s *SyncedTrie) Put(key []byte, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.trie.Put(key, value)
}

func (s *SyncedTrie) Get(key []byte) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.trie.Get(key)
}

func (s *SyncedTrie) Hash() common.Hash {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.trie.Hash()
}

func (s *SyncedTrie) Dump(out io.Writer) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.trie.Dump(out)
}

func (s *SyncedTrie) Check() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.trie.Check()
}

func (s *SyncedTrie) Commit(store nodestore.NodeStore) (common.Hash, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.trie.Commit(store)
}
