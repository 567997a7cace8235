// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package memory

import (
	"bytes"
	"fmt"
	"sort"
	"sync"

	"github.com/statetrie/statetrie/backend/nodestore"
	"github.com/statetrie/statetrie/common"
	"golang.org/x/exp/maps"
)

// Store is an in-memory nodestore.NodeStore implementation.
type Store struct {
	nodes  map[common.Hash][]byte
	closed bool
	mu     sync.RWMutex
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{nodes: map[common.Hash][]byte{}}
}

func (s *Store) Get(hash common.Hash) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, nodestore.ErrClosed
	}
	data, found := s.nodes[hash]
	if !found {
		return nil, fmt.Errorf("%w: %v", nodestore.ErrNotFound, hash)
	}
	return data, nil
}

func (s *Store) Put(hash common.Hash, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nodestore.ErrClosed
	}
	s.nodes[hash] = bytes.Clone(data)
	return nil
}

func (s *Store) Flush() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nodestore.ErrClosed
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.nodes = nil
	return nil
}

// Len returns the number of stored nodes.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}

// Hashes lists the hashes of all stored nodes in ascending order.
func (s *Store) Hashes() []common.Hash {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := maps.Keys(s.nodes)
	sort.Slice(res, func(i, j int) bool {
		return bytes.Compare(res[i][:], res[j][:]) < 0
	})
	return res
}
