// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package cache

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru"
	"github.com/statetrie/statetrie/backend/nodestore"
	"github.com/statetrie/statetrie/common"
)

// Store wraps a node store with an LRU cache of recently accessed nodes.
// Writes are passed through to the underlying store.
type Store struct {
	store nodestore.NodeStore
	cache *lru.Cache
}

// Wrap adds a cache retaining up to the given number of nodes to a store.
func Wrap(store nodestore.NodeStore, capacity int) (*Store, error) {
	cache, err := lru.New(capacity)
	if err != nil {
		return nil, fmt.Errorf("failed to create node cache: %w", err)
	}
	return &Store{store: store, cache: cache}, nil
}

func (s *Store) Get(hash common.Hash) ([]byte, error) {
	if data, found := s.cache.Get(hash); found {
		return data.([]byte), nil
	}
	data, err := s.store.Get(hash)
	if err != nil {
		return nil, err
	}
	s.cache.Add(hash, data)
	return data, nil
}

func (s *Store) Put(hash common.Hash, data []byte) error {
	if err := s.store.Put(hash, data); err != nil {
		return err
	}
	// Content addressing makes cached entries valid forever.
	s.cache.Add(hash, append([]byte(nil), data...))
	return nil
}

func (s *Store) Flush() error {
	return s.store.Flush()
}

func (s *Store) Close() error {
	s.cache.Purge()
	return s.store.Close()
}
