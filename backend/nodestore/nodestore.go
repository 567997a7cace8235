// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package nodestore

import (
	"github.com/statetrie/statetrie/common"
)

//go:generate mockgen -source nodestore.go -destination nodestore_mocks.go -package nodestore

const (
	// ErrNotFound is reported when requesting a hash not present in a store.
	ErrNotFound = common.ConstError("node not found")

	// ErrClosed is reported for operations on a closed store.
	ErrClosed = common.ConstError("node store closed")
)

// NodeStore is a content-addressed store for encoded trie nodes. Each entry is
// keyed by the hash of its data, so an entry is never updated with different
// content.
//
// Implementations must be safe for concurrent use.
type NodeStore interface {
	// Get returns the data stored for the given hash or an error wrapping
	// ErrNotFound if there is none. The result must not be modified.
	Get(hash common.Hash) ([]byte, error)

	// Put stores the given data under the given hash. The data is copied if
	// the store retains it.
	Put(hash common.Hash, data []byte) error

	// Flush writes buffered modifications to the underlying storage.
	Flush() error

	// Close flushes and releases the store. Later calls to Get and Put fail
	// with ErrClosed.
	Close() error
}
