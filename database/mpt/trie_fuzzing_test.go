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
	"testing"

	"github.com/statetrie/statetrie/common"

	"github.com/ethereum/go-ethereum/core/rawdb"
	gethtrie "github.com/ethereum/go-ethereum/trie"
)

// FuzzTrie_RandomPuts interprets the fuzzer input as a sequence of updates and
// compares the resulting trie with a shadow map and the Ethereum reference
// implementation.
//
// Each update is encoded as <key length><key><value length><value>, where the
// value length is taken modulo 64.
func FuzzTrie_RandomPuts(f *testing.F) {
	f.Add([]byte{})
	f.Add([]byte{3, 'd', 'o', 'g', 5, 'p', 'u', 'p', 'p', 'y'})
	f.Add([]byte{2, 'd', 'o', 4, 'v', 'e', 'r', 'b', 3, 'd', 'o', 'g', 5, 'p', 'u', 'p', 'p', 'y'})
	f.Add([]byte{1, 0x12, 1, 0xaa, 2, 0x12, 0x34, 40})

	f.Fuzz(func(t *testing.T, data []byte) {
		trie := NewTrie()
		reference := gethtrie.NewEmpty(gethtrie.NewDatabaseWithConfig(rawdb.NewMemoryDatabase(), &gethtrie.Config{}))
		shadow := map[string][]byte{}

		for len(data) > 0 {
			var key, value []byte
			key, data = readChunk(data, 0xff)
			value, data = readChunk(data, 63)
			// The reference implementation deletes keys on empty values.
			if len(value) == 0 {
				value = []byte{0}
			}
			if err := trie.Put(key, value); err != nil {
				t.Fatalf("failed to insert %x: %v", key, err)
			}
			if err := reference.Update(key, value); err != nil {
				t.Fatalf("failed to update reference: %v", err)
			}
			shadow[string(key)] = value
		}

		for key, want := range shadow {
			got, found := trie.Get([]byte(key))
			if !found || !bytes.Equal(got, want) {
				t.Errorf("unexpected value for %x, got %x, wanted %x", key, got, want)
			}
		}
		if err := trie.Check(); err != nil {
			t.Errorf("invalid trie: %v", err)
		}
		if got, want := trie.Hash(), common.Hash(reference.Hash()); got != want {
			t.Errorf("unexpected root hash, got %v, wanted %v", got, want)
		}
	})
}

// readChunk consumes a length prefix and up to that many subsequent bytes.
func readChunk(data []byte, maxLength int) ([]byte, []byte) {
	if len(data) == 0 {
		return nil, nil
	}
	length := int(data[0]) % (maxLength + 1)
	data = data[1:]
	if length > len(data) {
		length = len(data)
	}
	return data[:length], data[length:]
}
