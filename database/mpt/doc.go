// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

/*
Package mpt implements an Ethereum compatible Merkle Patricia Trie.

Keys are split into nibbles and stored along paths of empty, leaf, extension
and branch nodes. Node encodings follow the hex-prefix and RLP conventions of
Ethereum, with children of less than 32 encoded bytes embedded in their parent.
Consequently, the root hash of a trie matches the root hash Ethereum clients
compute for the same content.

Tries are kept in memory. They may be written to and restored from a
nodestore.NodeStore using Commit and LoadTrie.

Todos:
  - support the removal of keys
  - load nodes lazily in LoadTrie
*/
package mpt
