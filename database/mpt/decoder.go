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

	"github.com/statetrie/statetrie/common"
	"github.com/statetrie/statetrie/database/mpt/rlp"
)

// NodeResolver loads the node referenced by the given hash.
type NodeResolver func(hash common.Hash) (Node, error)

// DecodeNode reverts Serialize. Children referenced by their hash are obtained
// through the given resolver, which may be nil if the encoding contains inline
// children only. Decoded nodes do not reference the input data.
func DecodeNode(data []byte, resolve NodeResolver) (Node, error) {
	item, err := rlp.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedEncoding, err)
	}
	return decodeItem(item, resolve)
}

func decodeItem(item rlp.Item, resolve NodeResolver) (Node, error) {
	switch cur := item.(type) {
	case rlp.String:
		if len(cur.Str) != 0 {
			return nil, fmt.Errorf("%w: unexpected string of length %d", ErrMalformedEncoding, len(cur.Str))
		}
		return EmptyNode{}, nil
	case rlp.List:
		switch len(cur.Items) {
		case 2:
			return decodeShortNode(cur.Items, resolve)
		case 17:
			return decodeBranch(cur.Items, resolve)
		}
		return nil, fmt.Errorf("%w: list of %d items", ErrMalformedEncoding, len(cur.Items))
	}
	return nil, fmt.Errorf("%w: unsupported item %T", ErrMalformedEncoding, item)
}

// decodeShortNode decodes leaf and extension nodes, which are distinguished
// by the flag in their encoded path.
func decodeShortNode(items []rlp.Item, resolve NodeResolver) (Node, error) {
	compact, ok := items[0].(rlp.String)
	if !ok {
		return nil, fmt.Errorf("%w: path is not a string", ErrMalformedEncoding)
	}
	path, isLeaf, err := decodePartialPath(compact.Str)
	if err != nil {
		return nil, err
	}
	if isLeaf {
		value, ok := items[1].(rlp.String)
		if !ok {
			return nil, fmt.Errorf("%w: leaf value is not a string", ErrMalformedEncoding)
		}
		return NewLeafNode(path, bytes.Clone(value.Str)), nil
	}
	if len(path) == 0 {
		return nil, fmt.Errorf("%w: extension with empty path", ErrMalformedEncoding)
	}
	next, err := decodeReference(items[1], resolve)
	if err != nil {
		return nil, err
	}
	if _, ok := next.(*BranchNode); !ok {
		return nil, fmt.Errorf("%w: extension followed by %T", ErrMalformedEncoding, next)
	}
	return NewExtensionNode(path, next), nil
}

func decodeBranch(items []rlp.Item, resolve NodeResolver) (Node, error) {
	res := NewBranchNode()
	for i := 0; i < 16; i++ {
		child, err := decodeReference(items[i], resolve)
		if err != nil {
			return nil, err
		}
		res.children[i] = child
	}
	value, ok := items[16].(rlp.String)
	if !ok {
		return nil, fmt.Errorf("%w: branch value is not a string", ErrMalformedEncoding)
	}
	if len(value.Str) > 0 {
		res.setValue(bytes.Clone(value.Str))
	}
	return res, nil
}

// decodeReference decodes a child slot, which is either empty, a hash, or an
// embedded node encoding.
func decodeReference(item rlp.Item, resolve NodeResolver) (Node, error) {
	switch cur := item.(type) {
	case rlp.String:
		switch len(cur.Str) {
		case 0:
			return EmptyNode{}, nil
		case len(common.Hash{}):
			if resolve == nil {
				return nil, fmt.Errorf("%w: no resolver for hashed child %x", ErrMalformedEncoding, cur.Str)
			}
			var hash common.Hash
			copy(hash[:], cur.Str)
			return resolve(hash)
		}
		return nil, fmt.Errorf("%w: child reference of length %d", ErrMalformedEncoding, len(cur.Str))
	case rlp.List:
		if size := rlp.EncodedLength(cur); size >= inlineThreshold {
			return nil, fmt.Errorf("%w: embedded child of %d bytes", ErrMalformedEncoding, size)
		}
		return decodeItem(cur, resolve)
	}
	return nil, fmt.Errorf("%w: unsupported child item %T", ErrMalformedEncoding, item)
}
