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
	"io"

	"golang.org/x/exp/slices"
)

// This file defines the interface and implementation of all node types in a
// Merkle Patricia Trie (MPT). There are four different types of nodes:
//
//  - empty nodes     ... the root node of empty sub-tries
//  - leaf nodes      ... terminal nodes holding the remaining path of a key
//                        and its value
//  - extension nodes ... shortcuts for long-sequences of 1-child branches
//  - branch nodes    ... inner trie nodes splitting navigation paths, which
//                        may hold the value of a key ending at the branch
//
// Nodes form a tree. Every node is owned by exactly one parent slot, which is
// either a branch child or the next-field of an extension. Updates never
// modify the path of a node; instead, the affected sub-tree is rebuilt and the
// new sub-tree root is returned to the parent to be stored in its slot.

// Node defines an interface for all nodes in the MPT.
type Node interface {
	// GetValue retrieves the value stored for the given path in the sub-trie
	// rooted by this node. The path is the part of the key's nibbles not yet
	// consumed by parent nodes. Only exact matches are reported.
	GetValue(path []Nibble) ([]byte, bool)

	// SetValue updates the value stored for the given path in the sub-trie
	// rooted by this node. The result is the node to be stored in the
	// parent's slot in place of this node; it may be this node.
	SetValue(path []Nibble, value []byte) (Node, error)

	// Check verifies the structural invariants of the sub-trie rooted by
	// this node. The path is the sequence of nibbles leading to this node and
	// is only used for reporting.
	Check(path []Nibble) error

	// Dump prints a human-readable representation of the sub-trie rooted by
	// this node to the given writer.
	Dump(out io.Writer, indent string)
}

func isEmptyNode(node Node) bool {
	if node == nil {
		return true
	}
	_, ok := node.(EmptyNode)
	return ok
}

func checkPath(path []Nibble) error {
	for i, cur := range path {
		if !cur.isValid() {
			return fmt.Errorf("%w: %d at position %d", ErrInvalidNibble, cur, i)
		}
	}
	return nil
}

// ----------------------------------------------------------------------------
//                               Empty Node
// ----------------------------------------------------------------------------

// EmptyNode is the node type marking the absence of a sub-trie.
type EmptyNode struct{}

func (EmptyNode) GetValue([]Nibble) ([]byte, bool) {
	return nil, false
}

func (EmptyNode) SetValue(path []Nibble, value []byte) (Node, error) {
	if err := checkPath(path); err != nil {
		return nil, err
	}
	return NewLeafNode(path, value), nil
}

func (EmptyNode) Check([]Nibble) error {
	return nil
}

func (EmptyNode) Dump(out io.Writer, indent string) {
	fmt.Fprintf(out, "%sEmpty\n", indent)
}

// ----------------------------------------------------------------------------
//                               Leaf Node
// ----------------------------------------------------------------------------

// LeafNode is a terminal node holding the path suffix of a key not covered by
// its parents and the value associated to the key.
type LeafNode struct {
	path  []Nibble
	value []byte
}

// NewLeafNode creates a leaf for the given remaining path and value. Neither
// argument is copied. It panics if the path contains an invalid nibble.
func NewLeafNode(path []Nibble, value []byte) *LeafNode {
	if err := checkPath(path); err != nil {
		panic(fmt.Errorf("cannot create leaf: %w", err))
	}
	return &LeafNode{path: path, value: value}
}

// NewLeafNodeFromNibbleBytes creates a leaf for a path given as one nibble per
// byte. Unlike NewLeafNode, invalid nibbles are reported as an error.
func NewLeafNodeFromNibbleBytes(path []byte, value []byte) (*LeafNode, error) {
	nibbles, err := NibblesFromBytes(path)
	if err != nil {
		return nil, err
	}
	return NewLeafNode(nibbles, value), nil
}

// Path returns the remaining path covered by this leaf.
func (n *LeafNode) Path() []Nibble {
	return n.path
}

// Value returns the value stored in this leaf.
func (n *LeafNode) Value() []byte {
	return n.value
}

func (n *LeafNode) GetValue(path []Nibble) ([]byte, bool) {
	if !slices.Equal(n.path, path) {
		return nil, false
	}
	return n.value, true
}

func (n *LeafNode) SetValue(path []Nibble, value []byte) (Node, error) {
	if err := checkPath(path); err != nil {
		return nil, err
	}
	matched := GetCommonPrefixLength(n.path, path)
	if matched == len(n.path) && matched == len(path) {
		return NewLeafNode(n.path, value), nil
	}

	// The paths diverge or one is a prefix of the other, so a branch is
	// needed at the end of the common prefix.
	branch := NewBranchNode()
	if matched == len(n.path) {
		branch.setValue(n.value)
	} else {
		branch.children[n.path[matched]] = NewLeafNode(n.path[matched+1:], n.value)
	}
	if matched == len(path) {
		branch.setValue(value)
	} else {
		branch.children[path[matched]] = NewLeafNode(path[matched+1:], value)
	}

	if matched == 0 {
		return branch, nil
	}
	return NewExtensionNode(n.path[:matched:matched], branch), nil
}

func (n *LeafNode) Check(path []Nibble) error {
	if err := checkPath(n.path); err != nil {
		return fmt.Errorf("leaf at %s: %w", formatPath(path), err)
	}
	return nil
}

func (n *LeafNode) Dump(out io.Writer, indent string) {
	fmt.Fprintf(out, "%sLeaf (path: %s, hash: %v, value: %x)\n", indent, formatPath(n.path), Hash(n), n.value)
}

// ----------------------------------------------------------------------------
//                             Extension Node
// ----------------------------------------------------------------------------

// ExtensionNode represents a non-empty path segment shared by all keys in the
// sub-trie rooted by its next node.
type ExtensionNode struct {
	path []Nibble
	next Node
}

// NewExtensionNode creates an extension covering the given path segment. The
// path is not copied. It panics if the path is empty or contains an invalid
// nibble.
func NewExtensionNode(path []Nibble, next Node) *ExtensionNode {
	if len(path) == 0 {
		panic(fmt.Errorf("cannot create extension: %w", ErrEmptyExtensionPath))
	}
	if err := checkPath(path); err != nil {
		panic(fmt.Errorf("cannot create extension: %w", err))
	}
	return &ExtensionNode{path: path, next: next}
}

// Path returns the path segment covered by this extension.
func (n *ExtensionNode) Path() []Nibble {
	return n.path
}

// Next returns the node reached after consuming this extension's path.
func (n *ExtensionNode) Next() Node {
	return n.next
}

func (n *ExtensionNode) GetValue(path []Nibble) ([]byte, bool) {
	if !IsPrefixOf(n.path, path) {
		return nil, false
	}
	return n.next.GetValue(path[len(n.path):])
}

func (n *ExtensionNode) SetValue(path []Nibble, value []byte) (Node, error) {
	if err := checkPath(path); err != nil {
		return nil, err
	}
	matched := GetCommonPrefixLength(n.path, path)
	if matched == len(n.path) {
		next, err := n.next.SetValue(path[matched:], value)
		if err != nil {
			return nil, err
		}
		n.next = next
		return n, nil
	}

	// The extension has to be split at the end of the common prefix.
	branch := NewBranchNode()
	if remaining := n.path[matched+1:]; len(remaining) == 0 {
		branch.children[n.path[matched]] = n.next
	} else {
		branch.children[n.path[matched]] = NewExtensionNode(remaining, n.next)
	}

	switch {
	case matched < len(path):
		branch.children[path[matched]] = NewLeafNode(path[matched+1:], value)
	case matched == len(path):
		branch.setValue(value)
	default:
		return nil, fmt.Errorf("%w: matched %d nibbles of a path of length %d", ErrInconsistentState, matched, len(path))
	}

	if matched == 0 {
		return branch, nil
	}
	return NewExtensionNode(n.path[:matched:matched], branch), nil
}

func (n *ExtensionNode) Check(path []Nibble) error {
	errs := []error{}
	if len(n.path) == 0 {
		errs = append(errs, fmt.Errorf("extension at %s has an empty path", formatPath(path)))
	}
	if err := checkPath(n.path); err != nil {
		errs = append(errs, fmt.Errorf("extension at %s: %w", formatPath(path), err))
	}
	if _, ok := n.next.(*BranchNode); !ok {
		errs = append(errs, fmt.Errorf("extension at %s is followed by %T instead of a branch", formatPath(path), n.next))
	}
	if n.next != nil {
		if err := n.next.Check(append(slices.Clip(path), n.path...)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (n *ExtensionNode) Dump(out io.Writer, indent string) {
	fmt.Fprintf(out, "%sExtension (path: %s, hash: %v):\n", indent, formatPath(n.path), Hash(n))
	n.next.Dump(out, indent+"  ")
}

// ----------------------------------------------------------------------------
//                               Branch Node
// ----------------------------------------------------------------------------

// BranchNode is an inner node with one child slot per nibble. It also holds
// the value of the key ending exactly at this branch, if there is one.
type BranchNode struct {
	children [16]Node
	value    []byte
	hasValue bool
}

// NewBranchNode creates a branch without children and value.
func NewBranchNode() *BranchNode {
	res := &BranchNode{}
	for i := range res.children {
		res.children[i] = EmptyNode{}
	}
	return res
}

// Child returns the node in the slot of the given nibble.
func (n *BranchNode) Child(nibble Nibble) Node {
	if !nibble.isValid() {
		return EmptyNode{}
	}
	if child := n.children[nibble]; child != nil {
		return child
	}
	return EmptyNode{}
}

// Value returns the value of the key ending at this branch, if present.
func (n *BranchNode) Value() ([]byte, bool) {
	return n.value, n.hasValue
}

func (n *BranchNode) setValue(value []byte) {
	n.value = value
	n.hasValue = true
}

func (n *BranchNode) GetValue(path []Nibble) ([]byte, bool) {
	if len(path) == 0 {
		return n.Value()
	}
	return n.Child(path[0]).GetValue(path[1:])
}

func (n *BranchNode) SetValue(path []Nibble, value []byte) (Node, error) {
	if len(path) == 0 {
		n.setValue(value)
		return n, nil
	}
	if !path[0].isValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidNibble, path[0])
	}
	next, err := n.Child(path[0]).SetValue(path[1:], value)
	if err != nil {
		return nil, err
	}
	n.children[path[0]] = next
	return n, nil
}

func (n *BranchNode) Check(path []Nibble) error {
	errs := []error{}
	numChildren := 0
	for i, child := range n.children {
		if isEmptyNode(child) {
			continue
		}
		numChildren++
		if err := child.Check(append(slices.Clip(path), Nibble(i))); err != nil {
			errs = append(errs, err)
		}
	}
	if numChildren == 0 {
		errs = append(errs, fmt.Errorf("branch at %s has no children", formatPath(path)))
	}
	if numChildren == 1 && !n.hasValue {
		errs = append(errs, fmt.Errorf("branch at %s has a single child and no value", formatPath(path)))
	}
	return errors.Join(errs...)
}

func (n *BranchNode) Dump(out io.Writer, indent string) {
	if n.hasValue {
		fmt.Fprintf(out, "%sBranch (hash: %v, value: %x):\n", indent, Hash(n), n.value)
	} else {
		fmt.Fprintf(out, "%sBranch (hash: %v):\n", indent, Hash(n))
	}
	for i, child := range n.children {
		if isEmptyNode(child) {
			continue
		}
		child.Dump(out, fmt.Sprintf("%s  %v ", indent, Nibble(i)))
	}
}
