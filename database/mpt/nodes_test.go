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
	"errors"
	"fmt"
	"strings"
	"testing"

	"golang.org/x/exp/slices"
)

// ----------------------------------------------------------------------------
//                               Empty Node
// ----------------------------------------------------------------------------

func TestEmptyNode_GetValueReportsAbsence(t *testing.T) {
	for _, path := range [][]Nibble{nil, {}, {1}, {1, 2, 3}} {
		if _, found := (EmptyNode{}).GetValue(path); found {
			t.Errorf("empty node should not contain a value for %v", path)
		}
	}
}

func TestEmptyNode_SetValueCreatesLeaf(t *testing.T) {
	got, err := EmptyNode{}.SetValue([]Nibble{1, 2}, []byte("a"))
	if err != nil {
		t.Fatalf("failed to set value: %v", err)
	}
	want := NewLeafNode([]Nibble{1, 2}, []byte("a"))
	if !nodesEqual(got, want) {
		t.Errorf("unexpected result\ngot:\n%s\nwanted:\n%s", dump(got), dump(want))
	}
}

// ----------------------------------------------------------------------------
//                               Leaf Node
// ----------------------------------------------------------------------------

func TestLeafNode_GetValueRequiresExactMatch(t *testing.T) {
	leaf := NewLeafNode([]Nibble{1, 2, 3}, []byte("value"))
	tests := []struct {
		path  []Nibble
		found bool
	}{
		{[]Nibble{1, 2, 3}, true},
		{[]Nibble{}, false},
		{[]Nibble{1, 2}, false},
		{[]Nibble{1, 2, 3, 4}, false},
		{[]Nibble{1, 2, 4}, false},
	}
	for _, test := range tests {
		value, found := leaf.GetValue(test.path)
		if found != test.found {
			t.Errorf("unexpected result for %v, got %t, wanted %t", test.path, found, test.found)
		}
		if found && !bytes.Equal(value, []byte("value")) {
			t.Errorf("unexpected value for %v: %q", test.path, value)
		}
	}
}

func TestLeafNode_SetValue(t *testing.T) {
	old, value := []byte("old"), []byte("new")
	tests := map[string]struct {
		leafPath []Nibble
		path     []Nibble
		want     Node
	}{
		"full match": {
			leafPath: []Nibble{1, 2, 3},
			path:     []Nibble{1, 2, 3},
			want:     NewLeafNode([]Nibble{1, 2, 3}, value),
		},
		"no common prefix": {
			leafPath: []Nibble{1, 2},
			path:     []Nibble{3, 4},
			want: newBranch(nil, map[Nibble]Node{
				1: NewLeafNode([]Nibble{2}, old),
				3: NewLeafNode([]Nibble{4}, value),
			}),
		},
		"diverging paths": {
			leafPath: []Nibble{1, 2, 3},
			path:     []Nibble{1, 2, 4, 5},
			want: NewExtensionNode([]Nibble{1, 2}, newBranch(nil, map[Nibble]Node{
				3: NewLeafNode([]Nibble{}, old),
				4: NewLeafNode([]Nibble{5}, value),
			})),
		},
		"leaf path is prefix": {
			leafPath: []Nibble{1, 2},
			path:     []Nibble{1, 2, 3},
			want: NewExtensionNode([]Nibble{1, 2}, newBranch(old, map[Nibble]Node{
				3: NewLeafNode([]Nibble{}, value),
			})),
		},
		"new path is prefix": {
			leafPath: []Nibble{1, 2, 3},
			path:     []Nibble{1, 2},
			want: NewExtensionNode([]Nibble{1, 2}, newBranch(value, map[Nibble]Node{
				3: NewLeafNode([]Nibble{}, old),
			})),
		},
		"empty leaf path": {
			leafPath: []Nibble{},
			path:     []Nibble{1},
			want: newBranch(old, map[Nibble]Node{
				1: NewLeafNode([]Nibble{}, value),
			}),
		},
		"empty new path": {
			leafPath: []Nibble{1},
			path:     []Nibble{},
			want: newBranch(value, map[Nibble]Node{
				1: NewLeafNode([]Nibble{}, old),
			}),
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			leaf := NewLeafNode(test.leafPath, old)
			got, err := leaf.SetValue(test.path, value)
			if err != nil {
				t.Fatalf("failed to set value: %v", err)
			}
			if !nodesEqual(got, test.want) {
				t.Errorf("unexpected result\ngot:\n%s\nwanted:\n%s", dump(got), dump(test.want))
			}
			if !bytes.Equal(leaf.Value(), old) {
				t.Errorf("original leaf was modified")
			}
		})
	}
}

// ----------------------------------------------------------------------------
//                             Extension Node
// ----------------------------------------------------------------------------

func TestExtensionNode_GetValueConsumesPath(t *testing.T) {
	ext := NewExtensionNode([]Nibble{1, 2}, newBranch([]byte("a"), map[Nibble]Node{
		3: NewLeafNode([]Nibble{4}, []byte("b")),
	}))
	tests := []struct {
		path  []Nibble
		value []byte
	}{
		{[]Nibble{1, 2}, []byte("a")},
		{[]Nibble{1, 2, 3, 4}, []byte("b")},
		{[]Nibble{1}, nil},
		{[]Nibble{1, 3}, nil},
		{[]Nibble{1, 2, 3}, nil},
		{[]Nibble{}, nil},
	}
	for _, test := range tests {
		value, found := ext.GetValue(test.path)
		if found != (test.value != nil) {
			t.Errorf("unexpected presence for %v: %t", test.path, found)
		}
		if !bytes.Equal(value, test.value) {
			t.Errorf("unexpected value for %v, got %q, wanted %q", test.path, value, test.value)
		}
	}
}

func TestExtensionNode_SetValue(t *testing.T) {
	value := []byte("new")
	next := func() *BranchNode {
		return newBranch(nil, map[Nibble]Node{
			5: NewLeafNode([]Nibble{}, []byte("x")),
			6: NewLeafNode([]Nibble{}, []byte("y")),
		})
	}
	tests := map[string]struct {
		extPath []Nibble
		path    []Nibble
		want    Node
	}{
		"full match": {
			extPath: []Nibble{1, 2},
			path:    []Nibble{1, 2, 3},
			want: NewExtensionNode([]Nibble{1, 2}, newBranch(nil, map[Nibble]Node{
				3: NewLeafNode([]Nibble{}, value),
				5: NewLeafNode([]Nibble{}, []byte("x")),
				6: NewLeafNode([]Nibble{}, []byte("y")),
			})),
		},
		"full match ending at branch": {
			extPath: []Nibble{1, 2},
			path:    []Nibble{1, 2},
			want: NewExtensionNode([]Nibble{1, 2}, newBranch(value, map[Nibble]Node{
				5: NewLeafNode([]Nibble{}, []byte("x")),
				6: NewLeafNode([]Nibble{}, []byte("y")),
			})),
		},
		"split at first nibble without remainder": {
			extPath: []Nibble{1},
			path:    []Nibble{2, 3},
			want: newBranch(nil, map[Nibble]Node{
				1: next(),
				2: NewLeafNode([]Nibble{3}, value),
			}),
		},
		"split at first nibble with remainder": {
			extPath: []Nibble{1, 2, 3},
			path:    []Nibble{4},
			want: newBranch(nil, map[Nibble]Node{
				1: NewExtensionNode([]Nibble{2, 3}, next()),
				4: NewLeafNode([]Nibble{}, value),
			}),
		},
		"split in the middle": {
			extPath: []Nibble{1, 2, 3},
			path:    []Nibble{1, 2, 4, 4},
			want: NewExtensionNode([]Nibble{1, 2}, newBranch(nil, map[Nibble]Node{
				3: next(),
				4: NewLeafNode([]Nibble{4}, value),
			})),
		},
		"new path is prefix": {
			extPath: []Nibble{1, 2, 3},
			path:    []Nibble{1, 2},
			want: NewExtensionNode([]Nibble{1, 2}, newBranch(value, map[Nibble]Node{
				3: next(),
			})),
		},
		"empty new path": {
			extPath: []Nibble{1, 2},
			path:    []Nibble{},
			want: newBranch(value, map[Nibble]Node{
				1: NewExtensionNode([]Nibble{2}, next()),
			}),
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			ext := NewExtensionNode(test.extPath, next())
			got, err := ext.SetValue(test.path, value)
			if err != nil {
				t.Fatalf("failed to set value: %v", err)
			}
			if !nodesEqual(got, test.want) {
				t.Errorf("unexpected result\ngot:\n%s\nwanted:\n%s", dump(got), dump(test.want))
			}
		})
	}
}

func TestExtensionNode_SplitDoesNotModifyPathOfOriginalNode(t *testing.T) {
	path := []Nibble{1, 2, 3, 4}
	ext := NewExtensionNode(path, newBranch([]byte("a"), map[Nibble]Node{
		1: NewLeafNode([]Nibble{}, []byte("b")),
	}))
	if _, err := ext.SetValue([]Nibble{1, 2, 5}, []byte("c")); err != nil {
		t.Fatalf("failed to set value: %v", err)
	}
	if want := []Nibble{1, 2, 3, 4}; !slices.Equal(path, want) {
		t.Errorf("path was modified: %v", path)
	}
}

// ----------------------------------------------------------------------------
//                               Branch Node
// ----------------------------------------------------------------------------

func TestBranchNode_NewBranchIsEmpty(t *testing.T) {
	branch := NewBranchNode()
	for i := 0; i < 16; i++ {
		if !isEmptyNode(branch.Child(Nibble(i))) {
			t.Errorf("child %d of new branch is not empty", i)
		}
	}
	if _, found := branch.Value(); found {
		t.Errorf("new branch should not have a value")
	}
}

func TestBranchNode_GetValue(t *testing.T) {
	branch := newBranch([]byte("a"), map[Nibble]Node{
		2: NewLeafNode([]Nibble{3}, []byte("b")),
	})
	if value, found := branch.GetValue(nil); !found || string(value) != "a" {
		t.Errorf("unexpected branch value %q/%t", value, found)
	}
	if value, found := branch.GetValue([]Nibble{2, 3}); !found || string(value) != "b" {
		t.Errorf("unexpected child value %q/%t", value, found)
	}
	if _, found := branch.GetValue([]Nibble{1}); found {
		t.Errorf("empty slot should not contain a value")
	}
	if _, found := NewBranchNode().GetValue(nil); found {
		t.Errorf("branch without value should not report a value")
	}
}

func TestBranchNode_SetValue(t *testing.T) {
	branch := NewBranchNode()
	got, err := branch.SetValue([]Nibble{3, 4}, []byte("a"))
	if err != nil {
		t.Fatalf("failed to set value: %v", err)
	}
	got, err = got.SetValue(nil, []byte("b"))
	if err != nil {
		t.Fatalf("failed to set value: %v", err)
	}
	want := newBranch([]byte("b"), map[Nibble]Node{
		3: NewLeafNode([]Nibble{4}, []byte("a")),
	})
	if !nodesEqual(got, want) {
		t.Errorf("unexpected result\ngot:\n%s\nwanted:\n%s", dump(got), dump(want))
	}
}

func TestBranchNode_EmptyValueIsPresent(t *testing.T) {
	branch := NewBranchNode()
	if _, err := branch.SetValue(nil, []byte{}); err != nil {
		t.Fatalf("failed to set value: %v", err)
	}
	if value, found := branch.Value(); !found || len(value) != 0 {
		t.Errorf("empty value should be present, got %q/%t", value, found)
	}
}

// ----------------------------------------------------------------------------
//                               Checks
// ----------------------------------------------------------------------------

func TestNode_CheckAcceptsValidStructures(t *testing.T) {
	nodes := []Node{
		EmptyNode{},
		NewLeafNode([]Nibble{1, 2}, []byte("a")),
		newBranch(nil, map[Nibble]Node{
			1: NewLeafNode(nil, []byte("a")),
			2: NewLeafNode(nil, []byte("b")),
		}),
		newBranch([]byte("a"), map[Nibble]Node{
			1: NewLeafNode(nil, []byte("b")),
		}),
		NewExtensionNode([]Nibble{1}, newBranch([]byte("a"), map[Nibble]Node{
			1: NewLeafNode(nil, []byte("b")),
		})),
	}
	for _, node := range nodes {
		if err := node.Check(nil); err != nil {
			t.Errorf("unexpected error for\n%s: %v", dump(node), err)
		}
	}
}

func TestNode_CheckDetectsViolations(t *testing.T) {
	validBranch := func() *BranchNode {
		return newBranch(nil, map[Nibble]Node{
			1: NewLeafNode(nil, []byte("a")),
			2: NewLeafNode(nil, []byte("b")),
		})
	}
	tests := map[string]Node{
		"leaf with invalid nibble":       &LeafNode{path: []Nibble{1, 16}, value: []byte("a")},
		"extension with empty path":      &ExtensionNode{next: validBranch()},
		"extension with invalid nibble":  &ExtensionNode{path: []Nibble{17}, next: validBranch()},
		"extension followed by leaf":     NewExtensionNode([]Nibble{1}, NewLeafNode(nil, []byte("a"))),
		"branch without children":        newBranch([]byte("a"), nil),
		"branch with single child":       newBranch(nil, map[Nibble]Node{1: NewLeafNode(nil, []byte("a"))}),
		"violation in nested child":      newBranch(nil, map[Nibble]Node{1: validBranch(), 2: NewBranchNode()}),
		"violation behind the extension": NewExtensionNode([]Nibble{1}, newBranch(nil, map[Nibble]Node{3: validBranch()})),
	}
	for name, node := range tests {
		t.Run(name, func(t *testing.T) {
			if err := node.Check(nil); err == nil {
				t.Errorf("violation not detected in\n%s", dump(node))
			}
		})
	}
}

func TestNode_CheckReportsInvalidNibbles(t *testing.T) {
	node := newBranch(nil, map[Nibble]Node{
		1: &LeafNode{path: []Nibble{20}, value: []byte("a")},
		2: NewLeafNode(nil, []byte("b")),
	})
	if err := node.Check(nil); !errors.Is(err, ErrInvalidNibble) {
		t.Errorf("expected invalid nibble error, got %v", err)
	}
}

// ----------------------------------------------------------------------------
//                             Construction
// ----------------------------------------------------------------------------

func expectPanic(t *testing.T, want error, create func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		if r == nil {
			t.Fatalf("expected a panic")
		}
		err, ok := r.(error)
		if !ok || !errors.Is(err, want) {
			t.Errorf("unexpected panic, got %v, wanted %v", r, want)
		}
	}()
	create()
}

func TestLeafNode_InvalidNibblesAreRejected(t *testing.T) {
	expectPanic(t, ErrInvalidNibble, func() {
		NewLeafNode([]Nibble{0x11}, []byte("v"))
	})
	if _, err := NewLeafNodeFromNibbleBytes([]byte{0x11}, []byte("v")); !errors.Is(err, ErrInvalidNibble) {
		t.Errorf("expected invalid nibble error, got %v", err)
	}
}

func TestLeafNode_CanBeCreatedFromNibbleBytes(t *testing.T) {
	leaf, err := NewLeafNodeFromNibbleBytes([]byte{1, 15}, []byte("v"))
	if err != nil {
		t.Fatalf("failed to create leaf: %v", err)
	}
	if want := NewLeafNode([]Nibble{1, 15}, []byte("v")); !nodesEqual(leaf, want) {
		t.Errorf("unexpected leaf\ngot:\n%s\nwanted:\n%s", dump(leaf), dump(want))
	}
}

func TestExtensionNode_InvalidPathsAreRejected(t *testing.T) {
	next := newBranch([]byte("a"), map[Nibble]Node{1: NewLeafNode(nil, []byte("b"))})
	expectPanic(t, ErrEmptyExtensionPath, func() {
		NewExtensionNode(nil, next)
	})
	expectPanic(t, ErrInvalidNibble, func() {
		NewExtensionNode([]Nibble{1, 0x11}, next)
	})
}

func TestNode_SetValueRejectsInvalidNibbles(t *testing.T) {
	nodes := map[string]Node{
		"empty":  EmptyNode{},
		"leaf":   NewLeafNode([]Nibble{1, 2}, []byte("a")),
		"branch": newBranch([]byte("a"), map[Nibble]Node{1: NewLeafNode(nil, []byte("b"))}),
		"extension": NewExtensionNode([]Nibble{1}, newBranch([]byte("a"), map[Nibble]Node{
			1: NewLeafNode(nil, []byte("b")),
		})),
	}
	for name, node := range nodes {
		t.Run(name, func(t *testing.T) {
			before := dump(node)
			if _, err := node.SetValue([]Nibble{0x11}, []byte("v")); !errors.Is(err, ErrInvalidNibble) {
				t.Errorf("expected invalid nibble error, got %v", err)
			}
			if after := dump(node); after != before {
				t.Errorf("node was modified\nbefore:\n%s\nafter:\n%s", before, after)
			}
		})
	}
}

func TestBranchNode_InvalidNibbleHasNoChild(t *testing.T) {
	branch := newBranch([]byte("a"), map[Nibble]Node{1: NewLeafNode(nil, []byte("b"))})
	if _, found := branch.GetValue([]Nibble{0x11}); found {
		t.Errorf("invalid nibble should not lead to a value")
	}
}

// ----------------------------------------------------------------------------
//                               Dumping
// ----------------------------------------------------------------------------

func TestNode_DumpListsAllNodes(t *testing.T) {
	node := NewExtensionNode([]Nibble{0, 1}, newBranch([]byte("verb"), map[Nibble]Node{
		0: NewLeafNode([]Nibble{5, 0, 6}, []byte("coin")),
	}))
	out := dump(node)
	for _, want := range []string{
		"Extension (path: 01, hash: 0x",
		"  Branch (hash: 0x",
		"value: 76657262",
		"    0 Leaf (path: 506, hash: 0x",
		"value: 636f696e",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("dump does not contain %q:\n%s", want, out)
		}
	}
}

func TestNode_DumpOfEmptyNode(t *testing.T) {
	if got, want := dump(EmptyNode{}), "Empty\n"; got != want {
		t.Errorf("unexpected dump, got %q, wanted %q", got, want)
	}
}

// ----------------------------------------------------------------------------
//                               Utilities
// ----------------------------------------------------------------------------

// newBranch creates a branch with the given children. A nil value creates a
// branch without value.
func newBranch(value []byte, children map[Nibble]Node) *BranchNode {
	res := NewBranchNode()
	for i, child := range children {
		res.children[i] = child
	}
	if value != nil {
		res.setValue(value)
	}
	return res
}

func dump(node Node) string {
	var builder strings.Builder
	node.Dump(&builder, "")
	return builder.String()
}

// nodesEqual compares the structure and content of two node trees. Nil and
// empty slices are considered equal.
func nodesEqual(a, b Node) bool {
	if isEmptyNode(a) || isEmptyNode(b) {
		return isEmptyNode(a) && isEmptyNode(b)
	}
	switch x := a.(type) {
	case *LeafNode:
		y, ok := b.(*LeafNode)
		return ok && slices.Equal(x.path, y.path) && bytes.Equal(x.value, y.value)
	case *ExtensionNode:
		y, ok := b.(*ExtensionNode)
		return ok && slices.Equal(x.path, y.path) && nodesEqual(x.next, y.next)
	case *BranchNode:
		y, ok := b.(*BranchNode)
		if !ok || x.hasValue != y.hasValue || !bytes.Equal(x.value, y.value) {
			return false
		}
		for i := range x.children {
			if !nodesEqual(x.children[i], y.children[i]) {
				return false
			}
		}
		return true
	}
	panic(fmt.Sprintf("unsupported node type %T", a))
}
