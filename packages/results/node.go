package results

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidPath is returned when an index path does not address a node.
var ErrInvalidPath = errors.New("invalid result path")

type Node struct {
	Name     string
	State    State
	Duration time.Duration
	Children []*Node
}

func New(name string) *Node {
	return &Node{Name: name}
}

// Add appends a NotRun child and returns it.
func (n *Node) Add(name string) *Node {
	child := New(name)
	n.Children = append(n.Children, child)
	return child
}

func (n *Node) AddNode(child *Node) {
	n.Children = append(n.Children, child)
}

func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// Len counts this node and all of its descendants.
func (n *Node) Len() int {
	count := 1
	for _, c := range n.Children {
		count += c.Len()
	}
	return count
}

// At returns the node reached by following path from n. An empty path
// returns n.
func (n *Node) At(path []int) (*Node, error) {
	cur := n
	for depth, idx := range path {
		if idx < 0 || idx >= len(cur.Children) {
			return nil, fmt.Errorf("%w: %v (index %d at depth %d)", ErrInvalidPath, path, idx, depth)
		}
		cur = cur.Children[idx]
	}
	return cur, nil
}

// Update sets the state and duration of the node at path.
func (n *Node) Update(path []int, state State, d time.Duration) error {
	node, err := n.At(path)
	if err != nil {
		return err
	}
	node.State = state
	node.Duration = d
	return nil
}

// Complete records d on the node at path and derives its state from its
// children. Nested parents are recomputed first.
func (n *Node) Complete(path []int, d time.Duration) error {
	node, err := n.At(path)
	if err != nil {
		return err
	}
	node.complete()
	node.Duration = d
	return nil
}

func (n *Node) complete() {
	if n.IsLeaf() {
		return
	}
	n.State = Passed
	for _, c := range n.Children {
		if !c.IsLeaf() {
			c.complete()
		}
		if c.State.IsFailed() {
			n.State = Failed(DependentFailure)
		}
	}
}

// Find follows a path of names starting with n's own name. At each level the
// first child with a matching name is taken.
func (n *Node) Find(names ...string) *Node {
	if len(names) == 0 || n.Name != names[0] {
		return nil
	}
	cur := n
	for _, name := range names[1:] {
		var next *Node
		for _, c := range cur.Children {
			if c.Name == name {
				next = c
				break
			}
		}
		if next == nil {
			return nil
		}
		cur = next
	}
	return cur
}

// Failed reports whether n or any descendant failed.
func (n *Node) Failed() bool {
	if n.State.IsFailed() {
		return true
	}
	for _, c := range n.Children {
		if c.Failed() {
			return true
		}
	}
	return false
}

// Walk visits n and its descendants depth first.
func (n *Node) Walk(fn func(depth int, node *Node)) {
	n.walk(0, fn)
}

func (n *Node) walk(depth int, fn func(int, *Node)) {
	fn(depth, n)
	for _, c := range n.Children {
		c.walk(depth+1, fn)
	}
}

// Leaves counts leaf nodes by state kind.
func (n *Node) Leaves() map[Kind]int {
	counts := map[Kind]int{}
	n.Walk(func(_ int, node *Node) {
		if node.IsLeaf() {
			counts[node.State.Kind]++
		}
	})
	return counts
}
