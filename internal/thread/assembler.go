// Package thread turns a flat set of parent-referencing comments into
// the nested reply structure readers see. Everything here is pure and
// deterministic over a snapshot; no I/O, no live store lookups.
package thread

import (
	"sort"

	"inkwell/domain"
)

// MaxDisplayDepth is the default presentation cap: replies deeper than
// this many levels below root render at the cap instead of nesting
// further. Storage keeps the real ancestry.
const MaxDisplayDepth = 4

// Assemble builds the reply tree for one post's comments. Children
// attach in creation order, ties broken by id ascending, so the result
// is independent of input order. Comments whose parent is absent from
// the input (hard-deleted) are promoted to root with their own subtree
// intact rather than dropped.
func Assemble(comments []domain.Comment) []*domain.ThreadNode {
	if len(comments) == 0 {
		return []*domain.ThreadNode{}
	}

	ordered := make([]domain.Comment, len(comments))
	copy(ordered, comments)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].ID < ordered[j].ID
		}
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	present := make(map[int64]bool, len(ordered))
	for _, c := range ordered {
		present[c.ID] = true
	}

	var roots []domain.Comment
	children := make(map[int64][]domain.Comment)
	for _, c := range ordered {
		if c.ParentID == nil || !present[*c.ParentID] {
			roots = append(roots, c)
			continue
		}
		children[*c.ParentID] = append(children[*c.ParentID], c)
	}

	return attach(roots, children, 0)
}

func attach(comments []domain.Comment, children map[int64][]domain.Comment, depth int) []*domain.ThreadNode {
	nodes := make([]*domain.ThreadNode, 0, len(comments))
	for _, c := range comments {
		nodes = append(nodes, &domain.ThreadNode{
			Comment: c,
			Depth:   depth,
			Replies: attach(children[c.ID], children, depth+1),
		})
	}
	return nodes
}

// Count returns the number of comments in the tree, every node counted
// exactly once regardless of nesting depth.
func Count(nodes []*domain.ThreadNode) int {
	total := 0
	for _, n := range nodes {
		total += 1 + Count(n.Replies)
	}
	return total
}

// CapDepth returns a copy of the tree with nesting flattened at max:
// nodes deeper than max render as direct replies of their ancestor at
// max depth, in walk order. Deeper replies are repositioned, never
// dropped. The input tree is left untouched.
func CapDepth(nodes []*domain.ThreadNode, max int) []*domain.ThreadNode {
	out := make([]*domain.ThreadNode, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, capNode(n, max))
	}
	return out
}

func capNode(n *domain.ThreadNode, max int) *domain.ThreadNode {
	node := &domain.ThreadNode{Comment: n.Comment, Depth: n.Depth}
	if n.Depth >= max {
		node.Depth = max
		for _, d := range n.Replies {
			flatten(d, max, node)
		}
		return node
	}
	node.Replies = make([]*domain.ThreadNode, 0, len(n.Replies))
	for _, r := range n.Replies {
		node.Replies = append(node.Replies, capNode(r, max))
	}
	return node
}

func flatten(n *domain.ThreadNode, max int, into *domain.ThreadNode) {
	into.Replies = append(into.Replies, &domain.ThreadNode{Comment: n.Comment, Depth: max})
	for _, r := range n.Replies {
		flatten(r, max, into)
	}
}
