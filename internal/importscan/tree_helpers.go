package importscan

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// nodeText returns the source text spanned by n.
func nodeText(n *tree_sitter.Node, src []byte) string {
	if n == nil {
		return ""
	}
	return n.Utf8Text(src)
}

// line returns n's 1-based source line.
func line(n *tree_sitter.Node) int {
	if n == nil {
		return 0
	}
	return int(n.StartPosition().Row) + 1
}

// walk calls fn for n and every descendant, pre-order.
func walk(n *tree_sitter.Node, fn func(*tree_sitter.Node)) {
	if n == nil {
		return
	}
	fn(n)
	count := n.ChildCount()
	for i := uint(0); i < count; i++ {
		walk(n.Child(i), fn)
	}
}

// ancestors returns n's chain of parents, innermost first.
func ancestors(n *tree_sitter.Node) []*tree_sitter.Node {
	var out []*tree_sitter.Node
	for p := n.Parent(); p != nil; p = p.Parent() {
		out = append(out, p)
	}
	return out
}

// precedingComment returns the comment node immediately before n at the
// same nesting level (the prior sibling, skipping nothing else), or nil.
func precedingComment(n *tree_sitter.Node) *tree_sitter.Node {
	parent := n.Parent()
	if parent == nil {
		return nil
	}
	count := parent.ChildCount()
	for i := uint(0); i < count; i++ {
		if c := parent.Child(i); c != nil && c.StartByte() == n.StartByte() && c.EndByte() == n.EndByte() {
			if i == 0 {
				return nil
			}
			prev := parent.Child(i - 1)
			if prev != nil && prev.Kind() == "comment" {
				return prev
			}
			return nil
		}
	}
	return nil
}

// trailingComment returns a same-line comment following n, or nil. In the
// grammar this is n's next sibling when it starts on n's last line.
func trailingComment(n *tree_sitter.Node) *tree_sitter.Node {
	parent := n.Parent()
	if parent == nil {
		return nil
	}
	count := parent.ChildCount()
	for i := uint(0); i < count; i++ {
		if c := parent.Child(i); c != nil && c.StartByte() == n.StartByte() && c.EndByte() == n.EndByte() {
			if i+1 >= count {
				return nil
			}
			next := parent.Child(i + 1)
			if next != nil && next.Kind() == "comment" && int(next.StartPosition().Row) == int(n.EndPosition().Row) {
				return next
			}
			return nil
		}
	}
	return nil
}
