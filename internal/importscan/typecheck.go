package importscan

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// inTypeCheckingBlock reports whether n is lexically nested inside an
// `if <cond>:` block whose condition's leftmost name is the conventional
// TYPE_CHECKING sentinel (spec.md §4.3 step 4): `if TYPE_CHECKING:` and
// `if typing.TYPE_CHECKING:` both qualify.
func inTypeCheckingBlock(n *tree_sitter.Node, src []byte) bool {
	for _, anc := range ancestors(n) {
		if anc.Kind() != "if_statement" {
			continue
		}
		cond := anc.ChildByFieldName("condition")
		if cond == nil {
			continue
		}
		// Only the if-branch itself is guarded; elif/else clauses are not.
		if body := anc.ChildByFieldName("consequence"); body == nil || n.StartByte() < body.StartByte() || n.EndByte() > body.EndByte() {
			continue
		}
		if leftmostNameIsTypeChecking(cond, src) {
			return true
		}
	}
	return false
}

func leftmostNameIsTypeChecking(cond *tree_sitter.Node, src []byte) bool {
	n := cond
	for {
		switch n.Kind() {
		case "identifier":
			return nodeText(n, src) == "TYPE_CHECKING"
		case "attribute":
			obj := n.ChildByFieldName("object")
			attr := n.ChildByFieldName("attribute")
			if attr != nil && nodeText(attr, src) == "TYPE_CHECKING" {
				return true
			}
			if obj == nil {
				return false
			}
			n = obj
		default:
			if n.ChildCount() == 0 {
				return false
			}
			n = n.Child(0)
		}
	}
}
