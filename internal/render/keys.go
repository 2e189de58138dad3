package render

import (
	"sort"
	"text/template/parse"
)

// ReferencedKeys returns the top-level value keys a template reads, sorted
// and unique. It recognizes .key, $.key and index . "key" references made
// with the root mapping as dot, in the main body and in every define block.
// Define bodies are assumed to be invoked with the root as dot. References
// inside with/range bodies, where dot is rebound, and keys read by included
// files or filters are not reported.
func ReferencedKeys(text string) ([]string, error) {
	trees := make(map[string]*parse.Tree)
	t := parse.New("keys")
	t.Mode = parse.SkipFuncCheck
	if _, err := t.Parse(text, "", "", trees); err != nil {
		return nil, err
	}
	trees[t.Name] = t

	seen := make(map[string]struct{})
	for _, tree := range trees {
		if tree.Root != nil {
			walkList(tree.Root, true, seen)
		}
	}

	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func walkList(list *parse.ListNode, rootDot bool, seen map[string]struct{}) {
	if list == nil {
		return
	}
	for _, n := range list.Nodes {
		walkNode(n, rootDot, seen)
	}
}

func walkNode(n parse.Node, rootDot bool, seen map[string]struct{}) {
	switch node := n.(type) {
	case *parse.ActionNode:
		walkPipe(node.Pipe, rootDot, seen)
	case *parse.IfNode:
		walkPipe(node.Pipe, rootDot, seen)
		walkList(node.List, rootDot, seen)
		walkList(node.ElseList, rootDot, seen)
	case *parse.RangeNode:
		walkPipe(node.Pipe, rootDot, seen)
		walkList(node.List, false, seen)
		walkList(node.ElseList, rootDot, seen)
	case *parse.WithNode:
		walkPipe(node.Pipe, rootDot, seen)
		walkList(node.List, false, seen)
		walkList(node.ElseList, rootDot, seen)
	case *parse.TemplateNode:
		walkPipe(node.Pipe, rootDot, seen)
	case *parse.ListNode:
		walkList(node, rootDot, seen)
	}
}

func walkPipe(pipe *parse.PipeNode, rootDot bool, seen map[string]struct{}) {
	if pipe == nil {
		return
	}
	for _, cmd := range pipe.Cmds {
		walkCommand(cmd, rootDot, seen)
	}
}

func walkCommand(cmd *parse.CommandNode, rootDot bool, seen map[string]struct{}) {
	if isIndexOfRoot(cmd, rootDot) {
		if s, ok := cmd.Args[2].(*parse.StringNode); ok {
			seen[s.Text] = struct{}{}
		}
	}
	for _, arg := range cmd.Args {
		walkArg(arg, rootDot, seen)
	}
}

// isIndexOfRoot matches `index . "key"` and `index $ "key"`.
func isIndexOfRoot(cmd *parse.CommandNode, rootDot bool) bool {
	if len(cmd.Args) < 3 {
		return false
	}
	ident, ok := cmd.Args[0].(*parse.IdentifierNode)
	if !ok || ident.Ident != "index" {
		return false
	}
	switch target := cmd.Args[1].(type) {
	case *parse.DotNode:
		return rootDot
	case *parse.VariableNode:
		return len(target.Ident) == 1 && target.Ident[0] == "$"
	}
	return false
}

func walkArg(arg parse.Node, rootDot bool, seen map[string]struct{}) {
	switch a := arg.(type) {
	case *parse.FieldNode:
		if rootDot && len(a.Ident) > 0 {
			seen[a.Ident[0]] = struct{}{}
		}
	case *parse.VariableNode:
		if len(a.Ident) > 1 && a.Ident[0] == "$" {
			seen[a.Ident[1]] = struct{}{}
		}
	case *parse.ChainNode:
		walkArg(a.Node, rootDot, seen)
	case *parse.PipeNode:
		walkPipe(a, rootDot, seen)
	}
}
