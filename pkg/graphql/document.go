package graphql

import (
	"fmt"
	"sync"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// AnonymousOperation is reported for queries without an operation name.
const AnonymousOperation = "anonymous"

// CheckDocument parses query and verifies its fragments are self-consistent:
// every spread matches exactly one declaration and every declaration is
// spread somewhere. GitHub rejects documents that break either rule.
func CheckDocument(query string) error {
	doc, err := parser.ParseQuery(&ast.Source{Name: "query", Input: query})
	if err != nil {
		return fmt.Errorf("parse query: %w", err)
	}

	declared := make(map[string]int, len(doc.Fragments))
	for _, frag := range doc.Fragments {
		declared[frag.Name]++
		if declared[frag.Name] > 1 {
			return fmt.Errorf("fragment %q declared more than once", frag.Name)
		}
	}

	var spreads []string
	for _, op := range doc.Operations {
		spreads = collectSpreads(op.SelectionSet, spreads)
	}
	for _, frag := range doc.Fragments {
		spreads = collectSpreads(frag.SelectionSet, spreads)
	}

	used := make(map[string]bool, len(spreads))
	for _, name := range spreads {
		if declared[name] == 0 {
			return fmt.Errorf("spread ...%s has no fragment declaration", name)
		}
		used[name] = true
	}

	for _, frag := range doc.Fragments {
		if !used[frag.Name] {
			return fmt.Errorf("fragment %q declared but never spread", frag.Name)
		}
	}

	return nil
}

func collectSpreads(set ast.SelectionSet, spreads []string) []string {
	for _, sel := range set {
		switch s := sel.(type) {
		case *ast.Field:
			spreads = collectSpreads(s.SelectionSet, spreads)
		case *ast.InlineFragment:
			spreads = collectSpreads(s.SelectionSet, spreads)
		case *ast.FragmentSpread:
			spreads = append(spreads, s.Name)
		}
	}
	return spreads
}

var operationNames sync.Map

// OperationName returns the name of the first operation in query, used as a
// metric and log label. Unparseable and unnamed queries report
// AnonymousOperation.
func OperationName(query string) string {
	if name, ok := operationNames.Load(query); ok {
		return name.(string)
	}

	name := AnonymousOperation
	doc, err := parser.ParseQuery(&ast.Source{Input: query})
	if err == nil && len(doc.Operations) > 0 && doc.Operations[0].Name != "" {
		name = doc.Operations[0].Name
	}

	operationNames.Store(query, name)
	return name
}
