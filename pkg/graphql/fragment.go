// Package graphql provides the building blocks for GitHub GraphQL requests:
// fragments and their fields, the request contract, cursor pagination state
// and explicit-path response decoding.
package graphql

import "strings"

// Field is one selection inside a fragment. Argument is only rendered when
// the field has Children; leaf fields drop it.
type Field struct {
	Name     string
	Alias    string
	Children []Field
	Argument string
}

// Fragment is a named, reusable selection on a GitHub object type.
// Fragments are declared once and shared by every request that embeds them.
type Fragment struct {
	name   string
	on     string
	fields []Field
}

// NewFragment declares a fragment named name on the type on.
func NewFragment(name, on string, fields ...Field) *Fragment {
	return &Fragment{name: name, on: on, fields: fields}
}

// Name returns the fragment name used both in its declaration and in spreads.
func (f *Fragment) Name() string { return f.name }

// On returns the target type name.
func (f *Fragment) On() string { return f.on }

// Fields returns the fragment's fields in declaration order.
func (f *Fragment) Fields() []Field { return f.fields }

// Spread returns the spread token, e.g. "...pageInfo".
func (f *Fragment) Spread() string { return "..." + f.name }

// Render returns the fragment declaration in query syntax.
func (f *Fragment) Render() string {
	var b strings.Builder
	b.WriteString("fragment ")
	b.WriteString(f.name)
	b.WriteString(" on ")
	b.WriteString(f.on)
	b.WriteString(" {")
	renderFields(&b, f.fields, 1)
	b.WriteString("\n}")
	return b.String()
}

func (f *Fragment) String() string { return f.Render() }

func renderFields(b *strings.Builder, fields []Field, depth int) {
	indent := strings.Repeat("    ", depth)
	for _, field := range fields {
		b.WriteString("\n")
		b.WriteString(indent)
		if field.Alias != "" {
			b.WriteString(field.Alias)
			b.WriteString(": ")
		}
		b.WriteString(field.Name)

		if len(field.Children) == 0 {
			continue
		}
		if field.Argument != "" {
			b.WriteString("(")
			b.WriteString(field.Argument)
			b.WriteString(")")
		}
		b.WriteString(" {")
		renderFields(b, field.Children, depth+1)
		b.WriteString("\n")
		b.WriteString(indent)
		b.WriteString("}")
	}
}

// Document joins an operation with the declarations of the fragments it
// spreads, in the given order.
func Document(operation string, fragments ...*Fragment) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(operation))
	for _, f := range fragments {
		b.WriteString("\n\n")
		b.WriteString(f.Render())
	}
	return b.String()
}
