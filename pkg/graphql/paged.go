package graphql

import (
	"encoding/json"

	"github.com/gustavclausen/github-api-fetcher/pkg/apierror"
)

// CursorVariable is the query variable paged requests continue from.
// Paged queries declare it as "$cursor: String".
const CursorVariable = "cursor"

// PageInfoFragment selects the page info of a connection. GitHub's
// endCursor is aliased to cursor so it decodes straight into PageInfo.
var PageInfoFragment = NewFragment("pageInfo", "PageInfo",
	Field{Name: "hasNextPage"},
	Field{Name: "endCursor", Alias: "cursor"},
)

// PageInfo describes the page just received.
type PageInfo struct {
	HasNextPage bool    `json:"hasNextPage"`
	Cursor      *string `json:"cursor"`
}

// PagedRequest is a Request that spans several round trips. After each
// ParseResponse the request's variables already point at the next page.
//
// A PagedRequest belongs to one logical query and one caller. Reusing it for
// another query, or from two goroutines, is not supported.
type PagedRequest[T any] interface {
	Request[[]T]
	HasNextPage() bool
}

// Pager holds the cursor state of a paged request. Concrete paged requests
// embed it and call Update from ParseResponse.
type Pager struct {
	variables map[string]any
	pageInfo  *PageInfo
}

// NewPager returns a pager in its initial state, before any page is fetched.
func NewPager(variables map[string]any) *Pager {
	return &Pager{variables: copyVariables(variables)}
}

// Variables returns the variables for the next send, including the cursor
// once a page with a continuation has been parsed.
func (p *Pager) Variables() map[string]any { return p.variables }

// PageInfo returns the info of the last parsed page, or nil before the first.
func (p *Pager) PageInfo() *PageInfo { return p.pageInfo }

// HasNextPage reports whether the last parsed page announced another one.
// It is false before any page has been parsed.
func (p *Pager) HasNextPage() bool {
	return p.pageInfo != nil && p.pageInfo.HasNextPage
}

// Update records the page info of a parsed response and arms the variables
// for the next page. A nil info leaves the state untouched.
func (p *Pager) Update(info *PageInfo) {
	if info == nil {
		return
	}
	p.pageInfo = info
	p.advanceCursor()
}

func (p *Pager) advanceCursor() {
	if p.pageInfo == nil {
		panic("graphql: cursor advanced before page info was set")
	}
	if p.pageInfo.Cursor != nil {
		p.variables[CursorVariable] = *p.pageInfo.Cursor
	}
}

// Connection is the decode shape of a GitHub connection selected with
// nodes and the pageInfo fragment.
type Connection[N any] struct {
	Nodes    []N       `json:"nodes"`
	PageInfo *PageInfo `json:"pageInfo"`
}

// PagedQuery is a PagedRequest over a connection at a fixed path. Each node
// is decoded into N and mapped by convert.
type PagedQuery[N, T any] struct {
	*Pager
	query   string
	path    []string
	convert func(N) T
}

// NewPagedQuery builds a PagedQuery. path leads from the response data to the
// connection object, e.g. "user", "repositories".
func NewPagedQuery[N, T any](query string, variables map[string]any, convert func(N) T, path ...string) *PagedQuery[N, T] {
	return &PagedQuery[N, T]{
		Pager:   NewPager(variables),
		query:   query,
		path:    path,
		convert: convert,
	}
}

func (q *PagedQuery[N, T]) Query() string { return q.query }

// ParseResponse updates the cursor state and returns the elements of the page.
func (q *PagedQuery[N, T]) ParseResponse(data json.RawMessage) ([]T, error) {
	var conn Connection[N]
	if err := DecodeAt(data, &conn, q.path...); err != nil {
		return nil, err
	}

	q.Update(conn.PageInfo)

	if conn.Nodes == nil {
		return nil, apierror.NewParseError(data, "connection without nodes", nil)
	}

	items := make([]T, 0, len(conn.Nodes))
	for _, node := range conn.Nodes {
		items = append(items, q.convert(node))
	}
	return items, nil
}
