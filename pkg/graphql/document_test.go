package graphql

import (
	"fmt"
	"testing"
)

func TestCheckDocument(t *testing.T) {
	pageInfo := NewFragment("pageInfo", "PageInfo",
		Field{Name: "hasNextPage"},
		Field{Name: "endCursor", Alias: "cursor"},
	)

	tests := []struct {
		name    string
		query   string
		wantErr bool
	}{
		{
			name: "consistent document",
			query: fmt.Sprintf(`
				query Repos($login: String!, $cursor: String) {
					user(login: $login) {
						repositories(first: 100, after: $cursor) {
							pageInfo { %s }
						}
					}
				}
				%s`, pageInfo.Spread(), pageInfo),
		},
		{
			name: "spread without declaration",
			query: `
				query Repos($login: String!) {
					user(login: $login) { ...userProfile }
				}`,
			wantErr: true,
		},
		{
			name: "declaration never spread",
			query: fmt.Sprintf(`
				query Viewer { viewer { login } }
				%s`, pageInfo),
			wantErr: true,
		},
		{
			name: "duplicate declaration",
			query: fmt.Sprintf(`
				query Repos { viewer { repositories(first: 1) { pageInfo { ...pageInfo } } } }
				%s
				%s`, pageInfo, pageInfo),
			wantErr: true,
		},
		{
			name: "spread inside fragment",
			query: `
				query Viewer { viewer { ...outer } }
				fragment outer on User { followers { ...inner } }
				fragment inner on FollowerConnection { totalCount }`,
		},
		{
			name:    "syntax error",
			query:   `query Broken { viewer { login }`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckDocument(tt.query)
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckDocument() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestOperationName(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{query: `query GetUserProfile($username: String!) { user(login: $username) { login } }`, want: "GetUserProfile"},
		{query: `{ viewer { login } }`, want: AnonymousOperation},
		{query: `query {`, want: AnonymousOperation},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := OperationName(tt.query); got != tt.want {
				t.Errorf("OperationName() = %q, want %q", got, tt.want)
			}
			if got := OperationName(tt.query); got != tt.want {
				t.Errorf("OperationName() cached = %q, want %q", got, tt.want)
			}
		})
	}
}
