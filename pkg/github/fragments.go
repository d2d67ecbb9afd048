// Package github holds the GitHub domain: fragments, typed requests, models
// and the route facades that compose them.
package github

import (
	"slices"

	"github.com/gustavclausen/github-api-fetcher/pkg/graphql"
)

type field = graphql.Field

// count selects totalCount of a connection under the alias count.
var count = []field{{Name: "totalCount", Alias: "count"}}

var (
	languageFragment = graphql.NewFragment("language", "Language",
		field{Name: "name"},
		field{Name: "color"},
	)

	minifiedOrganizationFragment = graphql.NewFragment("minifiedOrganization", "Organization",
		field{Name: "id", Alias: "gitHubId"},
		field{Name: "login", Alias: "name"},
		field{Name: "url", Alias: "publicUrl"},
	)

	minifiedRepositoryFragment = graphql.NewFragment("minifiedRepository", "Repository",
		field{Name: "id", Alias: "gitHubId"},
		field{Name: "name"},
		field{Name: "owner", Alias: "ownerName", Children: []field{{Name: "login", Alias: "name"}}},
		field{Name: "isPrivate"},
		field{Name: "url", Alias: "publicUrl"},
	)

	minifiedGistFragment = graphql.NewFragment("minifiedGist", "Gist",
		field{Name: "id", Alias: "gitHubId"},
		field{Name: "name"},
		field{Name: "owner", Alias: "ownerUsername", Children: []field{{Name: "login", Alias: "username"}}},
		field{Name: "url", Alias: "publicUrl"},
	)

	pullRequestFragment = graphql.NewFragment("pullRequest", "PullRequest",
		field{Name: "title"},
		field{Name: "createdAt", Alias: "creationDateTime"},
		field{Name: "merged", Alias: "isMerged"},
		field{Name: "closed", Alias: "isClosed"},
		field{Name: "additions", Alias: "additionsCount"},
		field{Name: "deletions", Alias: "deletionsCount"},
		field{Name: "url", Alias: "publicUrl"},
	)

	userProfileFragment = graphql.NewFragment("userProfile", "User",
		field{Name: "id", Alias: "gitHubId"},
		field{Name: "login", Alias: "username"},
		field{Name: "name", Alias: "displayName"},
		field{Name: "company"},
		field{Name: "url", Alias: "publicUrl"},
		field{Name: "createdAt", Alias: "creationDateTime"},
		field{Name: "avatarUrl"},
		field{Name: "isHireable", Alias: "forHire"},
		field{Name: "followers", Alias: "followersCount", Children: count},
	)

	organizationProfileFragment = graphql.NewFragment("organizationProfile", "Organization",
		extend(minifiedOrganizationFragment,
			field{Name: "name", Alias: "displayName"},
			field{Name: "description"},
			field{Name: "avatarUrl"},
			field{Name: "membersWithRole", Alias: "membersCount", Children: count},
		)...,
	)

	repositoryProfileFragment = graphql.NewFragment("repositoryProfile", "Repository",
		extend(minifiedRepositoryFragment,
			field{Name: "description"},
			field{Name: "primaryLanguage", Alias: "primaryProgrammingLanguage", Children: languageFragment.Fields()},
			field{
				Name:  "languages",
				Alias: "appliedProgrammingLanguages",
				Children: []field{{
					Name: "edges",
					Children: []field{
						{Name: "size", Alias: "bytesCount"},
						{Name: "node", Children: languageFragment.Fields()},
					},
				}},
				Argument: "first: 100, orderBy: {field: SIZE, direction: DESC}",
			},
			field{Name: "isFork"},
			field{Name: "createdAt", Alias: "creationDateTime"},
			field{Name: "pushedAt", Alias: "lastPushDateTime"},
			field{
				Name:  "repositoryTopics",
				Alias: "topics",
				Children: []field{{
					Name:     "nodes",
					Children: []field{{Name: "topic", Children: []field{{Name: "name"}}}},
				}},
				Argument: "first: 100",
			},
			field{Name: "stargazers", Alias: "starsCount", Children: count},
			field{Name: "watchers", Alias: "watchersCount", Children: count},
			field{Name: "forkCount"},
		)...,
	)

	gistProfileFragment = graphql.NewFragment("gistProfile", "Gist",
		extend(minifiedGistFragment,
			field{Name: "description"},
			field{Name: "isFork"},
			field{Name: "createdAt", Alias: "creationDateTime"},
			field{Name: "pushedAt", Alias: "lastPushDateTime"},
			field{Name: "forks", Alias: "forksCount", Children: count},
			field{Name: "stargazers", Alias: "starsCount", Children: count},
			field{Name: "files", Children: []field{
				{Name: "language", Children: []field{{Name: "name"}}},
				{Name: "size", Alias: "bytesCount"},
			}},
			field{Name: "comments", Alias: "commentsCount", Children: count},
		)...,
	)
)

// extend returns base's fields followed by extra, without sharing base's
// backing array.
func extend(base *graphql.Fragment, extra ...field) []field {
	return append(slices.Clone(base.Fields()), extra...)
}

// Decode shapes mirroring the fragments above.

type countOf struct {
	Count int `json:"count"`
}

type rawMinifiedRepository struct {
	GitHubID  string `json:"gitHubId"`
	Name      string `json:"name"`
	IsPrivate bool   `json:"isPrivate"`
	PublicURL string `json:"publicUrl"`
	Owner     struct {
		Name string `json:"name"`
	} `json:"ownerName"`
}

func (r rawMinifiedRepository) model() RepositoryProfileMinified {
	return RepositoryProfileMinified{
		GitHubID:  r.GitHubID,
		Name:      r.Name,
		OwnerName: r.Owner.Name,
		PublicURL: r.PublicURL,
		IsPrivate: r.IsPrivate,
	}
}

type rawMinifiedGist struct {
	GitHubID  string `json:"gitHubId"`
	Name      string `json:"name"`
	PublicURL string `json:"publicUrl"`
	Owner     struct {
		Username string `json:"username"`
	} `json:"ownerUsername"`
}

func (r rawMinifiedGist) model() GistProfileMinified {
	return GistProfileMinified{
		GitHubID:      r.GitHubID,
		Name:          r.Name,
		OwnerUsername: r.Owner.Username,
		PublicURL:     r.PublicURL,
	}
}
