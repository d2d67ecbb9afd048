package github

import (
	"fmt"
	"time"

	"github.com/gustavclausen/github-api-fetcher/pkg/graphql"
)

var userProfileQuery = graphql.Document(fmt.Sprintf(`
query GetUserProfile($username: String!) {
    user(login: $username) {
        %s
    }
}`, userProfileFragment.Spread()), userProfileFragment)

var organizationMembershipsQuery = graphql.Document(fmt.Sprintf(`
query GetUserOrganizationMemberships($username: String!, $cursor: String) {
    user(login: $username) {
        organizations(first: 100, after: $cursor) {
            nodes {
                %s
            }
            pageInfo {
                %s
            }
        }
    }
}`, minifiedOrganizationFragment.Spread(), graphql.PageInfoFragment.Spread()),
	minifiedOrganizationFragment, graphql.PageInfoFragment)

var repositoryOwnershipsQuery = graphql.Document(fmt.Sprintf(`
query GetUserRepositoryOwnerships($username: String!, $cursor: String) {
    user(login: $username) {
        repositories(first: 100, after: $cursor, privacy: PUBLIC, ownerAffiliations: OWNER) {
            nodes {
                %s
            }
            pageInfo {
                %s
            }
        }
    }
}`, minifiedRepositoryFragment.Spread(), graphql.PageInfoFragment.Spread()),
	minifiedRepositoryFragment, graphql.PageInfoFragment)

var gistsQuery = graphql.Document(fmt.Sprintf(`
query GetUserGists($username: String!, $cursor: String) {
    user(login: $username) {
        gists(first: 100, after: $cursor, privacy: PUBLIC) {
            nodes {
                %s
            }
            pageInfo {
                %s
            }
        }
    }
}`, minifiedGistFragment.Spread(), graphql.PageInfoFragment.Spread()),
	minifiedGistFragment, graphql.PageInfoFragment)

const contributionYearsQuery = `
query GetUserContributionYears($username: String!) {
    user(login: $username) {
        contributionsCollection {
            contributionYears
        }
    }
}`

type rawUserProfile struct {
	GitHubID         string    `json:"gitHubId"`
	Username         string    `json:"username"`
	DisplayName      string    `json:"displayName"`
	Company          string    `json:"company"`
	PublicURL        string    `json:"publicUrl"`
	CreationDateTime time.Time `json:"creationDateTime"`
	AvatarURL        string    `json:"avatarUrl"`
	ForHire          bool      `json:"forHire"`
	Followers        countOf   `json:"followersCount"`
}

// NewUserProfileRequest requests the profile of a user. The membership,
// repository and gist lists of the result are left empty.
func NewUserProfileRequest(username string) graphql.Request[UserProfile] {
	return graphql.NewQuery(userProfileQuery, map[string]any{"username": username},
		func(r rawUserProfile) (UserProfile, error) {
			return UserProfile{
				GitHubID:                   r.GitHubID,
				Username:                   r.Username,
				DisplayName:                r.DisplayName,
				Company:                    r.Company,
				PublicURL:                  r.PublicURL,
				CreationDateTime:           r.CreationDateTime,
				AvatarURL:                  r.AvatarURL,
				ForHire:                    r.ForHire,
				FollowersCount:             r.Followers.Count,
				OrganizationMemberships:    []OrganizationProfileMinified{},
				PublicRepositoryOwnerships: []RepositoryProfileMinified{},
				PublicGists:                []GistProfileMinified{},
			}, nil
		}, "user")
}

// NewOrganizationMembershipsRequest pages through the organizations a user
// is a member of.
func NewOrganizationMembershipsRequest(username string) graphql.PagedRequest[OrganizationProfileMinified] {
	return graphql.NewPagedQuery(organizationMembershipsQuery, map[string]any{"username": username},
		func(o OrganizationProfileMinified) OrganizationProfileMinified { return o },
		"user", "organizations")
}

// NewRepositoryOwnershipsRequest pages through the public repositories a
// user owns.
func NewRepositoryOwnershipsRequest(username string) graphql.PagedRequest[RepositoryProfileMinified] {
	return graphql.NewPagedQuery(repositoryOwnershipsQuery, map[string]any{"username": username},
		rawMinifiedRepository.model, "user", "repositories")
}

// NewGistsRequest pages through a user's public gists.
func NewGistsRequest(username string) graphql.PagedRequest[GistProfileMinified] {
	return graphql.NewPagedQuery(gistsQuery, map[string]any{"username": username},
		rawMinifiedGist.model, "user", "gists")
}

// NewContributionYearsRequest requests the years a user has contributed in,
// newest first.
func NewContributionYearsRequest(username string) graphql.Request[[]int] {
	return graphql.NewQuery(contributionYearsQuery, map[string]any{"username": username},
		func(years []int) ([]int, error) {
			if years == nil {
				years = []int{}
			}
			return years, nil
		}, "user", "contributionsCollection", "contributionYears")
}
