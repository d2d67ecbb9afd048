package github

import (
	"fmt"
	"time"

	"github.com/gustavclausen/github-api-fetcher/pkg/graphql"
)

var organizationProfileQuery = graphql.Document(fmt.Sprintf(`
query GetOrganizationProfile($name: String!) {
    organization(login: $name) {
        %s
    }
}`, organizationProfileFragment.Spread()), organizationProfileFragment)

var repositoryProfileQuery = graphql.Document(fmt.Sprintf(`
query GetRepositoryProfile($owner: String!, $name: String!) {
    repository(owner: $owner, name: $name) {
        %s
    }
}`, repositoryProfileFragment.Spread()), repositoryProfileFragment)

var gistProfileQuery = graphql.Document(fmt.Sprintf(`
query GetGistProfile($owner: String!, $name: String!) {
    user(login: $owner) {
        gist(name: $name) {
            %s
        }
    }
}`, gistProfileFragment.Spread()), gistProfileFragment)

type rawOrganizationProfile struct {
	OrganizationProfileMinified
	DisplayName string  `json:"displayName"`
	Description string  `json:"description"`
	AvatarURL   string  `json:"avatarUrl"`
	Members     countOf `json:"membersCount"`
}

// NewOrganizationProfileRequest requests the profile of an organization.
func NewOrganizationProfileRequest(name string) graphql.Request[OrganizationProfile] {
	return graphql.NewQuery(organizationProfileQuery, map[string]any{"name": name},
		func(r rawOrganizationProfile) (OrganizationProfile, error) {
			return OrganizationProfile{
				OrganizationProfileMinified: r.OrganizationProfileMinified,
				DisplayName:                 r.DisplayName,
				Description:                 r.Description,
				AvatarURL:                   r.AvatarURL,
				MembersCount:                r.Members.Count,
			}, nil
		}, "organization")
}

type rawRepositoryProfile struct {
	rawMinifiedRepository
	Description string               `json:"description"`
	Primary     *ProgrammingLanguage `json:"primaryProgrammingLanguage"`
	Languages   struct {
		Edges []struct {
			BytesCount int                 `json:"bytesCount"`
			Node       ProgrammingLanguage `json:"node"`
		} `json:"edges"`
	} `json:"appliedProgrammingLanguages"`
	IsFork           bool      `json:"isFork"`
	CreationDateTime time.Time `json:"creationDateTime"`
	LastPushDateTime time.Time `json:"lastPushDateTime"`
	Topics           struct {
		Nodes []struct {
			Topic struct {
				Name string `json:"name"`
			} `json:"topic"`
		} `json:"nodes"`
	} `json:"topics"`
	Stars     countOf `json:"starsCount"`
	Watchers  countOf `json:"watchersCount"`
	ForkCount int     `json:"forkCount"`
}

// NewRepositoryProfileRequest requests the profile of a repository.
func NewRepositoryProfileRequest(owner, name string) graphql.Request[RepositoryProfile] {
	return graphql.NewQuery(repositoryProfileQuery, map[string]any{"owner": owner, "name": name},
		func(r rawRepositoryProfile) (RepositoryProfile, error) {
			languages := make([]AppliedProgrammingLanguage, 0, len(r.Languages.Edges))
			for _, edge := range r.Languages.Edges {
				languages = append(languages, AppliedProgrammingLanguage{
					ProgrammingLanguage: edge.Node,
					BytesCount:          edge.BytesCount,
				})
			}

			topics := make([]string, 0, len(r.Topics.Nodes))
			for _, node := range r.Topics.Nodes {
				topics = append(topics, node.Topic.Name)
			}

			return RepositoryProfile{
				RepositoryProfileMinified:   r.rawMinifiedRepository.model(),
				Description:                 r.Description,
				PrimaryProgrammingLanguage:  r.Primary,
				AppliedProgrammingLanguages: languages,
				IsFork:                      r.IsFork,
				CreationDateTime:            r.CreationDateTime,
				LastPushDateTime:            r.LastPushDateTime,
				Topics:                      topics,
				StarsCount:                  r.Stars.Count,
				WatchersCount:               r.Watchers.Count,
				ForkCount:                   r.ForkCount,
			}, nil
		}, "repository")
}

type rawGistProfile struct {
	rawMinifiedGist
	Description      string    `json:"description"`
	IsFork           bool      `json:"isFork"`
	CreationDateTime time.Time `json:"creationDateTime"`
	LastPushDateTime time.Time `json:"lastPushDateTime"`
	Forks            countOf   `json:"forksCount"`
	Stars            countOf   `json:"starsCount"`
	Files            []struct {
		Language *struct {
			Name string `json:"name"`
		} `json:"language"`
		BytesCount int `json:"bytesCount"`
	} `json:"files"`
	Comments countOf `json:"commentsCount"`
}

// NewGistProfileRequest requests the profile of a gist owned by owner.
func NewGistProfileRequest(owner, name string) graphql.Request[GistProfile] {
	return graphql.NewQuery(gistProfileQuery, map[string]any{"owner": owner, "name": name},
		func(r rawGistProfile) (GistProfile, error) {
			files := make([]AppliedProgrammingLanguage, 0, len(r.Files))
			for _, file := range r.Files {
				// Assets such as images have no language
				if file.Language == nil || file.Language.Name == "" {
					continue
				}
				files = append(files, AppliedProgrammingLanguage{
					ProgrammingLanguage: ProgrammingLanguage{Name: file.Language.Name},
					BytesCount:          file.BytesCount,
				})
			}

			return GistProfile{
				GistProfileMinified: r.rawMinifiedGist.model(),
				Description:         r.Description,
				IsFork:              r.IsFork,
				CreationDateTime:    r.CreationDateTime,
				LastPushDateTime:    r.LastPushDateTime,
				ForksCount:          r.Forks.Count,
				StarsCount:          r.Stars.Count,
				Files:               files,
				CommentsCount:       r.Comments.Count,
			}, nil
		}, "user", "gist")
}
