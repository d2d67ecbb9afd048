package github

import (
	"fmt"
	"time"

	"github.com/gustavclausen/github-api-fetcher/pkg/graphql"
)

// ContributionKind selects which contributions-by-repository connection of
// a contributions collection is queried.
type ContributionKind string

const (
	CommitContributions            ContributionKind = "commit"
	IssueContributions             ContributionKind = "issue"
	PullRequestReviewContributions ContributionKind = "pull-request-review"
)

// ContributionKinds lists the kinds counted per repository.
var ContributionKinds = []ContributionKind{
	CommitContributions,
	IssueContributions,
	PullRequestReviewContributions,
}

type contributionQuery struct {
	connection string
	query      string
}

var contributionQueries = map[ContributionKind]contributionQuery{
	CommitContributions:            newContributionQuery("GetUserCommitContributionsByRepository", "commitContributionsByRepository"),
	IssueContributions:             newContributionQuery("GetUserIssueContributionsByRepository", "issueContributionsByRepository"),
	PullRequestReviewContributions: newContributionQuery("GetUserPullRequestReviewContributionsByRepository", "pullRequestReviewContributionsByRepository"),
}

func newContributionQuery(operation, connection string) contributionQuery {
	return contributionQuery{
		connection: connection,
		query: graphql.Document(fmt.Sprintf(`
query %s($username: String!, $from: DateTime!, $to: DateTime!) {
    user(login: $username) {
        contributionsCollection(from: $from, to: $to) {
            %s(maxRepositories: 100) {
                repository {
                    %s
                }
                contributions {
                    count: totalCount
                }
            }
        }
    }
}`, operation, connection, minifiedRepositoryFragment.Spread()), minifiedRepositoryFragment),
	}
}

var pullRequestContributionsQuery = graphql.Document(fmt.Sprintf(`
query GetUserPullRequestContributionsByRepository($username: String!, $from: DateTime!, $to: DateTime!) {
    user(login: $username) {
        contributionsCollection(from: $from, to: $to) {
            pullRequestContributionsByRepository(maxRepositories: 100) {
                repository {
                    %s
                }
                contributions(first: 100) {
                    nodes {
                        pullRequest {
                            %s
                        }
                    }
                }
            }
        }
    }
}`, minifiedRepositoryFragment.Spread(), pullRequestFragment.Spread()),
	minifiedRepositoryFragment, pullRequestFragment)

// ParseContributionKind maps a kind name to its ContributionKind.
func ParseContributionKind(s string) (ContributionKind, error) {
	kind := ContributionKind(s)
	if _, ok := contributionQueries[kind]; !ok {
		return "", fmt.Errorf("unknown contribution kind %q", s)
	}
	return kind, nil
}

// MonthWindow returns the first and last second of a calendar month in UTC.
func MonthWindow(year int, month time.Month) (from, to time.Time) {
	from = time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to = from.AddDate(0, 1, 0).Add(-time.Second)
	return from, to
}

func windowVariables(username string, year int, month time.Month) map[string]any {
	from, to := MonthWindow(year, month)
	return map[string]any{
		"username": username,
		"from":     from.Format(time.RFC3339),
		"to":       to.Format(time.RFC3339),
	}
}

func checkMonth(month time.Month) error {
	if month < time.January || month > time.December {
		return fmt.Errorf("invalid month %d", month)
	}
	return nil
}

type rawRepositoryContributions struct {
	Repository    rawMinifiedRepository `json:"repository"`
	Contributions countOf               `json:"contributions"`
}

type rawPullRequestContributions struct {
	Repository    rawMinifiedRepository `json:"repository"`
	Contributions struct {
		Nodes []struct {
			PullRequest PullRequest `json:"pullRequest"`
		} `json:"nodes"`
	} `json:"contributions"`
}

// NewContributionsRequest requests a user's contributions of one kind in a
// calendar month, grouped by repository.
func NewContributionsRequest(kind ContributionKind, username string, year int, month time.Month) (graphql.Request[MonthlyContributions], error) {
	q, ok := contributionQueries[kind]
	if !ok {
		return nil, fmt.Errorf("unknown contribution kind %q", kind)
	}
	if err := checkMonth(month); err != nil {
		return nil, err
	}

	return graphql.NewQuery(q.query, windowVariables(username, year, month),
		func(raw []rawRepositoryContributions) (MonthlyContributions, error) {
			return partitionContributions(month, raw), nil
		}, "user", "contributionsCollection", q.connection), nil
}

// NewPullRequestContributionsRequest requests the pull requests a user
// opened in a calendar month, grouped by repository.
func NewPullRequestContributionsRequest(username string, year int, month time.Month) (graphql.Request[MonthlyPullRequestContributions], error) {
	if err := checkMonth(month); err != nil {
		return nil, err
	}

	return graphql.NewQuery(pullRequestContributionsQuery, windowVariables(username, year, month),
		func(raw []rawPullRequestContributions) (MonthlyPullRequestContributions, error) {
			return partitionPullRequests(month, raw), nil
		}, "user", "contributionsCollection", "pullRequestContributionsByRepository"), nil
}

// partitionContributions sums contributions to private repositories and
// keeps only public repositories in the listing.
func partitionContributions(month time.Month, raw []rawRepositoryContributions) MonthlyContributions {
	result := MonthlyContributions{
		Month:               month.String(),
		PublicContributions: []ContributionsByRepository{},
	}

	for _, c := range raw {
		repo := c.Repository.model()
		if repo.IsPrivate {
			result.PrivateContributionsCount += c.Contributions.Count
			continue
		}
		result.PublicContributions = append(result.PublicContributions, ContributionsByRepository{
			Repository: repo,
			Count:      c.Contributions.Count,
		})
	}

	return result
}

// partitionPullRequests counts pull requests in private repositories and
// keeps only public repositories in the listing.
func partitionPullRequests(month time.Month, raw []rawPullRequestContributions) MonthlyPullRequestContributions {
	result := MonthlyPullRequestContributions{
		Month:                          month.String(),
		PublicPullRequestContributions: []PullRequestContributionsByRepository{},
	}

	for _, c := range raw {
		repo := c.Repository.model()
		if repo.IsPrivate {
			result.PrivatePullRequestContributionsCount += len(c.Contributions.Nodes)
			continue
		}

		prs := make([]PullRequest, 0, len(c.Contributions.Nodes))
		for _, node := range c.Contributions.Nodes {
			prs = append(prs, node.PullRequest)
		}
		result.PublicPullRequestContributions = append(result.PublicPullRequestContributions,
			PullRequestContributionsByRepository{Repository: repo, PullRequestContributions: prs})
	}

	return result
}
