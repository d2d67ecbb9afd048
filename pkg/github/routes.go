package github

import (
	"context"
	"time"

	"github.com/gustavclausen/github-api-fetcher/pkg/apierror"
	"github.com/gustavclausen/github-api-fetcher/pkg/client"
	"github.com/gustavclausen/github-api-fetcher/pkg/logging"
	"github.com/gustavclausen/github-api-fetcher/pkg/pagination"
	"github.com/rs/zerolog"
)

// Client groups the route facades. Every facade returns nil without an
// error when the requested subject does not exist.
//
// Facades that compose several requests issue them one at a time. GitHub's
// abuse detection flags bursts of concurrent requests for the same subject.
type Client struct {
	Users         *UserRoute
	Organizations *OrganizationRoute
	Repositories  *RepositoryRoute
	Gists         *GistRoute
}

// New creates the route facades over f.
func New(f *client.Fetcher) *Client {
	logger := logging.NewLogger("github-routes")
	return &Client{
		Users:         &UserRoute{fetcher: f, logger: logger},
		Organizations: &OrganizationRoute{fetcher: f},
		Repositories:  &RepositoryRoute{fetcher: f},
		Gists:         &GistRoute{fetcher: f},
	}
}

// OrganizationRoute fetches organizations.
type OrganizationRoute struct {
	fetcher *client.Fetcher
}

// Profile returns the profile of the organization with the given login.
func (r *OrganizationRoute) Profile(ctx context.Context, name string) (*OrganizationProfile, error) {
	return client.Fetch(ctx, r.fetcher, NewOrganizationProfileRequest(name))
}

// RepositoryRoute fetches repositories.
type RepositoryRoute struct {
	fetcher *client.Fetcher
}

// Profile returns the profile of owner/name.
func (r *RepositoryRoute) Profile(ctx context.Context, owner, name string) (*RepositoryProfile, error) {
	return client.Fetch(ctx, r.fetcher, NewRepositoryProfileRequest(owner, name))
}

// GistRoute fetches gists.
type GistRoute struct {
	fetcher *client.Fetcher
}

// Profile returns the profile of the gist name owned by owner.
func (r *GistRoute) Profile(ctx context.Context, owner, name string) (*GistProfile, error) {
	return client.Fetch(ctx, r.fetcher, NewGistProfileRequest(owner, name))
}

// UserRoute fetches users and their contributions.
type UserRoute struct {
	fetcher *client.Fetcher
	logger  zerolog.Logger
}

// Profile returns a user's profile together with their organization
// memberships, public repositories and public gists.
func (r *UserRoute) Profile(ctx context.Context, username string) (*UserProfile, error) {
	profile, err := client.Fetch(ctx, r.fetcher, NewUserProfileRequest(username))
	if err != nil || profile == nil {
		return nil, err
	}

	orgs, err := r.OrganizationMemberships(ctx, username)
	if err != nil {
		return nil, err
	}
	if orgs != nil {
		profile.OrganizationMemberships = orgs
	}

	repos, err := r.PublicRepositoryOwnerships(ctx, username)
	if err != nil {
		return nil, err
	}
	if repos != nil {
		profile.PublicRepositoryOwnerships = repos
	}

	gists, err := r.PublicGists(ctx, username)
	if err != nil {
		return nil, err
	}
	if gists != nil {
		profile.PublicGists = gists
	}

	return profile, nil
}

// OrganizationMemberships returns the organizations the user is a member of.
func (r *UserRoute) OrganizationMemberships(ctx context.Context, username string) ([]OrganizationProfileMinified, error) {
	return client.PageFetch(ctx, r.fetcher, NewOrganizationMembershipsRequest(username))
}

// PublicRepositoryOwnerships returns the public repositories the user owns.
func (r *UserRoute) PublicRepositoryOwnerships(ctx context.Context, username string) ([]RepositoryProfileMinified, error) {
	return client.PageFetch(ctx, r.fetcher, NewRepositoryOwnershipsRequest(username))
}

// PublicGists returns the user's public gists.
func (r *UserRoute) PublicGists(ctx context.Context, username string) ([]GistProfileMinified, error) {
	return client.PageFetch(ctx, r.fetcher, NewGistsRequest(username))
}

// ContributionYears returns the years the user has contributed in, e.g.
// [2019 2018 2016].
func (r *UserRoute) ContributionYears(ctx context.Context, username string) ([]int, error) {
	years, err := client.Fetch(ctx, r.fetcher, NewContributionYearsRequest(username))
	if err != nil || years == nil {
		return nil, err
	}
	return *years, nil
}

// ContributionsInMonth returns the user's contributions of kind in a month.
//
// Contributions to private repositories are only counted. Whether they are
// visible at all depends on the user's profile settings and the token's scopes.
func (r *UserRoute) ContributionsInMonth(ctx context.Context, kind ContributionKind, username string, year int, month time.Month) (*MonthlyContributions, error) {
	req, err := NewContributionsRequest(kind, username, year, month)
	if err != nil {
		return nil, err
	}
	return client.Fetch(ctx, r.fetcher, req)
}

// CommitContributionsInMonth returns the user's commits in a month.
func (r *UserRoute) CommitContributionsInMonth(ctx context.Context, username string, year int, month time.Month) (*MonthlyContributions, error) {
	return r.ContributionsInMonth(ctx, CommitContributions, username, year, month)
}

// IssueContributionsInMonth returns the issues the user opened in a month.
func (r *UserRoute) IssueContributionsInMonth(ctx context.Context, username string, year int, month time.Month) (*MonthlyContributions, error) {
	return r.ContributionsInMonth(ctx, IssueContributions, username, year, month)
}

// PullRequestReviewContributionsInMonth returns the user's pull request
// reviews in a month.
func (r *UserRoute) PullRequestReviewContributionsInMonth(ctx context.Context, username string, year int, month time.Month) (*MonthlyContributions, error) {
	return r.ContributionsInMonth(ctx, PullRequestReviewContributions, username, year, month)
}

// PullRequestContributionsInMonth returns the pull requests the user opened
// in a month.
func (r *UserRoute) PullRequestContributionsInMonth(ctx context.Context, username string, year int, month time.Month) (*MonthlyPullRequestContributions, error) {
	req, err := NewPullRequestContributionsRequest(username, year, month)
	if err != nil {
		return nil, err
	}
	return client.Fetch(ctx, r.fetcher, req)
}

// ContributionsInYear returns the twelve months of contributions of kind.
func (r *UserRoute) ContributionsInYear(ctx context.Context, kind ContributionKind, username string, year int) (*YearlyContributions, error) {
	months, err := monthsOf(ctx, func(ctx context.Context, month time.Month) (*MonthlyContributions, error) {
		return r.ContributionsInMonth(ctx, kind, username, year, month)
	})
	if err != nil || months == nil {
		return nil, err
	}
	return &YearlyContributions{Year: year, Months: months}, nil
}

// CommitContributionsInYear returns the user's commits month by month.
func (r *UserRoute) CommitContributionsInYear(ctx context.Context, username string, year int) (*YearlyContributions, error) {
	return r.ContributionsInYear(ctx, CommitContributions, username, year)
}

// IssueContributionsInYear returns the user's issues month by month.
func (r *UserRoute) IssueContributionsInYear(ctx context.Context, username string, year int) (*YearlyContributions, error) {
	return r.ContributionsInYear(ctx, IssueContributions, username, year)
}

// PullRequestReviewContributionsInYear returns the user's reviews month by month.
func (r *UserRoute) PullRequestReviewContributionsInYear(ctx context.Context, username string, year int) (*YearlyContributions, error) {
	return r.ContributionsInYear(ctx, PullRequestReviewContributions, username, year)
}

// PullRequestContributionsInYear returns the user's pull requests month by month.
func (r *UserRoute) PullRequestContributionsInYear(ctx context.Context, username string, year int) (*YearlyPullRequestContributions, error) {
	months, err := monthsOf(ctx, func(ctx context.Context, month time.Month) (*MonthlyPullRequestContributions, error) {
		return r.PullRequestContributionsInMonth(ctx, username, year, month)
	})
	if err != nil || months == nil {
		return nil, err
	}
	return &YearlyPullRequestContributions{Year: year, Months: months}, nil
}

// AllContributions returns contributions of kind for every contribution year.
func (r *UserRoute) AllContributions(ctx context.Context, kind ContributionKind, username string) ([]YearlyContributions, error) {
	return everyYear(ctx, r, username, func(ctx context.Context, year int) (*YearlyContributions, error) {
		return r.ContributionsInYear(ctx, kind, username, year)
	})
}

// AllCommitContributions returns the user's commits for every contribution year.
func (r *UserRoute) AllCommitContributions(ctx context.Context, username string) ([]YearlyContributions, error) {
	return r.AllContributions(ctx, CommitContributions, username)
}

// AllIssueContributions returns the user's issues for every contribution year.
func (r *UserRoute) AllIssueContributions(ctx context.Context, username string) ([]YearlyContributions, error) {
	return r.AllContributions(ctx, IssueContributions, username)
}

// AllPullRequestReviewContributions returns the user's reviews for every
// contribution year.
func (r *UserRoute) AllPullRequestReviewContributions(ctx context.Context, username string) ([]YearlyContributions, error) {
	return r.AllContributions(ctx, PullRequestReviewContributions, username)
}

// AllPullRequestContributions returns the user's pull requests for every
// contribution year.
func (r *UserRoute) AllPullRequestContributions(ctx context.Context, username string) ([]YearlyPullRequestContributions, error) {
	return everyYear(ctx, r, username, func(ctx context.Context, year int) (*YearlyPullRequestContributions, error) {
		return r.PullRequestContributionsInYear(ctx, username, year)
	})
}

// monthsOf fetches January through December one month at a time. It returns
// nil when any month reports the subject as missing.
func monthsOf[M any](ctx context.Context, fetchMonth func(context.Context, time.Month) (*M, error)) ([]M, error) {
	tasks := make([]pagination.Task[M], 0, 12)
	for month := time.January; month <= time.December; month++ {
		tasks = append(tasks, func(ctx context.Context) (M, error) {
			result, err := fetchMonth(ctx, month)
			if err != nil {
				var zero M
				return zero, err
			}
			if result == nil {
				var zero M
				return zero, apierror.NotFound(month.String() + " not found")
			}
			return *result, nil
		})
	}

	months, err := pagination.Sequential(ctx, tasks...)
	if apierror.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return months, nil
}

// everyYear fetches each contribution year of username one at a time.
// Years reported as missing are skipped.
func everyYear[Y any](ctx context.Context, r *UserRoute, username string, fetchYear func(context.Context, int) (*Y, error)) ([]Y, error) {
	years, err := r.ContributionYears(ctx, username)
	if err != nil || years == nil {
		return nil, err
	}

	tasks := make([]pagination.Task[*Y], 0, len(years))
	for _, year := range years {
		tasks = append(tasks, func(ctx context.Context) (*Y, error) {
			return fetchYear(ctx, year)
		})
	}

	start := time.Now()
	results, err := pagination.Sequential(ctx, tasks...)
	if err != nil {
		return nil, err
	}

	all := make([]Y, 0, len(results))
	for _, result := range results {
		if result != nil {
			all = append(all, *result)
		}
	}

	r.logger.Info().
		Str("username", username).
		Int("years", len(all)).
		Dur("duration", time.Since(start)).
		Msg("Fetched contributions for all years")

	return all, nil
}
