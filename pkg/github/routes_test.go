package github

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gustavclausen/github-api-fetcher/internal/testutil"
	"github.com/gustavclausen/github-api-fetcher/pkg/apierror"
	"github.com/gustavclausen/github-api-fetcher/pkg/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	userData  = `{"user":{"gitHubId":"U1","username":"octocat","displayName":"The Octocat","followersCount":{"count":1}}}`
	orgsData  = `{"user":{"organizations":{"nodes":[{"gitHubId":"O1","name":"github","publicUrl":"https://github.com/github"}],"pageInfo":{"hasNextPage":false,"cursor":null}}}}`
	reposData = `{"user":{"repositories":{"nodes":[],"pageInfo":{"hasNextPage":false,"cursor":null}}}}`
	gistsData = `{"user":{"gists":{"nodes":[{"gitHubId":"G1","name":"abc","ownerUsername":{"username":"octocat"}}],"pageInfo":{"hasNextPage":false,"cursor":null}}}}`

	commitMonthData = `{"user":{"contributionsCollection":{"commitContributionsByRepository":[
		{"repository":{"gitHubId":"R1","name":"hello-world","isPrivate":false,"ownerName":{"name":"octocat"}},"contributions":{"count":2}},
		{"repository":{"gitHubId":"R2","name":"secret","isPrivate":true,"ownerName":{"name":"octocat"}},"contributions":{"count":5}}]}}}`

	pullRequestMonthData = `{"user":{"contributionsCollection":{"pullRequestContributionsByRepository":[]}}}`
)

func setupClient(t *testing.T) (*Client, *testutil.MockGitHub) {
	t.Helper()

	mock := testutil.NewMockGitHub()
	t.Cleanup(mock.Close)

	f, err := client.New(client.Config{Endpoint: mock.URL(), Token: "test-token"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	return New(f), mock
}

func operations(requests []testutil.MockRequest) []string {
	ops := make([]string, 0, len(requests))
	for _, r := range requests {
		ops = append(ops, r.Operation)
	}
	return ops
}

func TestUserProfile_ComposesSerially(t *testing.T) {
	c, mock := setupClient(t)
	mock.SetResponse("GetUserProfile", testutil.NewDataResponse(userData))
	mock.SetResponse("GetUserOrganizationMemberships", testutil.NewDataResponse(orgsData))
	mock.SetResponse("GetUserRepositoryOwnerships", testutil.NewDataResponse(reposData))
	mock.SetResponse("GetUserGists", testutil.NewDataResponse(gistsData))

	profile, err := c.Users.Profile(context.Background(), "octocat")
	require.NoError(t, err)
	require.NotNil(t, profile)

	assert.Equal(t, "octocat", profile.Username)
	require.Len(t, profile.OrganizationMemberships, 1)
	assert.Equal(t, "github", profile.OrganizationMemberships[0].Name)
	assert.NotNil(t, profile.PublicRepositoryOwnerships)
	assert.Empty(t, profile.PublicRepositoryOwnerships)
	require.Len(t, profile.PublicGists, 1)
	assert.Equal(t, "octocat", profile.PublicGists[0].OwnerUsername)

	assert.Equal(t, []string{
		"GetUserProfile",
		"GetUserOrganizationMemberships",
		"GetUserRepositoryOwnerships",
		"GetUserGists",
	}, operations(mock.GetRequests()))
	assert.Equal(t, 1, mock.GetMaxInFlight())
}

func TestUserProfile_NotFound(t *testing.T) {
	c, mock := setupClient(t)
	mock.SetResponse("GetUserProfile", testutil.NewDataResponse(`{"user":null}`))

	profile, err := c.Users.Profile(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, profile)
	assert.Equal(t, 1, mock.GetRequestCount())
}

func TestUserProfile_PropagatesErrors(t *testing.T) {
	c, mock := setupClient(t)
	mock.SetResponse("GetUserProfile", testutil.NewDataResponse(userData))
	mock.SetResponse("GetUserOrganizationMemberships", testutil.NewStatusResponse(http.StatusForbidden, "abuse detected"))

	profile, err := c.Users.Profile(context.Background(), "octocat")
	assert.Nil(t, profile)
	assert.Equal(t, apierror.KindAccessForbidden, apierror.KindOf(err))
	assert.Equal(t, 2, mock.GetRequestCount())
}

func TestCommitContributionsInYear_MonthByMonth(t *testing.T) {
	c, mock := setupClient(t)
	mock.SetResponse("GetUserCommitContributionsByRepository", testutil.NewDataResponse(commitMonthData))

	year, err := c.Users.CommitContributionsInYear(context.Background(), "octocat", 2020)
	require.NoError(t, err)
	require.NotNil(t, year)

	assert.Equal(t, 2020, year.Year)
	require.Len(t, year.Months, 12)
	assert.Equal(t, "January", year.Months[0].Month)
	assert.Equal(t, "December", year.Months[11].Month)
	assert.Equal(t, 5, year.Months[0].PrivateContributionsCount)
	require.Len(t, year.Months[0].PublicContributions, 1)
	assert.Equal(t, 2, year.Months[0].PublicContributions[0].Count)

	requests := mock.GetRequests()
	require.Len(t, requests, 12)
	assert.Equal(t, 1, mock.GetMaxInFlight())

	assert.Equal(t, "2020-02-01T00:00:00Z", requests[1].Variables["from"])
	assert.Equal(t, "2020-02-29T23:59:59Z", requests[1].Variables["to"])
	assert.Equal(t, "2020-12-31T23:59:59Z", requests[11].Variables["to"])
}

func TestContributionsInYear_UserMissing(t *testing.T) {
	c, mock := setupClient(t)
	mock.SetResponse("GetUserIssueContributionsByRepository", testutil.NewDataResponse(`{"user":null}`))

	year, err := c.Users.IssueContributionsInYear(context.Background(), "ghost", 2020)
	require.NoError(t, err)
	assert.Nil(t, year)
	assert.Equal(t, 1, mock.GetRequestCount())
}

func TestContributionsInYear_StopsAtFirstError(t *testing.T) {
	c, mock := setupClient(t)

	calls := 0
	mock.SetHandler("GetUserCommitContributionsByRepository", func(w http.ResponseWriter, _ testutil.MockRequest) {
		calls++
		if calls == 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		testutil.WriteData(w, commitMonthData)
	})

	year, err := c.Users.CommitContributionsInYear(context.Background(), "octocat", 2020)
	assert.Nil(t, year)
	assert.Equal(t, apierror.KindServerError, apierror.KindOf(err))
	assert.Equal(t, 3, mock.GetRequestCount())

	apiErr, ok := err.(*apierror.Error)
	require.True(t, ok, "error %T is not *apierror.Error", err)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
}

func TestContributionsInMonth_Invalid(t *testing.T) {
	c, mock := setupClient(t)

	_, err := c.Users.ContributionsInMonth(context.Background(), "stars", "octocat", 2020, time.May)
	assert.Error(t, err)

	_, err = c.Users.PullRequestContributionsInMonth(context.Background(), "octocat", 2020, 13)
	assert.Error(t, err)

	assert.Zero(t, mock.GetRequestCount())
}

func TestAllPullRequestContributions(t *testing.T) {
	c, mock := setupClient(t)
	mock.SetResponse("GetUserContributionYears", testutil.NewDataResponse(
		`{"user":{"contributionsCollection":{"contributionYears":[2019,2018]}}}`))
	mock.SetResponse("GetUserPullRequestContributionsByRepository", testutil.NewDataResponse(pullRequestMonthData))

	years, err := c.Users.AllPullRequestContributions(context.Background(), "octocat")
	require.NoError(t, err)
	require.Len(t, years, 2)

	assert.Equal(t, 2019, years[0].Year)
	assert.Equal(t, 2018, years[1].Year)
	for _, y := range years {
		require.Len(t, y.Months, 12)
		assert.NotNil(t, y.Months[0].PublicPullRequestContributions)
	}

	assert.Equal(t, 1+2*12, mock.GetRequestCount())
	assert.Equal(t, 1, mock.GetMaxInFlight())
}

func TestAllContributions_NoYears(t *testing.T) {
	c, mock := setupClient(t)
	mock.SetResponse("GetUserContributionYears", testutil.NewDataResponse(
		`{"user":{"contributionsCollection":{"contributionYears":[]}}}`))

	years, err := c.Users.AllContributions(context.Background(), CommitContributions, "octocat")
	require.NoError(t, err)
	assert.NotNil(t, years)
	assert.Empty(t, years)
	assert.Equal(t, 1, mock.GetRequestCount())
}

func TestAllContributions_UserMissing(t *testing.T) {
	c, _ := setupClient(t)

	// Unhandled operations answer NOT_FOUND.
	years, err := c.Users.AllIssueContributions(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, years)
}

func TestOrganizationProfile(t *testing.T) {
	c, mock := setupClient(t)
	mock.SetResponse("GetOrganizationProfile", testutil.NewDataResponse(
		`{"organization":{"gitHubId":"O1","name":"github","displayName":"GitHub","membersCount":{"count":3}}}`))

	org, err := c.Organizations.Profile(context.Background(), "github")
	require.NoError(t, err)
	require.NotNil(t, org)
	assert.Equal(t, 3, org.MembersCount)
	assert.Equal(t, "github", mock.GetRequests()[0].Variables["name"])
}

func TestRepositoryProfile_NotFound(t *testing.T) {
	c, _ := setupClient(t)

	repo, err := c.Repositories.Profile(context.Background(), "octocat", "missing")
	require.NoError(t, err)
	assert.Nil(t, repo)
}

func TestGistProfile_NullGist(t *testing.T) {
	c, mock := setupClient(t)
	mock.SetResponse("GetGistProfile", testutil.NewDataResponse(`{"user":{"gist":null}}`))

	gist, err := c.Gists.Profile(context.Background(), "octocat", "missing")
	require.NoError(t, err)
	assert.Nil(t, gist)

	vars := mock.GetRequests()[0].Variables
	assert.Equal(t, "octocat", vars["owner"])
	assert.Equal(t, "missing", vars["name"])
}
