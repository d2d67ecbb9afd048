package github

import "time"

// UserProfile is the public profile of a GitHub user.
type UserProfile struct {
	GitHubID    string `json:"gitHubId"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`

	// Company may be plain text or an "@org" mention
	Company string `json:"company"`

	PublicURL        string    `json:"publicUrl"`
	CreationDateTime time.Time `json:"creationDateTime"`
	AvatarURL        string    `json:"avatarUrl"`
	ForHire          bool      `json:"forHire"`
	FollowersCount   int       `json:"followersCount"`

	OrganizationMemberships    []OrganizationProfileMinified `json:"organizationMemberships"`
	PublicRepositoryOwnerships []RepositoryProfileMinified   `json:"publicRepositoryOwnerships"`
	PublicGists                []GistProfileMinified         `json:"publicGists"`
}

// OrganizationProfileMinified references an organization.
type OrganizationProfileMinified struct {
	GitHubID  string `json:"gitHubId"`
	Name      string `json:"name"`
	PublicURL string `json:"publicUrl"`
}

// OrganizationProfile is the public profile of a GitHub organization.
type OrganizationProfile struct {
	OrganizationProfileMinified
	DisplayName  string `json:"displayName"`
	Description  string `json:"description"`
	AvatarURL    string `json:"avatarUrl"`
	MembersCount int    `json:"membersCount"`
}

// ProgrammingLanguage is a language as GitHub names and colors it.
type ProgrammingLanguage struct {
	Name  string  `json:"name"`
	Color *string `json:"color"`
}

// AppliedProgrammingLanguage is a language and the number of bytes written in it.
type AppliedProgrammingLanguage struct {
	ProgrammingLanguage
	BytesCount int `json:"bytesCount"`
}

// RepositoryProfileMinified references a repository.
type RepositoryProfileMinified struct {
	GitHubID string `json:"gitHubId"`
	Name     string `json:"name"`

	// OwnerName is the login of the owning user or organization
	OwnerName string `json:"ownerName"`

	PublicURL string `json:"publicUrl"`
	IsPrivate bool   `json:"isPrivate"`
}

// RepositoryProfile is the public profile of a repository.
type RepositoryProfile struct {
	RepositoryProfileMinified
	Description string `json:"description"`

	// PrimaryProgrammingLanguage is nil for repositories without code
	PrimaryProgrammingLanguage  *ProgrammingLanguage         `json:"primaryProgrammingLanguage"`
	AppliedProgrammingLanguages []AppliedProgrammingLanguage `json:"appliedProgrammingLanguages"`

	IsFork           bool      `json:"isFork"`
	CreationDateTime time.Time `json:"creationDateTime"`
	LastPushDateTime time.Time `json:"lastPushDateTime"`
	Topics           []string  `json:"topics"`
	StarsCount       int       `json:"starsCount"`
	WatchersCount    int       `json:"watchersCount"`
	ForkCount        int       `json:"forkCount"`
}

// ContributionsByRepository counts a user's contributions to one repository.
type ContributionsByRepository struct {
	Repository RepositoryProfileMinified `json:"repository"`
	Count      int                       `json:"count"`
}

// MonthlyContributions holds one kind of contribution made in a month.
// Private repositories only add to the private count.
type MonthlyContributions struct {
	Month                     string                      `json:"month"`
	PrivateContributionsCount int                         `json:"privateContributionsCount"`
	PublicContributions       []ContributionsByRepository `json:"publicContributions"`
}

// YearlyContributions holds the twelve months of a contribution year.
type YearlyContributions struct {
	Year   int                    `json:"year"`
	Months []MonthlyContributions `json:"months"`
}

// PullRequest is a pull request opened by a user.
type PullRequest struct {
	Title            string    `json:"title"`
	CreationDateTime time.Time `json:"creationDateTime"`
	IsMerged         bool      `json:"isMerged"`
	IsClosed         bool      `json:"isClosed"`
	AdditionsCount   int       `json:"additionsCount"`
	DeletionsCount   int       `json:"deletionsCount"`
	PublicURL        string    `json:"publicUrl"`
}

// PullRequestContributionsByRepository lists the pull requests a user opened
// in one repository.
type PullRequestContributionsByRepository struct {
	Repository               RepositoryProfileMinified `json:"repository"`
	PullRequestContributions []PullRequest             `json:"pullRequestContributions"`
}

// MonthlyPullRequestContributions holds the pull requests opened in a month.
type MonthlyPullRequestContributions struct {
	Month                                string                                 `json:"month"`
	PrivatePullRequestContributionsCount int                                    `json:"privatePullRequestContributionsCount"`
	PublicPullRequestContributions       []PullRequestContributionsByRepository `json:"publicPullRequestContributions"`
}

// YearlyPullRequestContributions holds the twelve months of pull requests
// of a contribution year.
type YearlyPullRequestContributions struct {
	Year   int                               `json:"year"`
	Months []MonthlyPullRequestContributions `json:"months"`
}

// GistProfileMinified references a gist.
type GistProfileMinified struct {
	GitHubID      string `json:"gitHubId"`
	Name          string `json:"name"`
	OwnerUsername string `json:"ownerUsername"`
	PublicURL     string `json:"publicUrl"`
}

// GistProfile is the public profile of a gist.
type GistProfile struct {
	GistProfileMinified
	Description      string    `json:"description"`
	IsFork           bool      `json:"isFork"`
	CreationDateTime time.Time `json:"creationDateTime"`
	LastPushDateTime time.Time `json:"lastPushDateTime"`
	ForksCount       int       `json:"forksCount"`
	StarsCount       int       `json:"starsCount"`

	// Files lists only files GitHub detected a language for
	Files         []AppliedProgrammingLanguage `json:"files"`
	CommentsCount int                          `json:"commentsCount"`
}
