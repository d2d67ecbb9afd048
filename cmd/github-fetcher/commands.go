package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/gustavclausen/github-api-fetcher/pkg/cache"
	"github.com/gustavclausen/github-api-fetcher/pkg/config"
	"github.com/gustavclausen/github-api-fetcher/pkg/github"
)

// found turns a nil result into errNotFound.
func found[T any](v *T, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, errNotFound
	}
	return v, nil
}

func foundList[T any](v []T, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, errNotFound
	}
	return v, nil
}

// print writes v to the command output as indented JSON.
func (a *app) print(v any, err error) error {
	if err != nil {
		return err
	}
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// splitPair parses an owner/name argument.
func splitPair(arg string) (owner, name string, err error) {
	owner, name, ok := strings.Cut(arg, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", fmt.Errorf("expected <owner>/<name>, got %q", arg)
	}
	return owner, name, nil
}

func newUserCommand(a *app) *cobra.Command {
	var section string

	cmd := &cobra.Command{
		Use:   "user <username>",
		Short: "Print a user's profile",
		Long: `Print a user's profile together with their organization memberships,
public repositories and public gists.

Use --only to print a single part: organizations, repositories, gists or years.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, users := cmd.Context(), a.github.Users
			username := args[0]

			switch section {
			case "":
				return a.print(found(users.Profile(ctx, username)))
			case "organizations":
				return a.print(foundList(users.OrganizationMemberships(ctx, username)))
			case "repositories":
				return a.print(foundList(users.PublicRepositoryOwnerships(ctx, username)))
			case "gists":
				return a.print(foundList(users.PublicGists(ctx, username)))
			case "years":
				return a.print(foundList(users.ContributionYears(ctx, username)))
			default:
				return fmt.Errorf("unknown section %q", section)
			}
		},
	}

	cmd.Flags().StringVar(&section, "only", "", "print only organizations, repositories, gists or years")
	return cmd
}

func newOrgCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "org <name>",
		Short: "Print an organization's profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.print(found(a.github.Organizations.Profile(cmd.Context(), args[0])))
		},
	}
}

func newRepoCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "repo <owner>/<name>",
		Short: "Print a repository's profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, name, err := splitPair(args[0])
			if err != nil {
				return err
			}
			return a.print(found(a.github.Repositories.Profile(cmd.Context(), owner, name)))
		},
	}
}

func newGistCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "gist <owner>/<name>",
		Short: "Print a gist's profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, name, err := splitPair(args[0])
			if err != nil {
				return err
			}
			return a.print(found(a.github.Gists.Profile(cmd.Context(), owner, name)))
		},
	}
}

// pullRequestKind selects pull request contributions, which are listed
// instead of counted.
const pullRequestKind = "pull-request"

func newContributionsCommand(a *app) *cobra.Command {
	var (
		kind  string
		year  int
		month int
	)

	cmd := &cobra.Command{
		Use:   "contributions <username>",
		Short: "Print a user's contributions",
		Long: `Print a user's contributions of one kind.

Without --year every contribution year is fetched, one month at a time.
With --year only that year is fetched; adding --month narrows it to a month.

Kinds: commit, issue, pull-request-review, pull-request`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, users := cmd.Context(), a.github.Users
			username := args[0]

			if month != 0 && year == 0 {
				return errors.New("--month requires --year")
			}

			if kind == pullRequestKind {
				switch {
				case month != 0:
					return a.print(found(users.PullRequestContributionsInMonth(ctx, username, year, time.Month(month))))
				case year != 0:
					return a.print(found(users.PullRequestContributionsInYear(ctx, username, year)))
				default:
					return a.print(foundList(users.AllPullRequestContributions(ctx, username)))
				}
			}

			k, err := github.ParseContributionKind(kind)
			if err != nil {
				return err
			}
			switch {
			case month != 0:
				return a.print(found(users.ContributionsInMonth(ctx, k, username, year, time.Month(month))))
			case year != 0:
				return a.print(found(users.ContributionsInYear(ctx, k, username, year)))
			default:
				return a.print(foundList(users.AllContributions(ctx, k, username)))
			}
		},
	}

	cmd.Flags().StringVar(&kind, "kind", string(github.CommitContributions), "contribution kind")
	cmd.Flags().IntVar(&year, "year", 0, "contribution year")
	cmd.Flags().IntVar(&month, "month", 0, "month of --year, 1-12")
	return cmd
}

func newRateLimitCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rate-limit",
		Short: "Print the GraphQL rate limit budget of the token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.print(found(a.fetcher.RateLimit(cmd.Context())))
		},
	}
}

func newCacheCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the Redis response cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "purge",
		Short: "Delete every cached response",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.redis == nil {
				return errors.New("cache purge requires redis.addr or " + config.EnvRedis)
			}
			deleted, err := cache.NewManager(a.redis).Purge(cmd.Context())
			if err != nil {
				return err
			}
			a.logger.Info().Int("deleted", deleted).Msg("Purged response cache")
			return a.print(map[string]int{"deleted": deleted}, nil)
		},
	})

	return cmd
}
