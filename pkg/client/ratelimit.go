package client

import (
	"context"
	"regexp"
	"strconv"
	"time"

	"github.com/gustavclausen/github-api-fetcher/pkg/apierror"
	gql "github.com/shurcooL/graphql"
)

// RateLimit is the GraphQL rate limit budget of the authenticated token.
type RateLimit struct {
	Limit     int       `json:"limit"`
	Cost      int       `json:"cost"`
	Remaining int       `json:"remaining"`
	Used      int       `json:"used"`
	ResetAt   time.Time `json:"resetAt"`
}

var statusPattern = regexp.MustCompile(`non-200 OK status code: (\d{3})`)

// RateLimit queries the token's current rate limit budget. The query itself
// costs no points.
func (f *Fetcher) RateLimit(ctx context.Context) (*RateLimit, error) {
	var query struct {
		RateLimit struct {
			Limit     gql.Int
			Cost      gql.Int
			Remaining gql.Int
			Used      gql.Int
			ResetAt   time.Time
		}
	}

	if err := f.gql.Query(ctx, &query, nil); err != nil {
		classified := classifyTransportError(err)
		errorsTotal.WithLabelValues(string(classified.Kind)).Inc()
		f.logger.Error().Err(classified).Str("operation", "RateLimit").Msg("Rate limit query failed")
		return nil, classified
	}

	return &RateLimit{
		Limit:     int(query.RateLimit.Limit),
		Cost:      int(query.RateLimit.Cost),
		Remaining: int(query.RateLimit.Remaining),
		Used:      int(query.RateLimit.Used),
		ResetAt:   query.RateLimit.ResetAt,
	}, nil
}

// classifyTransportError recovers the HTTP status from a graphql client
// error so it can be classified like any other failure.
func classifyTransportError(err error) *apierror.Error {
	f := apierror.Failure{Message: err.Error(), Err: err}

	if m := statusPattern.FindStringSubmatch(err.Error()); m != nil {
		f.StatusCode, _ = strconv.Atoi(m[1])
		f.Message = ""
	}

	return apierror.Classify(f)
}
