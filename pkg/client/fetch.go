package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gustavclausen/github-api-fetcher/pkg/apierror"
	"github.com/gustavclausen/github-api-fetcher/pkg/cache"
	"github.com/gustavclausen/github-api-fetcher/pkg/graphql"
	"github.com/gustavclausen/github-api-fetcher/pkg/pagination"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// HeaderRequestID carries the per-request correlation id.
const HeaderRequestID = "X-Request-Id"

type requestBody struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type responseBody struct {
	Data   json.RawMessage          `json:"data"`
	Errors []apierror.ResponseError `json:"errors"`
}

// errorBody is the shape of GitHub's non-2xx JSON bodies.
type errorBody struct {
	Message string `json:"message"`
}

// Fetch sends a plain request and returns its typed result. A NOT_FOUND
// classification yields (nil, nil); every other failure is returned as a
// classified *apierror.Error or an *apierror.ParseError.
func Fetch[T any](ctx context.Context, f *Fetcher, req graphql.Request[T]) (*T, error) {
	result, _, found, err := send(ctx, f, req)
	if err != nil || !found {
		return nil, err
	}
	return &result, nil
}

// PageFetch walks every page of a paged request, strictly one page at a time,
// and returns the concatenated items in page order.
//
// It returns (nil, nil) when the first page is NOT_FOUND and a non-nil empty
// slice when the subject exists but has no items. When a later page fails the
// items collected so far are returned together with the error.
func PageFetch[T any](ctx context.Context, f *Fetcher, req graphql.PagedRequest[T]) ([]T, error) {
	operation := graphql.OperationName(req.Query())

	return pagination.Collect(ctx, operation, req.HasNextPage, func(ctx context.Context) ([]T, bool, error) {
		items, data, found, err := send(ctx, f, req)
		if err != nil || !found {
			return items, found, err
		}
		pagesFetched.WithLabelValues(operation).Inc()

		if stalled(req) {
			err := apierror.NewParseError(data, "next page announced without a cursor", nil)
			errorsTotal.WithLabelValues(string(apierror.KindParse)).Inc()
			return items, true, err
		}
		return items, true, nil
	})
}

// stalled reports whether a request claims another page but has no cursor to
// continue from, which would refetch the same page forever.
func stalled(req any) bool {
	p, ok := req.(interface {
		HasNextPage() bool
		PageInfo() *graphql.PageInfo
	})
	if !ok || !p.HasNextPage() {
		return false
	}
	info := p.PageInfo()
	return info != nil && info.Cursor == nil
}

// send performs one round trip and parses it, returning the raw data next to
// the result. NOT_FOUND is absorbed into found=false. Only responses that
// parse are written to the cache.
func send[T any](ctx context.Context, f *Fetcher, req graphql.Request[T]) (result T, data json.RawMessage, found bool, err error) {
	query, variables := req.Query(), req.Variables()

	data, cached, err := f.execute(ctx, query, variables)
	if err == nil {
		result, err = req.ParseResponse(data)
	}

	if err != nil {
		var zero T
		kind := apierror.KindOf(err)
		errorsTotal.WithLabelValues(string(kind)).Inc()
		if kind == apierror.KindNotFound {
			return zero, data, false, nil
		}
		return zero, data, false, err
	}

	if !cached {
		f.store(ctx, query, variables, data)
	}
	return result, data, true, nil
}

func (f *Fetcher) cacheKey(query string, variables map[string]any) cache.CacheKey {
	return cache.CacheKey{
		Operation: graphql.OperationName(query),
		Query:     query,
		Variables: variables,
		Principal: f.principal,
	}
}

// store caches a parsed response. Failures are logged and otherwise ignored.
func (f *Fetcher) store(ctx context.Context, query string, variables map[string]any, data json.RawMessage) {
	if f.cache == nil {
		return
	}
	key := f.cacheKey(query, variables)
	if err := f.cache.Set(ctx, key, cache.NewEntry(data, f.config.CacheTTL)); err != nil {
		f.logger.Warn().Err(err).Str("operation", key.Operation).Msg("Failed to cache response")
	}
}

// execute sends a query and returns the "data" member of a successful
// response, reporting whether it was served from the cache. Failures are
// classified; responses that cannot be decoded are returned as parse errors
// carrying the raw body.
func (f *Fetcher) execute(ctx context.Context, query string, variables map[string]any) (json.RawMessage, bool, error) {
	operation := graphql.OperationName(query)
	requestID := uuid.NewString()

	ctx, span := f.tracer.Start(ctx, "github.graphql "+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("graphql.operation.name", operation),
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	logger := f.logger.With().
		Str("operation", operation).
		Str("request_id", requestID).
		Logger()

	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(operation).Observe(time.Since(startTime).Seconds())
	}()

	if f.cache != nil {
		entry, err := f.cache.Get(ctx, f.cacheKey(query, variables))
		switch {
		case err == nil:
			logger.Debug().Bool("cache_hit", true).Dur("age", entry.Age()).Msg("Serving response from cache")
			requestsTotal.WithLabelValues(operation, "cache_hit").Inc()
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return entry.Data, true, nil
		case !errors.Is(err, cache.ErrCacheMiss):
			logger.Warn().Err(err).Msg("Cache get error")
		}
	}

	logger.Debug().Interface("variables", variables).Msg("Sending GraphQL request")

	data, err := f.roundTrip(ctx, operation, requestID, query, variables)
	if err != nil {
		kind := apierror.KindOf(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, string(kind))

		event := logger.Error()
		if kind == apierror.KindNotFound {
			event = logger.Debug()
		}
		event.Err(err).
			Str("error_kind", string(kind)).
			Dur("duration", time.Since(startTime)).
			Msg("GraphQL request failed")
		return nil, false, err
	}

	logger.Debug().Dur("duration", time.Since(startTime)).Msg("GraphQL request complete")
	return data, false, nil
}

func (f *Fetcher) roundTrip(ctx context.Context, operation, requestID, query string, variables map[string]any) (json.RawMessage, error) {
	payload, err := json.Marshal(requestBody{Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderRequestID, requestID)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		requestsTotal.WithLabelValues(operation, "network_error").Inc()
		return nil, apierror.Classify(apierror.Failure{Message: err.Error(), Err: err})
	}
	defer resp.Body.Close()

	requestsTotal.WithLabelValues(operation, strconv.Itoa(resp.StatusCode)).Inc()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.config.MaxResponseBytes+1))
	if err != nil {
		return nil, apierror.Classify(apierror.Failure{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("read response: %v", err),
			Err:        err,
		})
	}
	if int64(len(body)) > f.config.MaxResponseBytes {
		return nil, apierror.NewParseError(body[:f.config.MaxResponseBytes],
			fmt.Sprintf("response exceeds %d bytes", f.config.MaxResponseBytes), nil)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		_ = json.Unmarshal(body, &eb)
		return nil, apierror.Classify(apierror.Failure{
			StatusCode: resp.StatusCode,
			Message:    eb.Message,
		})
	}

	var rb responseBody
	if err := json.Unmarshal(body, &rb); err != nil {
		return nil, apierror.NewParseError(body, "malformed response body", err)
	}

	if len(rb.Errors) > 0 {
		messages := make([]string, 0, len(rb.Errors))
		for _, e := range rb.Errors {
			if e.Message != "" {
				messages = append(messages, e.Message)
			}
		}
		return nil, apierror.Classify(apierror.Failure{
			StatusCode: resp.StatusCode,
			Message:    strings.Join(messages, "; "),
			Errors:     rb.Errors,
		})
	}

	if d := bytes.TrimSpace(rb.Data); len(d) == 0 || bytes.Equal(d, []byte("null")) {
		return nil, apierror.NewParseError(body, "response without data", nil)
	}

	return rb.Data, nil
}
