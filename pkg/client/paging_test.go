package client

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/gustavclausen/github-api-fetcher/internal/testutil"
	"github.com/gustavclausen/github-api-fetcher/pkg/apierror"
	"github.com/gustavclausen/github-api-fetcher/pkg/graphql"
)

const (
	reposPage0 = `{"user":{"repositories":{"nodes":[{"name":"a"},{"name":"b"}],"pageInfo":{"hasNextPage":true,"cursor":"1"}}}}`
	reposPage1 = `{"user":{"repositories":{"nodes":[{"name":"c"}],"pageInfo":{"hasNextPage":false,"cursor":"2"}}}}`
)

func TestPageFetch_ConcatenatesPages(t *testing.T) {
	f, mock := setupFetcher(t, Config{})
	mock.SetPages("GetRepos", reposPage0, reposPage1)

	repos, err := PageFetch(context.Background(), f, newReposRequest("octocat"))
	if err != nil {
		t.Fatalf("PageFetch() error = %v", err)
	}

	want := []string{"a", "b", "c"}
	if len(repos) != len(want) {
		t.Fatalf("PageFetch() = %v, want %v", repos, want)
	}
	for i := range want {
		if repos[i] != want[i] {
			t.Errorf("PageFetch()[%d] = %q, want %q", i, repos[i], want[i])
		}
	}

	requests := mock.GetRequests()
	if len(requests) != 2 {
		t.Fatalf("requests = %d, want 2", len(requests))
	}
	if _, ok := requests[0].Variables[graphql.CursorVariable]; ok {
		t.Errorf("first request carried a cursor: %v", requests[0].Variables)
	}
	if got := requests[1].Variables[graphql.CursorVariable]; got != "1" {
		t.Errorf("second request cursor = %v, want %q", got, "1")
	}
	if requests[1].Variables["username"] != "octocat" {
		t.Errorf("second request lost its variables: %v", requests[1].Variables)
	}
	if mock.GetMaxInFlight() != 1 {
		t.Errorf("max in-flight = %d, want 1", mock.GetMaxInFlight())
	}
}

func TestPageFetch_FirstPageNotFound(t *testing.T) {
	f, mock := setupFetcher(t, Config{})
	mock.SetHandler("GetRepos", func(w http.ResponseWriter, _ testutil.MockRequest) {
		testutil.WriteErrors(w, testutil.MockError{Type: "NOT_FOUND", Message: "Could not resolve to a User"})
	})

	repos, err := PageFetch(context.Background(), f, newReposRequest("ghost"))
	if err != nil {
		t.Fatalf("PageFetch() error = %v", err)
	}
	if repos != nil {
		t.Errorf("PageFetch() = %v, want nil", repos)
	}
	if mock.GetRequestCount() != 1 {
		t.Errorf("requests = %d, want 1", mock.GetRequestCount())
	}
}

func TestPageFetch_EmptyConnection(t *testing.T) {
	f, mock := setupFetcher(t, Config{})
	mock.SetPages("GetRepos", `{"user":{"repositories":{"nodes":[],"pageInfo":{"hasNextPage":false,"cursor":null}}}}`)

	repos, err := PageFetch(context.Background(), f, newReposRequest("octocat"))
	if err != nil {
		t.Fatalf("PageFetch() error = %v", err)
	}
	if repos == nil {
		t.Fatal("PageFetch() = nil, want empty non-nil slice")
	}
	if len(repos) != 0 {
		t.Errorf("PageFetch() = %v, want empty", repos)
	}
}

func TestPageFetch_LaterPageErrorReturnsPartial(t *testing.T) {
	f, mock := setupFetcher(t, Config{})
	mock.SetHandler("GetRepos", func(w http.ResponseWriter, req testutil.MockRequest) {
		if _, ok := req.Variables[graphql.CursorVariable]; !ok {
			testutil.WriteData(w, reposPage0)
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	})

	repos, err := PageFetch(context.Background(), f, newReposRequest("octocat"))
	assertKind(t, err, apierror.KindServerError)
	if len(repos) != 2 {
		t.Errorf("partial result = %v, want [a b]", repos)
	}
}

func TestPageFetch_MissingCursorStops(t *testing.T) {
	f, mock := setupFetcher(t, Config{})
	mock.SetPages("GetRepos", `{"user":{"repositories":{"nodes":[{"name":"a"}],"pageInfo":{"hasNextPage":true,"cursor":null}}}}`)

	_, err := PageFetch(context.Background(), f, newReposRequest("octocat"))
	assertKind(t, err, apierror.KindParse)
	if mock.GetRequestCount() != 1 {
		t.Errorf("requests = %d, want 1", mock.GetRequestCount())
	}

	var parseErr *apierror.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("error %T is not *apierror.ParseError", err)
	}
	if !strings.Contains(string(parseErr.Payload), `"hasNextPage":true`) {
		t.Errorf("Payload = %q, want the page that announced the next page", parseErr.Payload)
	}
}

func TestRateLimit(t *testing.T) {
	f, mock := setupFetcher(t, Config{})
	mock.SetResponse(graphql.AnonymousOperation, testutil.NewDataResponse(
		`{"rateLimit":{"limit":5000,"cost":1,"remaining":4321,"used":679,"resetAt":"2026-10-17T12:00:00Z"}}`))

	rl, err := f.RateLimit(context.Background())
	if err != nil {
		t.Fatalf("RateLimit() error = %v", err)
	}
	if rl.Limit != 5000 || rl.Remaining != 4321 || rl.Used != 679 || rl.Cost != 1 {
		t.Errorf("RateLimit() = %+v", rl)
	}
	if rl.ResetAt.IsZero() {
		t.Error("ResetAt not decoded")
	}
	if got := mock.GetLastRequestHeader().Get("Authorization"); got != "Bearer test-token" {
		t.Errorf("Authorization = %q", got)
	}
}

func TestRateLimit_ClassifiesStatus(t *testing.T) {
	tests := []struct {
		status int
		want   apierror.Kind
	}{
		{status: http.StatusUnauthorized, want: apierror.KindBadCredentials},
		{status: http.StatusForbidden, want: apierror.KindAccessForbidden},
		{status: http.StatusInternalServerError, want: apierror.KindServerError},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			f, mock := setupFetcher(t, Config{})
			mock.SetResponse(graphql.AnonymousOperation, testutil.NewStatusResponse(tt.status, "nope"))

			rl, err := f.RateLimit(context.Background())
			if rl != nil {
				t.Errorf("RateLimit() = %+v, want nil", rl)
			}
			assertKind(t, err, tt.want)
		})
	}
}
