// Package gateway provides a gateway to the GitHub Events API,
// abstracting away the underlying REST client.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"

	"github.com/naka-gawa/github-activity/internal/domain"
)

const eventsPerPage = 100

// EventFetcher defines the behavior of a gateway for fetching a user's
// recent public events from GitHub.
type EventFetcher interface {
	FetchUserEvents(ctx context.Context, username string) ([]domain.Event, error)
}

// GitHubGateway is the concrete implementation of the EventFetcher interface.
type GitHubGateway struct {
	client  *github.Client
	timeout time.Duration
	logger  *log.Logger
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
// token may be empty, in which case requests are unauthenticated and subject
// to the lower quota. baseURL overrides the API endpoint (GHES, test servers);
// empty means api.github.com. timeout bounds each FetchUserEvents call.
func NewGitHubGateway(token, baseURL string, timeout time.Duration, logger *log.Logger) (*GitHubGateway, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	transport := http.RoundTripper(rateLimitWaiter)
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		transport = &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		}
	}
	client := github.NewClient(&http.Client{Transport: transport})
	if baseURL != "" {
		parsed, err := url.Parse(strings.TrimSuffix(baseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("invalid github api base url %q: %w", baseURL, err)
		}
		client.BaseURL = parsed
	}
	return &GitHubGateway{
		client:  client,
		timeout: timeout,
		logger:  logger,
	}, nil
}

// FetchUserEvents retrieves the user's recent public events, following
// pagination until the API reports no further pages.
func (g *GitHubGateway) FetchUserEvents(ctx context.Context, username string) ([]domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	g.logger.Printf("Fetching recent events for %s...", username)
	opts := &github.ListOptions{PerPage: eventsPerPage}
	var events []domain.Event
	for {
		raw, resp, err := g.client.Activity.ListEventsPerformedByUser(ctx, username, true, opts)
		if err != nil {
			return nil, g.mapError(username, err)
		}
		for _, ev := range raw {
			events = append(events, domain.Event{
				Type:         ev.GetType(),
				RepoFullName: ev.GetRepo().GetName(),
				ActorLogin:   ev.GetActor().GetLogin(),
				CreatedAt:    ev.GetCreatedAt().Time,
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
		g.logger.Println("  Fetching next page of events...")
	}
	g.logger.Printf("Fetched %d events for %s.", len(events), username)
	return events, nil
}

// mapError translates go-github errors into the gateway error taxonomy.
func (g *GitHubGateway) mapError(username string, err error) error {
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		retryAfter := time.Until(rateErr.Rate.Reset.Time)
		if retryAfter < 0 {
			retryAfter = 0
		}
		return &RateLimitError{RetryAfter: retryAfter}
	}
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return &RateLimitError{RetryAfter: abuseErr.GetRetryAfter()}
	}
	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		status := respErr.Response.StatusCode
		switch status {
		case http.StatusNotFound:
			return &NotFoundError{Username: username}
		case http.StatusTooManyRequests:
			return &RateLimitError{RetryAfter: retryAfterHeader(respErr.Response)}
		}
		return &APIError{StatusCode: status, Err: err}
	}
	return &APIError{Err: fmt.Errorf("failed to list events: %w", err)}
}

func retryAfterHeader(resp *http.Response) time.Duration {
	secs, err := strconv.Atoi(resp.Header.Get("Retry-After"))
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
