package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"

	"github.com/naka-gawa/github-activity/internal/domain"
	"github.com/naka-gawa/github-activity/internal/gateway"
)

// ErrInvalidUsername is returned for usernames that cannot exist on
// GitHub. Such requests never reach the cache or the upstream API.
var ErrInvalidUsername = errors.New("invalid github username")

// usernamePattern follows GitHub's username rules: alphanumeric
// characters and single interior hyphens.
var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9](?:-?[a-zA-Z0-9])*$`)

const maxUsernameLength = 39

// ReportCache is the caching behavior the service depends on.
type ReportCache interface {
	GetOrCompute(key string, compute func() (domain.UserActivityReport, error)) (domain.UserActivityReport, error)
}

// Service is the use case answering user activity queries. It fronts
// the event gateway with a cache so bursts of requests for the same
// user hit the upstream API once per TTL window.
type Service struct {
	fetcher gateway.EventFetcher
	cache   ReportCache
	logger  *log.Logger
}

// NewService creates a new Service instance.
func NewService(fetcher gateway.EventFetcher, cache ReportCache, logger *log.Logger) *Service {
	return &Service{
		fetcher: fetcher,
		cache:   cache,
		logger:  logger,
	}
}

// UserActivity validates the username, then returns the cached report
// or fetches and aggregates a fresh one. Fetch failures propagate to
// every coalesced caller and are never cached.
func (s *Service) UserActivity(ctx context.Context, username string) (domain.UserActivityReport, error) {
	if username == "" || len(username) > maxUsernameLength || !usernamePattern.MatchString(username) {
		return domain.UserActivityReport{}, fmt.Errorf("%w: %q", ErrInvalidUsername, username)
	}
	return s.cache.GetOrCompute("activity:"+username, func() (domain.UserActivityReport, error) {
		s.logger.Printf("Cache miss for %s, fetching from GitHub...", username)
		events, err := s.fetcher.FetchUserEvents(ctx, username)
		if err != nil {
			return domain.UserActivityReport{}, err
		}
		return Summarize(username, events), nil
	})
}
