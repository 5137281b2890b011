package usecase

import (
	"context"
	"io"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/naka-gawa/github-activity/internal/cache"
	"github.com/naka-gawa/github-activity/internal/domain"
	"github.com/naka-gawa/github-activity/internal/gateway"
)

// mockFetcher is a mock implementation of the gateway.EventFetcher interface.
// It allows us to simulate the GitHub gateway without real API calls.
type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) FetchUserEvents(ctx context.Context, username string) ([]domain.Event, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Event), args.Error(1)
}

func newTestService(t *testing.T, fetcher gateway.EventFetcher) *Service {
	t.Helper()
	reportCache := cache.New[domain.UserActivityReport](10*time.Minute, 100, clockwork.NewFakeClock())
	t.Cleanup(reportCache.Close)
	logger := log.New(io.Discard, "", 0)
	return NewService(fetcher, reportCache, logger)
}

func TestService_UserActivity_InvalidUsername(t *testing.T) {
	testCases := []struct {
		name     string
		username string
	}{
		{"empty", ""},
		{"leading hyphen", "-octocat"},
		{"trailing hyphen", "octocat-"},
		{"consecutive hyphens", "octo--cat"},
		{"illegal characters", "octo cat!"},
		{"too long", strings.Repeat("a", 40)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fetcher := new(mockFetcher)
			service := newTestService(t, fetcher)

			_, err := service.UserActivity(context.Background(), tc.username)

			assert.ErrorIs(t, err, ErrInvalidUsername)
			// Invalid usernames must fail fast: no upstream round-trip.
			fetcher.AssertNotCalled(t, "FetchUserEvents", mock.Anything, mock.Anything)
		})
	}
}

func TestService_UserActivity_CachesReports(t *testing.T) {
	fetcher := new(mockFetcher)
	fetcher.On("FetchUserEvents", mock.Anything, "octocat").Return([]domain.Event{
		{Type: "PushEvent", RepoFullName: "octocat/Hello-World"},
	}, nil).Once()
	service := newTestService(t, fetcher)

	first, err := service.UserActivity(context.Background(), "octocat")
	assert.NoError(t, err)
	second, err := service.UserActivity(context.Background(), "octocat")
	assert.NoError(t, err)

	assert.Equal(t, first, second)
	assert.True(t, first.Repositories[0].IsOwner)
	fetcher.AssertExpectations(t)
}

func TestService_UserActivity_ErrorsAreNotCached(t *testing.T) {
	fetcher := new(mockFetcher)
	fetchErr := &gateway.APIError{StatusCode: 500, Err: assert.AnError}
	fetcher.On("FetchUserEvents", mock.Anything, "ghost").Return(nil, fetchErr).Twice()
	service := newTestService(t, fetcher)

	_, err := service.UserActivity(context.Background(), "ghost")
	assert.ErrorIs(t, err, fetchErr)

	// The failure must not poison the cache; the next call retries upstream.
	_, err = service.UserActivity(context.Background(), "ghost")
	assert.ErrorIs(t, err, fetchErr)
	fetcher.AssertExpectations(t)
}

func TestService_UserActivity_PropagatesNotFound(t *testing.T) {
	fetcher := new(mockFetcher)
	fetcher.On("FetchUserEvents", mock.Anything, "missing").Return(nil, &gateway.NotFoundError{Username: "missing"}).Once()
	service := newTestService(t, fetcher)

	_, err := service.UserActivity(context.Background(), "missing")

	var notFound *gateway.NotFoundError
	assert.ErrorAs(t, err, &notFound)
	assert.Equal(t, "missing", notFound.Username)
	fetcher.AssertExpectations(t)
}
