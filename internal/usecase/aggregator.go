// Package usecase contains the business logic of the application.
package usecase

import (
	"sort"
	"strings"

	"github.com/montanaflynn/stats"

	"github.com/naka-gawa/github-activity/internal/domain"
)

// topActivityLimit caps how many event types are reported per repository.
const topActivityLimit = 3

// Summarize converts a raw event stream into a ranked per-repository
// activity report. It is a total function: any input, including an
// empty or nil slice, yields a valid report. The output is
// deterministic for any permutation of events; ties are broken
// lexicographically so map iteration order never leaks into the result.
func Summarize(username string, events []domain.Event) domain.UserActivityReport {
	typeCounts := make(map[string]map[string]int)
	for _, ev := range events {
		if !strings.Contains(ev.RepoFullName, "/") {
			// Malformed repo identifier, nothing to attribute the event to.
			continue
		}
		counts, ok := typeCounts[ev.RepoFullName]
		if !ok {
			counts = make(map[string]int)
			typeCounts[ev.RepoFullName] = counts
		}
		counts[ev.Type]++
	}

	totalEvents := 0
	totals := make(map[string]int, len(typeCounts))
	repositories := make([]domain.RepoActivity, 0, len(typeCounts))
	for repoName, counts := range typeCounts {
		repoTotal := 0
		types := make([]domain.ActivityType, 0, len(counts))
		for eventType, count := range counts {
			types = append(types, domain.ActivityType{Type: eventType, Count: count})
			repoTotal += count
		}
		sort.Slice(types, func(i, j int) bool {
			if types[i].Count != types[j].Count {
				return types[i].Count > types[j].Count
			}
			return types[i].Type < types[j].Type
		})
		if len(types) > topActivityLimit {
			types = types[:topActivityLimit]
		}
		repositories = append(repositories, domain.RepoActivity{
			RepositoryName:   repoName,
			IsOwner:          isOwner(repoName, username),
			TopActivityTypes: types,
		})
		totals[repoName] = repoTotal
		totalEvents += repoTotal
	}

	// Busiest repository first, name as the deterministic tie-break.
	sort.Slice(repositories, func(i, j int) bool {
		ti := totals[repositories[i].RepositoryName]
		tj := totals[repositories[j].RepositoryName]
		if ti != tj {
			return ti > tj
		}
		return repositories[i].RepositoryName < repositories[j].RepositoryName
	})

	return domain.UserActivityReport{
		Username:          username,
		Repositories:      repositories,
		TotalRepositories: len(repositories),
		TotalEvents:       totalEvents,
	}
}

// isOwner reports whether the repository's owner segment matches the
// username. GitHub logins are case-insensitive, so the comparison is too.
func isOwner(repoFullName, username string) bool {
	owner, _, _ := strings.Cut(repoFullName, "/")
	return owner != "" && strings.EqualFold(owner, username)
}

// EventSpread returns the mean and median total event count across the
// given reports. Both are zero when there are no reports.
func EventSpread(reports []domain.UserActivityReport) (mean, median float64) {
	if len(reports) == 0 {
		return 0, 0
	}
	totals := make([]float64, 0, len(reports))
	for _, r := range reports {
		totals = append(totals, float64(r.TotalEvents))
	}
	mean, _ = stats.Mean(totals)
	median, _ = stats.Median(totals)
	return mean, median
}
