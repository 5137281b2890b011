// Package domain contains the core data structures and domain logic for the application.
package domain

import "time"

// Event is a single entry from the GitHub Events API, reduced to the
// fields the aggregation needs. Events are immutable once fetched.
// The event type is kept as an opaque string so new upstream event
// kinds are counted without code changes.
type Event struct {
	Type         string    `json:"type"`
	RepoFullName string    `json:"repo_full_name"`
	ActorLogin   string    `json:"actor_login"`
	CreatedAt    time.Time `json:"created_at"`
}

// ActivityType is one event kind together with its occurrence count.
type ActivityType struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// RepoActivity summarizes a user's activity on a single repository.
// TopActivityTypes holds at most three entries, ordered by count
// descending and type name ascending on ties.
type RepoActivity struct {
	RepositoryName   string         `json:"repository_name"`
	IsOwner          bool           `json:"is_owner"`
	TopActivityTypes []ActivityType `json:"top_activity_types"`
}

// UserActivityReport is the complete per-user summary.
// It is the core domain entity of this application.
// Repositories are ordered by total event count descending, with the
// repository full name breaking ties.
type UserActivityReport struct {
	Username          string         `json:"username"`
	Repositories      []RepoActivity `json:"repositories"`
	TotalRepositories int            `json:"total_repositories"`
	TotalEvents       int            `json:"total_events"`
}
