// Package insight turns raw GitHub activity and goal progress into the
// numbers the dashboard shows: activity stats, goal streaks and the monthly
// recap.
//
// Everything in this package is a pure function over already-fetched data.
// Nothing here reads the clock, the database or the network — the caller
// passes "now" (or the month of interest) explicitly. That keeps every result
// reproducible: the same inputs always produce the same output, so the
// functions are trivially testable and safe to call from concurrent requests.
package insight

import (
	"fmt"
	"strings"

	"github.com/sakif/mydevjourney/internal/model"
)

// event is the decoded, kind-specific view of a RawActivityEvent.
//
// Raw events arrive loosely typed: a kind tag plus a bag of optional payload
// fields. decode checks the tag once and produces one of the variants below,
// with missing fields already defaulted, so the rest of the package can
// switch on the Go type instead of re-inspecting strings.
type event interface {
	kind() string
	summary() string
}

type pushEvent struct {
	commits []model.Commit
}

type pullRequestEvent struct {
	action, title string
}

type issueEvent struct {
	action, title string
}

type createEvent struct {
	refType, ref string
}

type deleteEvent struct {
	refType, ref string
}

type watchEvent struct{}

type forkEvent struct{}

// otherEvent is any kind we have no dedicated summary for.
type otherEvent struct {
	label string
}

func (pushEvent) kind() string        { return model.KindPush }
func (pullRequestEvent) kind() string { return model.KindPullRequest }
func (issueEvent) kind() string       { return model.KindIssue }
func (createEvent) kind() string      { return model.KindCreate }
func (deleteEvent) kind() string      { return model.KindDelete }
func (watchEvent) kind() string       { return model.KindWatch }
func (forkEvent) kind() string        { return model.KindFork }
func (e otherEvent) kind() string     { return e.label }

func (e pushEvent) summary() string {
	return fmt.Sprintf("Pushed %d commit(s)", len(e.commits))
}

func (e pullRequestEvent) summary() string {
	return fmt.Sprintf("%s pull request: %s", e.action, e.title)
}

func (e issueEvent) summary() string {
	return fmt.Sprintf("%s issue: %s", e.action, e.title)
}

func (e createEvent) summary() string {
	return strings.TrimRight(fmt.Sprintf("Created %s %s", e.refType, e.ref), " ")
}

func (e deleteEvent) summary() string {
	return strings.TrimRight(fmt.Sprintf("Deleted %s %s", e.refType, e.ref), " ")
}

func (watchEvent) summary() string { return "Starred the repository" }

func (forkEvent) summary() string { return "Forked the repository" }

func (e otherEvent) summary() string {
	return strings.TrimSuffix(e.label, "Event")
}

// kindAliases maps both the short tags and GitHub's own event type names to
// the canonical short tag.
var kindAliases = map[string]string{
	model.KindPush:        model.KindPush,
	"PushEvent":           model.KindPush,
	model.KindPullRequest: model.KindPullRequest,
	"PullRequestEvent":    model.KindPullRequest,
	model.KindIssue:       model.KindIssue,
	"issues":              model.KindIssue,
	"IssuesEvent":         model.KindIssue,
	model.KindCreate:      model.KindCreate,
	"CreateEvent":         model.KindCreate,
	model.KindDelete:      model.KindDelete,
	"DeleteEvent":         model.KindDelete,
	model.KindWatch:       model.KindWatch,
	"WatchEvent":          model.KindWatch,
	model.KindFork:        model.KindFork,
	"ForkEvent":           model.KindFork,
}

func decode(raw model.RawActivityEvent) event {
	p := raw.Payload
	switch kindAliases[raw.Kind] {
	case model.KindPush:
		return pushEvent{commits: p.Commits}
	case model.KindPullRequest:
		return pullRequestEvent{action: p.Action, title: p.Title}
	case model.KindIssue:
		return issueEvent{action: p.Action, title: p.Title}
	case model.KindCreate:
		return createEvent{refType: p.RefType, ref: p.Ref}
	case model.KindDelete:
		return deleteEvent{refType: p.RefType, ref: p.Ref}
	case model.KindWatch:
		return watchEvent{}
	case model.KindFork:
		return forkEvent{}
	default:
		return otherEvent{label: raw.Kind}
	}
}

// Classify maps one raw activity-log entry to its display-ready form.
// It never fails: missing payload fields fall back to zero values.
func Classify(raw model.RawActivityEvent) model.NormalizedActivity {
	return normalize(raw, decode(raw))
}

func normalize(raw model.RawActivityEvent, ev event) model.NormalizedActivity {
	return model.NormalizedActivity{
		ID:         raw.ID,
		Kind:       ev.kind(),
		OccurredAt: raw.OccurredAt,
		Repository: raw.Repository,
		Summary:    ev.summary(),
	}
}
