// Reposcout - Repository Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reposcout

package search

import (
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/reposcout/internal/models"
)

const (
	// searchDateLayout is the date format GitHub's search syntax accepts.
	searchDateLayout = "2006-01-02"

	// trendingMinStars filters noise out of trending queries: a repository
	// created inside the window needs at least this many stars to count as
	// trending at all.
	trendingMinStars = 50

	// qualifierPublic restricts every query to public repositories.
	qualifierPublic = "is:public"
)

// buildSearchQuery renders a SearchQuery into GitHub's repository search
// syntax.
//
// Two renderings are deliberate and non-obvious:
//
//   - Only the first language becomes a language: qualifier. Repeated
//     language qualifiers AND together on the remote side and can never
//     match a single repository; local fit scoring re-ranks by the full
//     interest set anyway.
//   - A single topic is precise enough to qualify on. Multiple topics become
//     free-text terms instead, because topic: qualifiers also AND together
//     and requiring every tag starves the result set.
func buildSearchQuery(q models.SearchQuery) string {
	var b strings.Builder
	b.WriteString(qualifierPublic)

	for _, kw := range q.Keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			b.WriteByte(' ')
			b.WriteString(kw)
		}
	}

	if lang := firstNonEmpty(q.Languages); lang != "" {
		b.WriteString(" language:")
		b.WriteString(lang)
	}

	writeTopics(&b, nonEmpty(q.Topics))

	switch {
	case q.MinStars > 0 && q.MaxStars > 0:
		fmt.Fprintf(&b, " stars:%d..%d", q.MinStars, q.MaxStars)
	case q.MinStars > 0:
		fmt.Fprintf(&b, " stars:>=%d", q.MinStars)
	case q.MaxStars > 0:
		fmt.Fprintf(&b, " stars:<=%d", q.MaxStars)
	}

	if !q.PushedAfter.IsZero() {
		b.WriteString(" pushed:>")
		b.WriteString(q.PushedAfter.Format(searchDateLayout))
	}

	return b.String()
}

// buildTrendingQuery renders a trending request for one language: public
// repositories created since the window opened, with a star floor to filter
// noise. An empty language drops the qualifier.
func buildTrendingQuery(language string, since time.Time) string {
	var b strings.Builder
	b.WriteString(qualifierPublic)

	if language != "" {
		b.WriteString(" language:")
		b.WriteString(language)
	}

	fmt.Fprintf(&b, " created:>%s stars:>%d", since.Format(searchDateLayout), trendingMinStars)
	return b.String()
}

// buildRelatedQuery renders an adjacency search from the dominant language
// and topics of a seed set. Topic handling follows buildSearchQuery.
func buildRelatedQuery(language string, topics []string) string {
	var b strings.Builder
	b.WriteString(qualifierPublic)

	if language != "" {
		b.WriteString(" language:")
		b.WriteString(language)
	}

	writeTopics(&b, nonEmpty(topics))
	return b.String()
}

// buildClosedIssuesQuery counts closed issues for one repository. Pull
// requests are excluded; they inflate close rates without saying anything
// about issue hygiene.
func buildClosedIssuesQuery(fullName string) string {
	return fmt.Sprintf("repo:%s type:issue state:closed", fullName)
}

// writeTopics appends the shared topic rendering: one topic qualifies,
// several become free-text terms.
func writeTopics(b *strings.Builder, topics []string) {
	switch len(topics) {
	case 0:
	case 1:
		b.WriteString(" topic:")
		b.WriteString(topics[0])
	default:
		for _, t := range topics {
			b.WriteByte(' ')
			b.WriteString(t)
		}
	}
}

// firstNonEmpty returns the first non-blank entry, trimmed.
func firstNonEmpty(values []string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// nonEmpty filters blank entries, trimming the rest.
func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
