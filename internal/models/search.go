// Reposcout - Repository Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reposcout

package models

import (
	"time"
)

// SearchQuery describes one repository search against the remote search
// service. Zero-valued fields are omitted from the remote query.
type SearchQuery struct {
	// Keywords are free-text terms.
	Keywords []string `json:"keywords,omitempty"`

	// Languages restricts results by primary language.
	Languages []string `json:"languages,omitempty"`

	// Topics restricts results by declared topic tags.
	Topics []string `json:"topics,omitempty"`

	// MinStars/MaxStars bound the star count. Zero means unbounded.
	MinStars int `json:"min_stars,omitempty"`
	MaxStars int `json:"max_stars,omitempty"`

	// PushedAfter restricts to repositories pushed since this time.
	PushedAfter time.Time `json:"pushed_after,omitempty"`

	// PerPage is the page size for this query.
	PerPage int `json:"per_page,omitempty"`
}

// TrendingQuery describes a generic trending-repositories request: recently
// created repositories ranked by stars within the window. Not personalized.
type TrendingQuery struct {
	// Window is how far back repository creation may date.
	Window time.Duration `json:"window"`

	// Languages optionally restricts by primary language.
	Languages []string `json:"languages,omitempty"`

	// Limit caps the number of results.
	Limit int `json:"limit,omitempty"`
}
