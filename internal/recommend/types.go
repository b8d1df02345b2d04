// Reposcout - Repository Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reposcout

package recommend

import (
	"time"

	"github.com/tomtom215/reposcout/internal/models"
)

// Tier names one level of the fallback cascade, ordered from most
// personalized to most generic.
type Tier string

const (
	TierPool     Tier = "pool"
	TierCluster  Tier = "cluster"
	TierHybrid   Tier = "hybrid"
	TierTrending Tier = "trending"
)

// Item is one recommended repository, annotated with the tier that produced
// it and a snapshot quality score.
type Item struct {
	Repository models.Repository `json:"repository"`
	Tier       Tier              `json:"tier"`
	Score      float64           `json:"score"`
}

// Set is a recommendation response. An empty Items slice is a valid terminal
// state, not an error: it means every tier was exhausted. Degraded is set
// when the trending tier contributed, meaning personalization ran dry and
// generic results were served.
type Set struct {
	Items       []Item    `json:"items"`
	Degraded    bool      `json:"degraded"`
	GeneratedAt time.Time `json:"generated_at"`
}

// HealthReport is a scored snapshot of a single repository. Partial is set
// when activity signals could not be fetched and the score was computed
// without them.
type HealthReport struct {
	Repository  models.Repository  `json:"repository"`
	Score       models.HealthScore `json:"score"`
	Signals     *models.AuxSignals `json:"signals,omitempty"`
	Partial     bool               `json:"partial"`
	GeneratedAt time.Time          `json:"generated_at"`
}
