// Reposcout - Repository Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reposcout

// Package recommend implements the repository recommendation cascade.
//
// # Architecture
//
// Recommendations are produced by walking an ordered cascade of tiers,
// each cheaper and less personalized than the one before it:
//
//   - Pool: per-user candidate pool prefetched from the remote source
//   - Cluster: precomputed shortlist for the user's primary interest cluster
//   - Hybrid: repositories related to the user's saved and liked repositories
//   - Trending: recently created repositories ranked by stars (last resort)
//
// Each tier only fills the gap left by the tiers before it. Once the
// accumulated result reaches the requested count, or a tier's floor, the
// cascade stops. Results served from the trending tier mark the whole set
// as degraded since they carry no personalization.
//
// # Design Principles
//
//   - Degrade, don't fail: missing preferences fall back to defaults, tier
//     errors skip the tier, and total exhaustion yields an empty Set with a
//     nil error
//   - No repeats: repositories the user has already seen, or that an earlier
//     tier already contributed, are excluded from every later tier
//   - Surface the long tail: repositories over the popularity cap are
//     filtered out unless the user explicitly prefers popular projects
//   - Bounded latency: every remote call runs under the tier timeout
//
// # Usage
//
//	engine, err := recommend.NewEngine(cfg, recommend.Dependencies{
//	    Search:       searchClient,
//	    Preferences:  prefStore,
//	    Interactions: interactionStore,
//	    Scorer:       scorer,
//	    Clusters:     clusterIndex,
//	    Pool:         poolManager,
//	    Comparer:     comparer,
//	}, logger)
//
//	set, err := engine.GetRecommendations(ctx, userID, 10)
//
// # Thread Safety
//
// The engine is safe for concurrent use. Per-user state lives in the pool
// manager and cluster index, which carry their own locks; the engine itself
// holds no mutable state after construction apart from the optional hybrid
// source, which must be installed before serving traffic.
package recommend
