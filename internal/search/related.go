// Reposcout - Repository Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reposcout

package search

import (
	"context"
	"sort"
	"strings"

	"github.com/google/go-github/v66/github"

	"github.com/tomtom215/reposcout/internal/models"
	"github.com/tomtom215/reposcout/internal/breaker"
)

// maxRelatedTopics caps how many seed topics feed the related query. More
// terms narrow a free-text search instead of widening it.
const maxRelatedTopics = 3

// Related finds repositories similar to the seeds by searching on the seeds'
// dominant topics and language. Seed repositories themselves are excluded
// from the result. Returns nil when the seeds carry no usable interests.
func (c *Client) Related(ctx context.Context, seeds []models.Repository, limit int) ([]models.Repository, error) {
	if len(seeds) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = c.cfg.PerPage
	}

	topics, language := seedInterests(seeds, maxRelatedTopics)
	if len(topics) == 0 && language == "" {
		return nil, nil
	}

	exclude := make(map[int64]struct{}, len(seeds))
	for _, seed := range seeds {
		exclude[seed.ID] = struct{}{}
	}

	rendered := buildRelatedQuery(language, topics)
	opts := &github.SearchOptions{
		Sort:  "stars",
		Order: "desc",
		ListOptions: github.ListOptions{
			Page: 1,
			// Over-fetch so excluding the seeds still fills the limit.
			PerPage: min(limit+len(seeds), maxPerPage),
		},
	}

	raw, err := c.call(ctx, "related", func() (interface{}, *github.Response, error) {
		res, resp, err := c.gh.Search.Repositories(ctx, rendered, opts)
		return res, resp, err
	})
	res, err := breaker.CastResult[github.RepositoriesSearchResult](raw, err)
	if err != nil {
		return nil, err
	}

	related := make([]models.Repository, 0, limit)
	for _, repo := range fromGitHubList(res.Repositories) {
		if _, seeded := exclude[repo.ID]; seeded {
			continue
		}
		related = append(related, repo)
		if len(related) == limit {
			break
		}
	}

	c.logger.Debug().Str("query", rendered).Int("seeds", len(seeds)).Int("results", len(related)).Msg("Related repositories fetched")
	return related, nil
}

// seedInterests extracts the most frequent topics and the dominant language
// from the seeds. Ties break lexicographically so the derived query is stable
// across runs.
func seedInterests(seeds []models.Repository, topicCap int) ([]string, string) {
	topicCounts := make(map[string]int)
	langCounts := make(map[string]int)
	for _, seed := range seeds {
		for _, topic := range seed.Topics {
			topic = strings.ToLower(strings.TrimSpace(topic))
			if topic != "" {
				topicCounts[topic]++
			}
		}
		if lang := strings.TrimSpace(seed.Language); lang != "" {
			langCounts[lang]++
		}
	}

	topics := make([]string, 0, len(topicCounts))
	for topic := range topicCounts {
		topics = append(topics, topic)
	}
	sort.Slice(topics, func(i, j int) bool {
		if topicCounts[topics[i]] != topicCounts[topics[j]] {
			return topicCounts[topics[i]] > topicCounts[topics[j]]
		}
		return topics[i] < topics[j]
	})
	if len(topics) > topicCap {
		topics = topics[:topicCap]
	}

	var language string
	best := 0
	langs := make([]string, 0, len(langCounts))
	for lang := range langCounts {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	for _, lang := range langs {
		if langCounts[lang] > best {
			best = langCounts[lang]
			language = lang
		}
	}

	return topics, language
}
