// Reposcout - Repository Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reposcout

package search

import (
	"strings"

	"github.com/google/go-github/v66/github"

	"github.com/tomtom215/reposcout/internal/models"
)

// fromGitHub converts a go-github repository into the canonical snapshot.
// All accessors are nil-safe; absent facts become zero values.
func fromGitHub(r *github.Repository) models.Repository {
	repo := models.Repository{
		ID:             r.GetID(),
		FullName:       r.GetFullName(),
		Description:    r.GetDescription(),
		Language:       r.GetLanguage(),
		Topics:         r.Topics,
		Stars:          r.GetStargazersCount(),
		Forks:          r.GetForksCount(),
		OpenIssues:     r.GetOpenIssuesCount(),
		CreatedAt:      r.GetCreatedAt().Time,
		PushedAt:       r.GetPushedAt().Time,
		OwnerLogin:     r.GetOwner().GetLogin(),
		OwnerAvatarURL: r.GetOwner().GetAvatarURL(),
		HTMLURL:        r.GetHTMLURL(),
		Archived:       r.GetArchived(),

		// Search results cannot tell whether a README exists without one
		// extra request per repository. Assume present (the overwhelming
		// base rate) and let GetRepository verify on the health-report path.
		HasReadme: true,
	}

	if lic := r.GetLicense(); lic != nil {
		repo.License = lic.GetSPDXID()
		if repo.License == "" {
			repo.License = lic.GetName()
		}
	}

	return repo
}

// fromGitHubList converts a result page, dropping entries without a stable
// identifier.
func fromGitHubList(items []*github.Repository) []models.Repository {
	out := make([]models.Repository, 0, len(items))
	for _, item := range items {
		if item == nil || item.GetID() == 0 {
			continue
		}
		out = append(out, fromGitHub(item))
	}
	return out
}

// splitFullName splits "owner/name" for the endpoints addressed by path
// rather than ID.
func splitFullName(fullName string) (owner, name string, ok bool) {
	owner, name, ok = strings.Cut(fullName, "/")
	if !ok || owner == "" || name == "" {
		return "", "", false
	}
	return owner, name, true
}
