// Reposcout - Repository Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reposcout

// Package auth provides JWT authentication for the HTTP API.
//
// The package covers three concerns:
//
//   - JWTManager: stateless HS256 token issuance and validation
//   - CredentialVerifier: admin username/password verification with
//     bcrypt hashing and a per-IP login rate limiter
//   - Middleware: bearer token extraction for chi route groups
//
// Tokens carry a user ID and a role. Role enforcement happens in the
// authz package; this package only establishes identity.
//
// Auth modes:
//
//   - "jwt": every API request needs a valid bearer token
//   - "none": authentication disabled, requests run as the anonymous user
//     (refused in production)
package auth
