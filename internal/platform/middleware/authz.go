// Copyright (c) 2026 Sentra. All rights reserved.
// Author: dev@sentra.id

// Package middleware provides the HTTP middleware chain for the Sentra API server.
//
// # Architecture
//
// Middleware intercepts incoming HTTP requests to apply global policies
// before they reach the domain handlers. This includes cross-cutting concerns
// like Logging, AuthZ/AuthN, Rate Limiting, and CORS.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/sentra-id/sentra/internal/platform/apperr"
	"github.com/sentra-id/sentra/internal/platform/ctxutil"
	"github.com/sentra-id/sentra/internal/platform/respond"
	"github.com/sentra-id/sentra/internal/platform/sec"
)

// AccessValidator resolves a presented access token into a caller identity.
//
// # Why an interface?
//
// Defining AccessValidator here decouples the middleware from the session
// manager implementation, allowing us to easily inject stubs during unit
// testing. The implementation must apply BOTH validity checks: presence in
// the session cache AND an independent signature/expiry decode.
type AccessValidator interface {
	ValidateAccess(ctx context.Context, token string) (*sec.Identity, error)
}

// Authenticate extracts and validates the bearer token from the Authorization header.
//
// # Flow
//  1. Check for 'Authorization: Bearer <token>' header.
//  2. If absent, request proceeds as anonymous.
//  3. If present, resolve via [AccessValidator] (cache presence + decode).
//  4. Inject [*sec.Identity] into the request context for downstream use.
//
// # Parameters
//   - validator: The AccessValidator instance.
//
// # Returns
//   - An [http.Handler] middleware.
func Authenticate(validator AccessValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			authHeader := request.Header.Get("Authorization")

			// ── 1. Anonymous Access ───────────────────────────────────────────
			if authHeader == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 2. Format Validation ──────────────────────────────────────────
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				respond.Error(writer, request, apperr.Unauthorized("Invalid authorization format"))
				return
			}

			// ── 3. Token Validation ───────────────────────────────────────────
			tokenStr := parts[1]
			identity, err := validator.ValidateAccess(request.Context(), tokenStr)
			if err != nil {
				respond.Error(writer, request, err)
				return
			}

			// ── 4. Context Injection ──────────────────────────────────────────
			ctx := ctxutil.WithIdentity(request.Context(), identity)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth blocks requests that are not authenticated.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate].
//
// # Flow
//  1. Check if [*sec.Identity] exists in context.
//  2. If missing, abort with HTTP 401 Unauthorized.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		identity := ctxutil.GetIdentity(request.Context())
		if identity == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// RequireAdmin blocks requests whose caller does not hold the admin role.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate]. It implies
// [RequireAuth] for anonymous callers, which still receive 401.
//
// # Existence Hiding
//
// Authenticated non-admins receive 404 Not Found rather than 403, so the
// admin surface is indistinguishable from a nonexistent route.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		identity := ctxutil.GetIdentity(request.Context())

		// ── 1. Authentication Check ───────────────────────────────────────
		if identity == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}

		// ── 2. Authorization Check ────────────────────────────────────────
		if !identity.Role.IsAdmin() {
			respond.Error(writer, request, apperr.NotFound("Resource"))
			return
		}

		next.ServeHTTP(writer, request)
	})
}
