// Package http holds the contract between the router and the bounded-context
// modules (webhook ingestion, tenant secrets, contacts, voice sync).
package http

import (
	"leadsync_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Module is a bounded context that mounts its own routes.
type Module interface {
	// Name is used in startup logs.
	Name() string
	RegisterRoutes(ctx *RouterContext)
}

// RouterContext hands modules the route groups and the shared webhook guards.
type RouterContext struct {
	// V1 is the public /api/v1 group. Inbound webhooks live here and
	// authenticate with tenant keys instead of JWTs.
	V1 *gin.RouterGroup
	// Protected is /api/v1 behind JWT auth; the tenant comes from the token.
	Protected *gin.RouterGroup
	// Admin is /api/v1/admin behind JWT auth and the admin role.
	Admin *gin.RouterGroup
	// WebhookRateLimiter bounds unauthenticated webhook traffic per client IP.
	WebhookRateLimiter *httpkit.WebhookRateLimiter
	// WebhookMaxBodyBytes caps inbound webhook bodies. Zero disables the cap.
	WebhookMaxBodyBytes int64
}
