package http

import (
	"time"

	"github.com/carehome-actionplans/internal/application/actionplan"
	jwtinfra "github.com/carehome-actionplans/internal/infrastructure/jwt"
	"github.com/carehome-actionplans/internal/transport/http/handler"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	// Ports routes each category to its partition store.
	Ports       actionplan.Ports
	AckGuard    actionplan.AckGuard
	Publisher   actionplan.StatusPublisher // nil disables status-change events
	JWTProvider *jwtinfra.Provider
	// HealthChecks are pinged by /v1/health-check/ready.
	HealthChecks map[string]handler.Pinger
	AckTimeout   time.Duration
}
