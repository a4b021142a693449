// Package security composes the per-request allow/deny decision taken
// before any write is processed: IP quarantine, bot heuristic,
// suspicious-content heuristic, origin check and the per-action rate
// limit, evaluated in that order with the cheapest checks first.
package security

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/ozclean/submission-gateway/internal/models"
	"github.com/ozclean/submission-gateway/internal/ratelimit"
)

type Reason string

const (
	ReasonNone          Reason = "none"
	ReasonIPBlocked     Reason = "ip-blocked"
	ReasonBotDetected   Reason = "bot-detected"
	ReasonSuspicious    Reason = "suspicious-pattern"
	ReasonInvalidOrigin Reason = "invalid-origin"
	ReasonRateLimited   Reason = "rate-limited"
)

// The per-request verdict. RateLimit is populated only when the rate
// limiter ran, i.e. when every earlier check passed.
type Decision struct {
	Allowed   bool
	Reason    Reason
	Status    int
	RateLimit *ratelimit.Result
}

// What the gate needs to know about a request. Extracted up front so
// the gate can be exercised without an *http.Request.
type RequestInfo struct {
	Method    string
	Path      string
	RawQuery  string
	Body      string
	Origin    string
	Referer   string
	UserAgent string
	ClientIP  string
}

// Best-effort sink for denial records; failures must not affect the
// decision.
type EventRecorder interface {
	RecordDenial(ctx context.Context, event *models.SecurityEvent) error
}

type Gate struct {
	limiter         *ratelimit.FixedWindowLimiter
	allowedOrigins  []string
	botBlock        time.Duration
	suspiciousBlock time.Duration
	events          EventRecorder
}

func NewGate(limiter *ratelimit.FixedWindowLimiter, allowedOrigins []string, botBlock, suspiciousBlock time.Duration, events EventRecorder) *Gate {
	if botBlock <= 0 {
		botBlock = time.Hour
	}
	if suspiciousBlock <= 0 {
		suspiciousBlock = 24 * time.Hour
	}

	return &Gate{
		limiter:         limiter,
		allowedOrigins:  allowedOrigins,
		botBlock:        botBlock,
		suspiciousBlock: suspiciousBlock,
		events:          events,
	}
}

// The request budget for an action, for rate-limit response headers.
func (g *Gate) Limit(action string) int {
	return g.limiter.RuleFor(action).MaxRequests
}

// Runs the ordered checks for one request, short-circuiting on the
// first failure. Detected bots and exploit probes are also escalated
// into a quarantine that outlives the triggering request.
func (g *Gate) Evaluate(ctx context.Context, req RequestInfo, action string) (Decision, error) {
	blocked, _, err := g.limiter.IsBlocked(ctx, req.ClientIP)
	if err != nil {
		return Decision{}, err
	}
	if blocked {
		return g.deny(ctx, req, ReasonIPBlocked, http.StatusForbidden), nil
	}

	if matchesBotSignature(req.UserAgent) {
		if err := g.limiter.Block(ctx, req.ClientIP, g.botBlock); err != nil {
			log.Printf("security: failed to block client %s: %v", req.ClientIP, err)
		}
		return g.deny(ctx, req, ReasonBotDetected, http.StatusForbidden), nil
	}

	content := req.Path + "?" + req.RawQuery + " " + req.Body
	if matchesSuspiciousSignature(content) {
		// A probe is a stronger signal than a bot UA, so the block
		// lasts longer.
		if err := g.limiter.Block(ctx, req.ClientIP, g.suspiciousBlock); err != nil {
			log.Printf("security: failed to block client %s: %v", req.ClientIP, err)
		}
		return g.deny(ctx, req, ReasonSuspicious, http.StatusForbidden), nil
	}

	if req.Method != http.MethodGet && req.Method != http.MethodHead && req.Method != http.MethodOptions {
		if !g.originAllowed(req) {
			return g.deny(ctx, req, ReasonInvalidOrigin, http.StatusForbidden), nil
		}
	}

	result, err := g.limiter.CheckAndConsume(ctx, req.ClientIP, action)
	if err != nil {
		return Decision{}, err
	}

	if !result.Allowed {
		decision := g.deny(ctx, req, ReasonRateLimited, http.StatusTooManyRequests)
		decision.RateLimit = &result
		return decision, nil
	}

	return Decision{Allowed: true, Reason: ReasonNone, Status: http.StatusOK, RateLimit: &result}, nil
}

// Same-origin requests carry no Origin header and are permitted; when a
// header is present it must match the allowlist, with Referer as the
// fallback.
func (g *Gate) originAllowed(req RequestInfo) bool {
	origin := req.Origin
	if origin == "" {
		origin = req.Referer
	}
	if origin == "" {
		return true
	}

	for _, allowed := range g.allowedOrigins {
		if origin == allowed || strings.HasPrefix(origin, allowed+"/") {
			return true
		}
	}
	return false
}

// Every denial is logged and recorded; the HTTP response deliberately
// carries a generic message only, so the reason stays internal.
func (g *Gate) deny(ctx context.Context, req RequestInfo, reason Reason, status int) Decision {
	log.Printf("security: denied %s %s from %s (%s)", req.Method, req.Path, req.ClientIP, reason)

	if g.events != nil {
		event := &models.SecurityEvent{
			Timestamp: time.Now().UTC(),
			ClientIP:  req.ClientIP,
			Reason:    string(reason),
			Method:    req.Method,
			Path:      req.Path,
			UserAgent: req.UserAgent,
		}
		if err := g.events.RecordDenial(ctx, event); err != nil {
			log.Printf("security: failed to record denial: %v", err)
		}
	}

	return Decision{Allowed: false, Reason: reason, Status: status}
}
