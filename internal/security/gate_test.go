package security

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/ozclean/submission-gateway/internal/models"
	"github.com/ozclean/submission-gateway/internal/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const browserUA = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

type recordedEvents struct {
	mu     sync.Mutex
	events []models.SecurityEvent
}

func (r *recordedEvents) RecordDenial(ctx context.Context, event *models.SecurityEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, *event)
	return nil
}

func (r *recordedEvents) reasons() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.events {
		out = append(out, e.Reason)
	}
	return out
}

func newTestGate(t *testing.T, maxRequests int) (*Gate, *recordedEvents) {
	t.Helper()

	limiter := ratelimit.NewFixedWindow(
		ratelimit.NewMemoryStore(),
		map[string]ratelimit.Rule{"quote": {MaxRequests: maxRequests, Window: time.Hour}},
		ratelimit.Rule{MaxRequests: 30, Window: time.Minute},
	)
	events := &recordedEvents{}
	gate := NewGate(limiter, []string{"https://www.example.com"}, time.Hour, 24*time.Hour, events)

	return gate, events
}

func postRequest(clientIP string) RequestInfo {
	return RequestInfo{
		Method:    http.MethodPost,
		Path:      "/submit/residential-quote",
		Body:      `{"fullName":"Jo Smith"}`,
		Origin:    "https://www.example.com",
		UserAgent: browserUA,
		ClientIP:  clientIP,
	}
}

func TestAllowsLegitimateRequest(t *testing.T) {
	gate, events := newTestGate(t, 5)

	decision, err := gate.Evaluate(context.Background(), postRequest("1.2.3.4"), "quote")
	require.NoError(t, err)

	assert.True(t, decision.Allowed)
	assert.Equal(t, ReasonNone, decision.Reason)
	require.NotNil(t, decision.RateLimit)
	assert.Equal(t, 4, decision.RateLimit.Remaining)
	assert.Empty(t, events.reasons())
}

func TestBotUserAgentDeniedAndEscalated(t *testing.T) {
	gate, events := newTestGate(t, 5)
	ctx := context.Background()

	req := postRequest("1.2.3.4")
	req.UserAgent = "curl/8.4.0"

	decision, err := gate.Evaluate(ctx, req, "quote")
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, ReasonBotDetected, decision.Reason)
	assert.Equal(t, http.StatusForbidden, decision.Status)

	// A later request with a clean user-agent is still denied: the bot
	// detection quarantined the client, not just the request.
	decision, err = gate.Evaluate(ctx, postRequest("1.2.3.4"), "quote")
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, ReasonIPBlocked, decision.Reason)

	assert.Equal(t, []string{"bot-detected", "ip-blocked"}, events.reasons())
}

func TestMissingUserAgentTreatedAsBot(t *testing.T) {
	gate, _ := newTestGate(t, 5)

	req := postRequest("1.2.3.4")
	req.UserAgent = ""

	decision, err := gate.Evaluate(context.Background(), req, "quote")
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, ReasonBotDetected, decision.Reason)
}

func TestSuspiciousContentDenied(t *testing.T) {
	gate, _ := newTestGate(t, 5)
	ctx := context.Background()

	req := postRequest("9.9.9.9")
	req.Body = `{"message":"'; DROP TABLE submissions;--"}`

	decision, err := gate.Evaluate(ctx, req, "quote")
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, ReasonSuspicious, decision.Reason)

	pathProbe := postRequest("8.8.8.8")
	pathProbe.Path = "/submit/../../.env"
	pathProbe.Body = ""

	decision, err = gate.Evaluate(ctx, pathProbe, "quote")
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, ReasonSuspicious, decision.Reason)
}

func TestOriginChecks(t *testing.T) {
	gate, _ := newTestGate(t, 5)
	ctx := context.Background()

	// Unlisted origin on a write is denied
	req := postRequest("1.2.3.4")
	req.Origin = "https://evil.example.net"
	decision, err := gate.Evaluate(ctx, req, "quote")
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, ReasonInvalidOrigin, decision.Reason)

	// Referer works as a fallback
	req = postRequest("2.3.4.5")
	req.Origin = ""
	req.Referer = "https://www.example.com/quote"
	decision, err = gate.Evaluate(ctx, req, "quote")
	require.NoError(t, err)
	assert.True(t, decision.Allowed)

	// Same-origin requests carry no Origin header and are permitted
	req = postRequest("3.4.5.6")
	req.Origin = ""
	decision, err = gate.Evaluate(ctx, req, "quote")
	require.NoError(t, err)
	assert.True(t, decision.Allowed)

	// Reads skip the origin check entirely
	req = postRequest("4.5.6.7")
	req.Method = http.MethodGet
	req.Origin = "https://evil.example.net"
	decision, err = gate.Evaluate(ctx, req, "quote")
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

func TestRateLimitDenialAfterBudgetSpent(t *testing.T) {
	gate, events := newTestGate(t, 2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		decision, err := gate.Evaluate(ctx, postRequest("1.2.3.4"), "quote")
		require.NoError(t, err)
		require.True(t, decision.Allowed)
	}

	decision, err := gate.Evaluate(ctx, postRequest("1.2.3.4"), "quote")
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, ReasonRateLimited, decision.Reason)
	assert.Equal(t, http.StatusTooManyRequests, decision.Status)
	require.NotNil(t, decision.RateLimit)
	assert.Equal(t, 0, decision.RateLimit.Remaining)

	assert.Equal(t, []string{"rate-limited"}, events.reasons())
}
