package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(3, 100, time.Minute)

	// First requests within the per-second budget pass
	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("1.2.3.4"), "request %d should pass", i+1)
	}

	// The fourth in the same second trips the ban
	assert.False(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.IsBanned("1.2.3.4"))

	// Banned IPs stay rejected
	assert.False(t, rl.Allow("1.2.3.4"))

	// Other IPs are unaffected
	assert.True(t, rl.Allow("5.6.7.8"))
	assert.False(t, rl.IsBanned("5.6.7.8"))
}

func TestRateLimiter_MinuteBudget(t *testing.T) {
	rl := NewRateLimiter(1000, 5, time.Minute)

	for i := 0; i < 5; i++ {
		assert.True(t, rl.Allow("9.9.9.9"))
	}
	assert.False(t, rl.Allow("9.9.9.9"), "minute budget exhausted")
}

func TestOriginChecker(t *testing.T) {
	oc := NewOriginChecker([]string{"https://example.com"})

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Origin", "https://example.com")
	assert.True(t, oc.Check(req))

	// Matching is case-insensitive
	req.Header.Set("Origin", "HTTPS://EXAMPLE.COM")
	assert.True(t, oc.Check(req))

	req.Header.Set("Origin", "https://evil.com")
	assert.False(t, oc.Check(req))

	// No Origin header means a non-browser client, allowed
	req.Header.Del("Origin")
	assert.True(t, oc.Check(req))
}

func TestOriginChecker_Wildcard(t *testing.T) {
	oc := NewOriginChecker([]string{"*"})

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Origin", "https://anywhere.example")
	assert.True(t, oc.Check(req))
}

func TestGetClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5000"
	assert.Equal(t, "10.0.0.1", GetClientIP(req))

	// X-Real-IP beats the remote address
	req.Header.Set("X-Real-IP", "20.0.0.2")
	assert.Equal(t, "20.0.0.2", GetClientIP(req))

	// The first X-Forwarded-For hop beats everything
	req.Header.Set("X-Forwarded-For", "30.0.0.3, 40.0.0.4")
	assert.Equal(t, "30.0.0.3", GetClientIP(req))
}

func TestMessageRateLimiter(t *testing.T) {
	ml := NewMessageRateLimiter(4)

	// Under half the budget, silent
	allowed, warning := ml.AllowMessage("c1")
	assert.True(t, allowed)
	assert.False(t, warning)

	allowed, warning = ml.AllowMessage("c1")
	assert.True(t, allowed)
	assert.False(t, warning)

	// Past the warning threshold but under the cap
	allowed, warning = ml.AllowMessage("c1")
	assert.True(t, allowed)
	assert.True(t, warning)

	allowed, _ = ml.AllowMessage("c1")
	assert.True(t, allowed)

	// Over the cap
	allowed, warning = ml.AllowMessage("c1")
	assert.False(t, allowed)
	assert.True(t, warning)
	assert.Equal(t, 1, ml.GetWarningCount("c1"))

	// Removal wipes the record
	ml.RemoveClient("c1")
	assert.Equal(t, 0, ml.GetWarningCount("c1"))

	allowed, _ = ml.AllowMessage("c1")
	require.True(t, allowed)
}
