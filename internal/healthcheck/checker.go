// Package healthcheck periodically probes the external integrations the
// orchestrator fans out to, so /health can report which collaborators
// are reachable before a submission finds out the hard way.
package healthcheck

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"
)

type Status struct {
	Endpoint     string    `json:"endpoint"`
	IsHealthy    bool      `json:"is_healthy"`
	LastCheck    time.Time `json:"last_check"`
	LastSuccess  time.Time `json:"last_success,omitempty"`
	FailureCount int       `json:"failure_count"`
}

type Config struct {
	// Named integration endpoints to probe, e.g. "webhook" -> its URL.
	Endpoints   map[string]string
	Interval    time.Duration // How often to check (default: 60s)
	Timeout     time.Duration // Request timeout (default: 5s)
	MaxFailures int           // Failures before marking unhealthy (default: 3)
}

type Checker struct {
	mu       sync.RWMutex
	statuses map[string]*Status

	endpoints   map[string]string
	interval    time.Duration
	timeout     time.Duration
	maxFailures int
	stopChan    chan struct{}
	running     bool
}

func NewChecker(cfg Config) *Checker {
	if cfg.Interval <= 0 {
		cfg.Interval = 60 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 3
	}

	checker := &Checker{
		statuses:    make(map[string]*Status),
		endpoints:   cfg.Endpoints,
		interval:    cfg.Interval,
		timeout:     cfg.Timeout,
		maxFailures: cfg.MaxFailures,
		stopChan:    make(chan struct{}),
	}

	for name, url := range cfg.Endpoints {
		checker.statuses[name] = &Status{Endpoint: url, IsHealthy: true}
	}

	return checker
}

func (c *Checker) Start() {
	c.mu.Lock()
	if c.running || len(c.endpoints) == 0 {
		c.mu.Unlock()
		return
	}
	c.running = true
	c.mu.Unlock()

	go func() {
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		c.checkAll()
		for {
			select {
			case <-ticker.C:
				c.checkAll()
			case <-c.stopChan:
				return
			}
		}
	}()
}

func (c *Checker) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		close(c.stopChan)
		c.running = false
	}
}

func (c *Checker) checkAll() {
	for name, url := range c.endpoints {
		c.checkOne(name, url)
	}
}

func (c *Checker) checkOne(name, url string) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		c.record(name, false)
		return
	}

	resp, err := http.DefaultClient.Do(req)
	// Any response at all means the endpoint is reachable; auth errors
	// are expected for probes without credentials.
	if err != nil {
		c.record(name, false)
		return
	}
	resp.Body.Close()

	c.record(name, resp.StatusCode < 500)
}

func (c *Checker) record(name string, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	status, exists := c.statuses[name]
	if !exists {
		return
	}

	status.LastCheck = time.Now()
	if ok {
		status.LastSuccess = status.LastCheck
		status.FailureCount = 0
		status.IsHealthy = true
		return
	}

	status.FailureCount++
	if status.FailureCount >= c.maxFailures && status.IsHealthy {
		status.IsHealthy = false
		log.Printf("healthcheck: integration %s marked unhealthy", name)
	}
}

// Snapshot of all integration statuses.
func (c *Checker) Statuses() map[string]Status {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]Status, len(c.statuses))
	for name, status := range c.statuses {
		out[name] = *status
	}
	return out
}
