package monitoring

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/idea-research/internal/config"
)

const defaultCheckInterval = 5 * time.Minute

// Checker watches run health in the background. An alert is delivered
// once when its condition starts firing and again only after the condition
// has cleared and returned, so a long failure streak produces one webhook
// call rather than one per tick.
type Checker struct {
	collector *Collector
	alerter   *Alerter
	lookback  int
	interval  time.Duration

	mu     sync.Mutex
	firing map[AlertType]bool
}

// NewChecker creates a Checker from the monitoring config.
func NewChecker(collector *Collector, alerter *Alerter, cfg config.MonitoringConfig) *Checker {
	interval := time.Duration(cfg.CheckIntervalSecs) * time.Second
	if interval <= 0 {
		interval = defaultCheckInterval
	}
	return &Checker{
		collector: collector,
		alerter:   alerter,
		lookback:  cfg.LookbackWindowHours,
		interval:  interval,
		firing:    make(map[AlertType]bool),
	}
}

// Run checks once immediately, then every interval until ctx is done.
func (c *Checker) Run(ctx context.Context) {
	log := zap.L().With(zap.String("component", "monitoring.checker"))
	log.Info("monitoring: watching run health",
		zap.Duration("interval", c.interval),
		zap.Int("lookback_hours", c.lookback),
	)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		c.Check(ctx)
		select {
		case <-ctx.Done():
			log.Info("monitoring: checker stopped")
			return
		case <-ticker.C:
		}
	}
}

// Check collects one snapshot, delivers alerts that started firing since
// the previous check, and re-arms alerts that cleared. It returns the number
// of alerts delivered.
func (c *Checker) Check(ctx context.Context) int {
	log := zap.L().With(zap.String("component", "monitoring.checker"))
	snap, err := c.collector.Collect(ctx, c.lookback)
	if err != nil {
		log.Error("monitoring: collect run metrics", zap.Error(err))
		return 0
	}

	fresh := c.transition(c.alerter.Evaluate(snap))
	if len(fresh) == 0 {
		return 0
	}

	sent := c.alerter.SendAlerts(ctx, fresh)
	if sent < len(fresh) {
		// Undelivered alerts stay unarmed so the next check retries them.
		c.disarm(fresh)
	}
	log.Info("monitoring: alerts delivered",
		zap.Int("new", len(fresh)),
		zap.Int("sent", sent),
		zap.Int("runs_total", snap.RunsTotal),
		zap.Int("runs_stalled", snap.RunsStalled),
	)
	return sent
}

// transition records which alert types are firing now and returns the
// alerts that were not firing at the previous check.
func (c *Checker) transition(alerts []Alert) []Alert {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := make(map[AlertType]bool, len(alerts))
	var fresh []Alert
	for _, a := range alerts {
		now[a.Type] = true
		if !c.firing[a.Type] {
			fresh = append(fresh, a)
		}
	}
	for t := range c.firing {
		if !now[t] {
			zap.L().Info("monitoring: alert cleared", zap.String("type", string(t)))
		}
	}
	c.firing = now
	return fresh
}

// disarm forgets alerts so they are offered again on the next check.
// SendAlerts does not report which deliveries failed, so all of them are
// retried.
func (c *Checker) disarm(alerts []Alert) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, a := range alerts {
		delete(c.firing, a.Type)
	}
}
