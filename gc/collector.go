// Package gc implements a cooperative, tick-driven resource collector.
//
// A Collector never runs on its own goroutine. The owner calls Collect from
// its frame loop (or an idle callback) at a point where no renderer holds
// a batch that references collectable resources.
package gc

import (
	"fmt"
	"time"

	"github.com/gogpu/gx"
)

// DefaultInterval is the default idle time after which a resource is stale.
const DefaultInterval = 60 * time.Second

// CollectFunc releases resource and reports whether it was collected.
// Resources that are not collected stay tracked and are offered again on
// the next pass.
type CollectFunc[K comparable] func(resource K) bool

type registration[K comparable] struct {
	kind     string
	interval time.Duration
	collect  CollectFunc[K]
}

type entry struct {
	kind     string
	lastUsed time.Time
}

// Stats reports collector activity.
type Stats struct {
	Tracked   int
	Passes    uint64
	Collected uint64
}

// String returns a human-readable summary.
func (s Stats) String() string {
	return fmt.Sprintf("GC[%d tracked, %d passes, %d collected]", s.Tracked, s.Passes, s.Collected)
}

// Option configures a Collector.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock sets the time source. Tests use it to drive collection
// deterministically.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// Collector tracks resources by kind and last-use time. It is not safe for
// concurrent use; all calls must come from the frame-processing goroutine.
type Collector[K comparable] struct {
	now     func() time.Time
	running bool

	collectors []registration[K]
	resources  map[K]*entry
	stats      Stats
}

// New creates a stopped collector.
func New[K comparable](opts ...Option) *Collector[K] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Collector[K]{
		now:       o.now,
		resources: make(map[K]*entry),
	}
}

// Register installs the collect callback for kind. Resources of that kind
// become stale once they have not been touched for interval. Registering
// the same kind again replaces the previous registration.
func (c *Collector[K]) Register(kind string, interval time.Duration, collect CollectFunc[K]) {
	for i := range c.collectors {
		if c.collectors[i].kind == kind {
			c.collectors[i] = registration[K]{kind, interval, collect}
			return
		}
	}
	c.collectors = append(c.collectors, registration[K]{kind, interval, collect})
	gx.Logger().Debug("gc: collector registered", "kind", kind, "interval", interval)
}

// Add starts tracking resource under kind with the current time.
func (c *Collector[K]) Add(kind string, resource K) {
	c.resources[resource] = &entry{kind: kind, lastUsed: c.now()}
}

// Touch marks resource as used now. Untracked resources are ignored.
func (c *Collector[K]) Touch(resource K) {
	if e, ok := c.resources[resource]; ok {
		e.lastUsed = c.now()
	}
}

// Remove stops tracking resource without calling its collector.
func (c *Collector[K]) Remove(resource K) {
	delete(c.resources, resource)
}

// Tracked reports whether resource is tracked.
func (c *Collector[K]) Tracked(resource K) bool {
	_, ok := c.resources[resource]
	return ok
}

// Len returns the number of tracked resources.
func (c *Collector[K]) Len() int { return len(c.resources) }

// Start enables collection and runs one pass.
func (c *Collector[K]) Start() {
	c.running = true
	c.Collect()
}

// Stop disables collection. Tracking continues.
func (c *Collector[K]) Stop() { c.running = false }

// Running reports whether the collector is started. A nil collector is
// never running.
func (c *Collector[K]) Running() bool { return c != nil && c.running }

// Collect runs one pass if the collector is started. A resource is stale
// when its last use plus its kind's interval is before now. It returns the
// number of resources collected. Collect on a nil collector does nothing.
func (c *Collector[K]) Collect() int {
	if c == nil || !c.running {
		return 0
	}
	c.stats.Passes++
	n := 0
	for _, reg := range c.collectors {
		now := c.now()
		for res, e := range c.resources {
			if e.kind != reg.kind || !e.lastUsed.Add(reg.interval).Before(now) {
				continue
			}
			if reg.collect(res) {
				delete(c.resources, res)
				n++
			}
		}
	}
	c.stats.Collected += uint64(n)
	return n
}

// ForceCollectAll offers every tracked resource to its kind's collector
// regardless of age or running state.
func (c *Collector[K]) ForceCollectAll() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, reg := range c.collectors {
		for res, e := range c.resources {
			if e.kind == reg.kind && reg.collect(res) {
				delete(c.resources, res)
				n++
			}
		}
	}
	c.stats.Collected += uint64(n)
	return n
}

// Stats returns a snapshot of collector activity.
func (c *Collector[K]) Stats() Stats {
	if c == nil {
		return Stats{}
	}
	s := c.stats
	s.Tracked = len(c.resources)
	return s
}
