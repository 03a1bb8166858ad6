package poll

import "sync"

// Stopper is anything that can be stopped, typically a *Subscription.
type Stopper interface {
	Stop()
}

// Group holds the subscriptions owned by one mounted view.
type Group struct {
	mu      sync.Mutex
	subs    []Stopper
	stopped bool
}

// Add registers s. Adding to a stopped group stops s right away.
func (g *Group) Add(s Stopper) {
	g.mu.Lock()
	if g.stopped {
		g.mu.Unlock()
		s.Stop()
		return
	}
	g.subs = append(g.subs, s)
	g.mu.Unlock()
}

// StopAll stops every subscription of the group. Further calls do nothing.
func (g *Group) StopAll() {
	g.mu.Lock()
	subs := g.subs
	g.subs = nil
	g.stopped = true
	g.mu.Unlock()

	for _, s := range subs {
		s.Stop()
	}
}

// Len returns the number of live subscriptions.
func (g *Group) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.subs)
}
