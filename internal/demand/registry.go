package demand

import "sync"

// LimitSet is a platform message staging next-day delivery ceilings for
// a single campaign. It only takes effect when AdNet matches the
// campaign's winner.
type LimitSet struct {
	CampaignID      int     `json:"campaign_id"`
	AdNet           string  `json:"adnet"`
	BudgetLimit     float64 `json:"budget_limit"`
	ImpressionLimit float64 `json:"impression_limit"`
}

// Registry indexes campaigns by id and routes cross-campaign operations
// (limit messages, day rollover) to their owners. It replaces the
// event-bus fan-out of the original platform with explicit dispatch.
type Registry struct {
	mu        sync.RWMutex
	campaigns map[int]*Campaign
	order     []int
}

func NewRegistry() *Registry {
	return &Registry{campaigns: make(map[int]*Campaign)}
}

// Add registers a campaign. A second campaign with the same id is
// rejected.
func (r *Registry) Add(c *Campaign) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.campaigns[c.ID()]; exists {
		return false
	}
	r.campaigns[c.ID()] = c
	r.order = append(r.order, c.ID())
	return true
}

// Get looks up a campaign by id.
func (r *Registry) Get(id int) (*Campaign, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.campaigns[id]
	return c, ok
}

// All returns campaigns in registration order.
func (r *Registry) All() []*Campaign {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Campaign, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.campaigns[id])
	}
	return out
}

// Len returns the number of registered campaigns.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.campaigns)
}

// ApplyLimit delivers a limit-set message to its campaign. Messages for
// unknown campaigns or from non-winning networks are dropped silently.
func (r *Registry) ApplyLimit(msg LimitSet) {
	if c, ok := r.Get(msg.CampaignID); ok {
		c.ApplyLimit(msg.AdNet, msg.BudgetLimit, msg.ImpressionLimit)
	}
}

// AdvanceAll rolls every registered campaign over to the given day, in
// registration order. Campaigns whose start day the clock has not yet
// reached are left alone; they join the rollover sequence once their
// first active day has passed.
func (r *Registry) AdvanceAll(next int) {
	for _, c := range r.All() {
		if c.Day() < next {
			c.AdvanceToDay(next)
		}
	}
}
