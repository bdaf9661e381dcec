package sim

import "sync"

// Bank tracks each ad network's running balance: impression costs are
// debited as they are bought, campaign revenue is credited at the
// end-of-window broadcast. It is the simulation's RevenueListener.
type Bank struct {
	mu       sync.Mutex
	balances map[string]float64
}

func NewBank() *Bank {
	return &Bank{balances: make(map[string]float64)}
}

// CampaignEnded credits the effective campaign revenue to the winner.
func (b *Bank) CampaignEnded(campaignID int, adnet string, revenue float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.balances[adnet] += revenue
}

// Debit charges delivery cost against an ad network.
func (b *Bank) Debit(adnet string, amount float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.balances[adnet] -= amount
}

// Balance returns the current balance (zero for unknown networks).
func (b *Bank) Balance(adnet string) float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.balances[adnet]
}

// Snapshot copies the balance table.
func (b *Bank) Snapshot() map[string]float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[string]float64, len(b.balances))
	for adnet, bal := range b.balances {
		out[adnet] = bal
	}
	return out
}
