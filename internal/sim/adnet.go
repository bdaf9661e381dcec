package sim

import (
	"math"
	"math/rand"

	"adx/internal/demand"
)

// AdNetwork is a heuristic bidding agent competing for campaigns and
// then buying impressions on the exchange to fulfil them.
type AdNetwork struct {
	Name string

	rng       *rand.Rand
	estimator *Estimator
	campaigns []*demand.Campaign
}

func NewAdNetwork(name string, seed int64, estimatorDecay, initialCPM float64) *AdNetwork {
	return &AdNetwork{
		Name:      name,
		rng:       rand.New(rand.NewSource(seed)),
		estimator: NewEstimator(estimatorDecay, initialCPM),
	}
}

// BidForCampaign offers a total budget for an announced opportunity:
// a uniform draw over the admissible range (1, reach], scaled down when
// the agent already carries unfinished campaigns.
func (a *AdNetwork) BidForCampaign(c *demand.Campaign) int64 {
	reach := c.Contract().ReachImps
	if reach <= 0 {
		return 0
	}
	bid := 1 + a.rng.Int63n(reach)
	load := 0
	for _, owned := range a.campaigns {
		if owned.IsActive() {
			load++
		}
	}
	// A loaded agent demands a higher budget for the extra commitment.
	bid += int64(float64(reach) * 0.1 * float64(load))
	if bid > reach {
		bid = reach
	}
	return bid
}

// Won records a campaign this agent was allocated.
func (a *AdNetwork) Won(c *demand.Campaign) {
	a.campaigns = append(a.campaigns, c)
}

// Campaigns returns the campaigns this agent has been allocated.
func (a *AdNetwork) Campaigns() []*demand.Campaign {
	return a.campaigns
}

// CPMBid picks the campaign to serve for a query and prices the
// impression. The agent bids only for users matching a campaign's
// target, prefers the campaign furthest from its reach goal, and
// anchors the price on the smoothed clearing-CPM estimate, shaded up
// with urgency.
func (a *AdNetwork) CPMBid(q Query) (float64, *demand.Campaign, bool) {
	var best *demand.Campaign
	var bestNeed float64
	for _, c := range a.campaigns {
		if !c.IsActive() || c.IsOverTodaysLimit() {
			continue
		}
		if !q.User.Segments.ContainsAll(c.Contract().TargetSegments) {
			continue
		}
		need := float64(c.Contract().ReachImps) - c.Totals().TargetedImps - c.TodayStats().TargetedImps
		if need < 1 {
			need = 1
		}
		if best == nil || need > bestNeed {
			best, bestNeed = c, need
		}
	}
	if best == nil {
		return 0, nil, false
	}
	urgency := bestNeed / float64(best.Contract().ReachImps)
	if urgency > 1 {
		urgency = 1
	}
	bid := a.estimator.EstimateCPM(q) * (0.9 + 0.6*urgency)
	return bid, best, true
}

// ObserveClearing feeds an exchange outcome back into the estimator.
func (a *AdNetwork) ObserveClearing(q Query, clearingCPM float64) {
	a.estimator.Observe(q, clearingCPM)
}

// TomorrowLimits paces each active campaign: spread the remaining
// budget and reach evenly over the remaining days, with headroom so a
// strong day is not cut off mid-delivery.
func (a *AdNetwork) TomorrowLimits() []demand.LimitSet {
	var msgs []demand.LimitSet
	for _, c := range a.campaigns {
		days := c.RemainingDays() - 1 // limits apply from tomorrow
		if days <= 0 {
			continue
		}
		spent := c.Totals().Cost + c.TodayStats().Cost
		budgetLeft := c.Budget() - spent
		if budgetLeft < 0 {
			budgetLeft = 0
		}
		done := c.Totals().TargetedImps + c.TodayStats().TargetedImps
		impsLeft := float64(c.Contract().ReachImps) - done
		if impsLeft < 0 {
			impsLeft = 0
		}
		msgs = append(msgs, demand.LimitSet{
			CampaignID:      c.ID(),
			AdNet:           a.Name,
			BudgetLimit:     1.2 * budgetLeft / float64(days),
			ImpressionLimit: math.Ceil(1.2 * impsLeft / float64(days)),
		})
	}
	return msgs
}
