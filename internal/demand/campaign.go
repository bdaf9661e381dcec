package demand

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/sirupsen/logrus"
)

// Effective-reach curve constants. The ratio saturates below 1 as
// delivery exceeds the contracted reach.
const (
	errA = 4.08577
	errB = -3.08577
)

// Bids above reserveBudgetFactor*ReachImps are inadmissible.
const reserveBudgetFactor = 1.0

// RevenueListener receives the end-of-window revenue broadcast for an
// allocated campaign, fired together with the quality update.
type RevenueListener interface {
	CampaignEnded(campaignID int, adnet string, revenue float64)
}

// Contract holds the immutable terms of a campaign.
type Contract struct {
	ReachImps      int64      `json:"reach_imps"`
	DayStart       int        `json:"day_start"`
	DayEnd         int        `json:"day_end"`
	TargetSegments SegmentSet `json:"target_segments"`
	VideoCoef      float64    `json:"video_coef"`
	MobileCoef     float64    `json:"mobile_coef"`
}

// Campaign is a time-boxed contract for a quota of targeted impressions.
// It owns its bid pool, the budget allocation auction, daily delivery
// accounting against server-set limits, and the end-of-window quality
// feedback. All exported methods are safe for concurrent use; the
// surrounding dispatcher still must not interleave mutations for one
// day with that day's rollover.
type Campaign struct {
	mu sync.Mutex

	id       int
	contract Contract

	quality QualityManager
	revenue RevenueListener

	bids      map[string]int64
	auctioned bool

	// Set once the allocation auction (or an initial allocation) picks a
	// winner. Never reverts.
	allocated  bool
	advertiser string
	budget     float64

	day      int
	todays   CampaignStats
	totals   CampaignStats
	dayStats map[int]CampaignStats

	budgetLimit          float64
	impLimit             float64
	tomorrowsBudgetLimit float64
	tomorrowsImpLimit    float64

	// One-shot latch for the terminal quality feedback.
	ended bool
}

// NewCampaign builds an unallocated campaign positioned at the start of
// its delivery window. The revenue listener may be nil.
func NewCampaign(id int, contract Contract, quality QualityManager, revenue RevenueListener) (*Campaign, error) {
	if quality == nil {
		return nil, errors.New("demand: quality manager is required")
	}
	if contract.ReachImps < 0 {
		return nil, fmt.Errorf("demand: negative reach %d", contract.ReachImps)
	}
	if contract.DayStart > contract.DayEnd {
		return nil, fmt.Errorf("demand: day window [%d, %d] is inverted", contract.DayStart, contract.DayEnd)
	}
	if contract.VideoCoef <= 0 || contract.MobileCoef <= 0 {
		return nil, fmt.Errorf("demand: coefficients must be positive (video=%v mobile=%v)", contract.VideoCoef, contract.MobileCoef)
	}
	return &Campaign{
		id:                   id,
		contract:             contract,
		quality:              quality,
		revenue:              revenue,
		bids:                 make(map[string]int64),
		day:                  contract.DayStart,
		dayStats:             make(map[int]CampaignStats),
		budgetLimit:          math.Inf(1),
		impLimit:             math.Inf(1),
		tomorrowsBudgetLimit: math.Inf(1),
		tomorrowsImpLimit:    math.Inf(1),
	}, nil
}

func (c *Campaign) ID() int            { return c.id }
func (c *Campaign) Contract() Contract { return c.contract }

// AddAdvertiserBid records an ad network's offer for the whole campaign
// budget. Bids outside (0, ReachImps] are dropped without notice, as
// are bids arriving after the auction has run: the auction must observe
// a final bid set.
func (c *Campaign) AddAdvertiserBid(adnet string, budgetBid int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.auctioned {
		return
	}
	if budgetBid <= 0 || float64(budgetBid) > reserveBudgetFactor*float64(c.contract.ReachImps) {
		return
	}
	c.bids[adnet] = budgetBid
}

// BidCount returns the number of live bids.
func (c *Campaign) BidCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.bids)
}

// Allocate assigns the campaign to an ad network at full reach budget,
// bypassing the auction. Used for the initial campaigns handed to each
// network on day 0. No-op once allocated.
func (c *Campaign) Allocate(adnet string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.allocated || c.auctioned {
		return
	}
	c.auctioned = true
	c.allocated = true
	c.advertiser = adnet
	c.budget = float64(c.contract.ReachImps)
}

// IsAllocated reports whether a winner and budget have been settled.
func (c *Campaign) IsAllocated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.allocated
}

// IsActive reports whether the campaign is allocated and inside its
// delivery window.
func (c *Campaign) IsActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.allocated && c.day >= c.contract.DayStart && c.day <= c.contract.DayEnd
}

// Advertiser returns the winning ad network, or "" if unallocated.
func (c *Campaign) Advertiser() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.advertiser
}

// Budget returns the settled clearing budget, or 0 if unallocated.
func (c *Campaign) Budget() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.budget
}

// Day returns the campaign's current simulated day.
func (c *Campaign) Day() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.day
}

// RemainingDays counts the delivery days left, including today.
func (c *Campaign) RemainingDays() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.day > c.contract.DayEnd {
		return 0
	}
	cur := c.day
	if cur < c.contract.DayStart {
		cur = c.contract.DayStart
	}
	return c.contract.DayEnd - cur + 1
}

// Impress accounts one delivered impression. Unallocated or
// out-of-window deliveries are dropped: the platform does not bill
// outside the contracted window. Limits never reject an impression
// here; callers gate further delivery on IsOverTodaysLimit.
func (c *Campaign) Impress(userSegments SegmentSet, adType AdType, device Device, costPerMille float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.allocated || c.day < c.contract.DayStart || c.day > c.contract.DayEnd {
		return
	}
	c.todays.Cost += costPerMille / 1000.0

	imps := 1.0
	if device == DeviceMobile {
		imps *= c.contract.MobileCoef
	}
	if adType == AdTypeVideo {
		imps *= c.contract.VideoCoef
	}
	if userSegments.ContainsAll(c.contract.TargetSegments) {
		c.todays.TargetedImps += imps
	} else {
		c.todays.OtherImps += imps
	}
}

// IsOverTodaysLimit reports whether today's accumulated cost or targeted
// impressions exceed the server-set daily ceilings. Advisory: the
// per-query auction stops routing delivery once this turns true.
func (c *Campaign) IsOverTodaysLimit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.todays.Cost > c.budgetLimit || c.todays.TargetedImps > c.impLimit
}

// SetTomorrowsLimit stages the ceilings applied at the next rollover.
// Last write before the rollover wins.
func (c *Campaign) SetTomorrowsLimit(budgetLimit, impressionLimit float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tomorrowsBudgetLimit = budgetLimit
	c.tomorrowsImpLimit = impressionLimit
	logrus.WithFields(logrus.Fields{
		"campaign": c.id,
		"budget":   budgetLimit,
		"imps":     impressionLimit,
	}).Debug("staged tomorrow's limits")
}

// ApplyLimit routes a platform limit-set message. The message only
// takes effect when it names the winning ad network; anything else is
// ignored.
func (c *Campaign) ApplyLimit(adnet string, budgetLimit, impressionLimit float64) {
	c.mu.Lock()
	match := c.allocated && c.advertiser == adnet
	c.mu.Unlock()
	if match {
		c.SetTomorrowsLimit(budgetLimit, impressionLimit)
	}
}

// AdvanceToDay rolls the campaign over a day boundary: today's stats are
// archived and folded into the running totals, staged limits take
// effect, and the rollover that closes the delivery window reports the
// effective reach ratio to the quality manager exactly once.
// Calling with a non-increasing day is a scheduler bug and panics.
func (c *Campaign) AdvanceToDay(next int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if next <= c.day {
		panic(fmt.Sprintf("demand: campaign %d rollover to day %d but current day is %d", c.id, next, c.day))
	}

	c.dayStats[c.day] = c.todays
	c.totals = c.totals.Add(c.todays)
	c.todays = CampaignStats{}
	c.day = next

	c.budgetLimit = c.tomorrowsBudgetLimit
	c.tomorrowsBudgetLimit = math.Inf(1)
	c.impLimit = c.tomorrowsImpLimit
	c.tomorrowsImpLimit = math.Inf(1)

	if next == c.contract.DayEnd+1 && !c.ended {
		c.ended = true
		if c.allocated {
			ratio := c.effectiveReachRatio(c.totals.TargetedImps)
			c.quality.Update(c.advertiser, ratio)
			if c.revenue != nil {
				c.revenue.CampaignEnded(c.id, c.advertiser, ratio*c.budget)
			}
			logrus.WithFields(logrus.Fields{
				"campaign":   c.id,
				"advertiser": c.advertiser,
				"targeted":   c.totals.TargetedImps,
				"reach":      c.contract.ReachImps,
				"err":        ratio,
				"budget":     c.budget,
				"revenue":    ratio * c.budget,
			}).Info("campaign ended")
		}
	}
}

// effectiveReachRatio maps delivered targeted volume onto a bounded,
// monotonically increasing reward signal independent of contract size.
func (c *Campaign) effectiveReachRatio(targetedImps float64) float64 {
	ratio := targetedImps / float64(c.contract.ReachImps)
	return (2.0 / errA) * (math.Atan(errA*ratio+errB) - math.Atan(errB))
}

// TodayStats returns a snapshot of today's not-yet-rolled accumulators.
func (c *Campaign) TodayStats() CampaignStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.todays
}

// Totals returns the sum of all rolled-over days. Today's stats are
// excluded until the next rollover.
func (c *Campaign) Totals() CampaignStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totals
}

// Stats sums the archived per-day stats for days in [from, to], plus
// today's accumulators when the range covers the current day.
func (c *Campaign) Stats(from, to int) CampaignStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	var sum CampaignStats
	for d, s := range c.dayStats {
		if d >= from && d <= to {
			sum = sum.Add(s)
		}
	}
	if to >= c.day {
		sum = sum.Add(c.todays)
	}
	return sum
}
