package demand

import (
	"sort"

	"github.com/sirupsen/logrus"
)

type scoredBid struct {
	adnet   string
	bid     int64
	quality float64
	score   float64
}

// RunAuction settles the campaign allocation from the live bid pool.
// Each bidder is scored quality/bid (value per unit of budget demanded)
// and the highest score wins. The clearing budget follows a second-price
// rule generalized to the score metric: the winner's quality divided by
// the larger of the runner-up score and the reserve score 1/ReachImps.
// With no bids the campaign stays permanently unallocated. The auction
// runs once; later calls return the settled outcome without mutating
// anything.
func (c *Campaign) RunAuction() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.auctioned {
		return c.advertiser, c.allocated
	}
	c.auctioned = true
	if len(c.bids) == 0 {
		return "", false
	}

	ranked := make([]scoredBid, 0, len(c.bids))
	for adnet, bid := range c.bids {
		quality := c.quality.Score(adnet)
		ranked = append(ranked, scoredBid{
			adnet:   adnet,
			bid:     bid,
			quality: quality,
			score:   quality / float64(bid),
		})
	}
	// Stable sort by descending score; equal scores settle by ad
	// network id so the outcome never depends on map iteration order.
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].adnet < ranked[j].adnet
	})

	reserveScore := 1.0 / (reserveBudgetFactor * float64(c.contract.ReachImps))
	clearingScore := reserveScore
	if len(ranked) > 1 && ranked[1].score > clearingScore {
		clearingScore = ranked[1].score
	}

	winner := ranked[0]
	c.advertiser = winner.adnet
	c.budget = winner.quality / clearingScore
	c.allocated = true

	logrus.WithFields(logrus.Fields{
		"campaign": c.id,
		"winner":   winner.adnet,
		"bid":      winner.bid,
		"quality":  winner.quality,
		"budget":   c.budget,
		"bidders":  len(ranked),
	}).Info("campaign allocated")

	return c.advertiser, true
}
