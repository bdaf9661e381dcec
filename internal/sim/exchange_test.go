package sim

import (
	"math"
	"testing"

	"adx/internal/demand"
)

// agentWithCampaign wires an allocated, active campaign onto a fresh
// agent so it bids on matching queries.
func agentWithCampaign(t *testing.T, name string, target demand.SegmentSet, initialCPM float64) *AdNetwork {
	t.Helper()
	agent := NewAdNetwork(name, 1, 0.1, initialCPM)
	c, err := demand.NewCampaign(1, demand.Contract{
		ReachImps:      1000,
		DayStart:       1,
		DayEnd:         5,
		TargetSegments: target,
		VideoCoef:      1.0,
		MobileCoef:     1.0,
	}, demand.NewQualityManager(0.4), nil)
	if err != nil {
		t.Fatalf("NewCampaign: %v", err)
	}
	c.Allocate(name)
	agent.Won(c)
	return agent
}

func matchingQuery() Query {
	return Query{
		User:      User{Segments: demand.NewSegmentSet(demand.SegmentFemale, demand.SegmentYoung, demand.SegmentHighIncome)},
		Publisher: "cnn",
		Device:    demand.DeviceDesktop,
		AdType:    demand.AdTypeText,
	}
}

func TestQueryAuctionSecondPrice(t *testing.T) {
	bank := NewBank()
	ex := NewExchange(10, bank)
	target := demand.NewSegmentSet(demand.SegmentFemale)

	high := agentWithCampaign(t, "high", target, 400)
	low := agentWithCampaign(t, "low", target, 200)

	if !ex.RunQueryAuction(matchingQuery(), []*AdNetwork{low, high}) {
		t.Fatalf("expected a delivery")
	}

	// Only the higher bidder's campaign received the impression, and it
	// paid a price derived from the loser's bid, not its own.
	if got := high.Campaigns()[0].TodayStats().TargetedImps; got != 1 {
		t.Fatalf("winner impressions: got %v", got)
	}
	if got := low.Campaigns()[0].TodayStats(); got != (demand.CampaignStats{}) {
		t.Fatalf("loser must not be charged, got %+v", got)
	}
	winnerCost := high.Campaigns()[0].TodayStats().Cost
	if winnerCost <= 0 {
		t.Fatalf("winner must pay, cost=%v", winnerCost)
	}
	ownBidCost := 400.0 * (0.9 + 0.6) / 1000.0 // upper bound: its own bid
	if winnerCost >= ownBidCost {
		t.Fatalf("winner paid its own bid: cost=%v", winnerCost)
	}
	if got := bank.Balance("high"); math.Abs(got+winnerCost) > 1e-9 {
		t.Fatalf("bank debit %v does not match campaign cost %v", got, winnerCost)
	}
}

func TestQueryAuctionRespectsReserve(t *testing.T) {
	bank := NewBank()
	ex := NewExchange(10_000, bank) // reserve above any bid
	target := demand.NewSegmentSet(demand.SegmentFemale)
	agent := agentWithCampaign(t, "a", target, 400)

	if ex.RunQueryAuction(matchingQuery(), []*AdNetwork{agent}) {
		t.Fatalf("no bid meets the reserve, auction must not clear")
	}
}

func TestQueryAuctionSingleBidderPaysReserve(t *testing.T) {
	bank := NewBank()
	ex := NewExchange(100, bank)
	target := demand.NewSegmentSet(demand.SegmentFemale)
	agent := agentWithCampaign(t, "a", target, 400)

	if !ex.RunQueryAuction(matchingQuery(), []*AdNetwork{agent}) {
		t.Fatalf("expected a delivery")
	}
	if got, want := agent.Campaigns()[0].TodayStats().Cost, 100.0/1000.0; math.Abs(got-want) > 1e-9 {
		t.Fatalf("single bidder must pay the reserve: got %v want %v", got, want)
	}
}

func TestQueryAuctionSkipsNonMatchingUsers(t *testing.T) {
	bank := NewBank()
	ex := NewExchange(10, bank)
	agent := agentWithCampaign(t, "a", demand.NewSegmentSet(demand.SegmentMale), 400)

	if ex.RunQueryAuction(matchingQuery(), []*AdNetwork{agent}) {
		t.Fatalf("agent must not bid for off-target users")
	}
}
