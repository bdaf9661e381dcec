package sim

import (
	"sort"

	"adx/internal/demand"
	"adx/internal/metrics"
)

// Exchange clears one per-query second-price auction among the agents'
// active campaigns and routes the won impression into the winning
// campaign's accounting.
type Exchange struct {
	reserveCPM float64
	bank       *Bank
}

func NewExchange(reserveCPM float64, bank *Bank) *Exchange {
	return &Exchange{reserveCPM: reserveCPM, bank: bank}
}

type queryBid struct {
	agent    *AdNetwork
	campaign *demand.Campaign
	cpm      float64
}

// RunQueryAuction collects CPM bids for the query, settles at the
// larger of the runner-up bid and the reserve, and delivers the
// impression. Returns false when no bid meets the reserve.
func (e *Exchange) RunQueryAuction(q Query, agents []*AdNetwork) bool {
	var bids []queryBid
	for _, agent := range agents {
		cpm, campaign, ok := agent.CPMBid(q)
		if !ok || cpm < e.reserveCPM {
			continue
		}
		bids = append(bids, queryBid{agent: agent, campaign: campaign, cpm: cpm})
	}
	if len(bids) == 0 {
		return false
	}
	sort.SliceStable(bids, func(i, j int) bool {
		if bids[i].cpm != bids[j].cpm {
			return bids[i].cpm > bids[j].cpm
		}
		return bids[i].agent.Name < bids[j].agent.Name
	})

	price := e.reserveCPM
	if len(bids) > 1 && bids[1].cpm > price {
		price = bids[1].cpm
	}

	winner := bids[0]
	winner.campaign.Impress(q.User.Segments, q.AdType, q.Device, price)
	e.bank.Debit(winner.agent.Name, price/1000.0)
	metrics.ImpressionsDelivered.Inc()

	// Every participant sees the clearing price and refines its model.
	for _, b := range bids {
		b.agent.ObserveClearing(q, price)
	}
	return true
}
