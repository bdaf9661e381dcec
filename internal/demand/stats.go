package demand

// CampaignStats accumulates delivered impressions and cost, either for a
// single day or aggregated over a range of days. Impression counts are
// fractional because video/mobile coefficients weight each delivery.
// The zero value is the additive identity.
type CampaignStats struct {
	TargetedImps float64 `json:"targeted_imps"`
	OtherImps    float64 `json:"other_imps"`
	Cost         float64 `json:"cost"`
}

// Add returns the component-wise sum. Addition is associative, so daily
// snapshots can be folded in any grouping.
func (s CampaignStats) Add(o CampaignStats) CampaignStats {
	return CampaignStats{
		TargetedImps: s.TargetedImps + o.TargetedImps,
		OtherImps:    s.OtherImps + o.OtherImps,
		Cost:         s.Cost + o.Cost,
	}
}
