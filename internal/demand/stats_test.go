package demand

import "testing"

func TestStatsAddAssociative(t *testing.T) {
	a := CampaignStats{TargetedImps: 1.5, OtherImps: 2, Cost: 0.25}
	b := CampaignStats{TargetedImps: 3, OtherImps: 0.5, Cost: 1}
	c := CampaignStats{TargetedImps: 0.25, OtherImps: 4, Cost: 2}

	left := a.Add(b).Add(c)
	right := a.Add(b.Add(c))
	if left != right {
		t.Fatalf("Add is not associative: %+v vs %+v", left, right)
	}
	if got := a.Add(CampaignStats{}); got != a {
		t.Fatalf("zero value is not the identity: %+v", got)
	}
}
