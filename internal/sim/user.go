package sim

import (
	"math/rand"

	"adx/internal/demand"
)

// User is a simulated audience member. Each user carries one market
// segment per attribute axis, drawn once at population setup.
type User struct {
	Segments demand.SegmentSet
}

// NewPopulation draws n users from independent uniform attribute axes.
func NewPopulation(n int, rng *rand.Rand) []User {
	users := make([]User, n)
	for i := range users {
		segs := make(demand.SegmentSet, 3)
		if rng.Intn(2) == 0 {
			segs[demand.SegmentMale] = struct{}{}
		} else {
			segs[demand.SegmentFemale] = struct{}{}
		}
		if rng.Intn(2) == 0 {
			segs[demand.SegmentYoung] = struct{}{}
		} else {
			segs[demand.SegmentOld] = struct{}{}
		}
		if rng.Intn(2) == 0 {
			segs[demand.SegmentLowIncome] = struct{}{}
		} else {
			segs[demand.SegmentHighIncome] = struct{}{}
		}
		users[i] = User{Segments: segs}
	}
	return users
}

// RandomTargetSegments picks a non-empty target of one or two atomic
// segments for a campaign opportunity, mirroring the contract mix of
// the original game.
func RandomTargetSegments(rng *rand.Rand) demand.SegmentSet {
	axes := [][2]demand.MarketSegment{
		{demand.SegmentMale, demand.SegmentFemale},
		{demand.SegmentYoung, demand.SegmentOld},
		{demand.SegmentLowIncome, demand.SegmentHighIncome},
	}
	rng.Shuffle(len(axes), func(i, j int) { axes[i], axes[j] = axes[j], axes[i] })

	count := 1 + rng.Intn(2)
	target := make(demand.SegmentSet, count)
	for _, axis := range axes[:count] {
		target[axis[rng.Intn(2)]] = struct{}{}
	}
	return target
}
