package sim

import (
	"math/rand"

	"adx/internal/demand"
)

// Publisher is a site users visit. Popularity weights how often a query
// lands on it; the ratios shape the device and ad-type mix of its
// inventory.
type Publisher struct {
	Name        string  `json:"name"`
	Popularity  float64 `json:"popularity"`
	MobileRatio float64 `json:"mobile_ratio"`
	VideoRatio  float64 `json:"video_ratio"`
}

// DefaultCatalog is the fixed publisher roster every run starts from.
func DefaultCatalog() []Publisher {
	return []Publisher{
		{Name: "yahoo", Popularity: 0.16, MobileRatio: 0.42, VideoRatio: 0.27},
		{Name: "cnn", Popularity: 0.09, MobileRatio: 0.35, VideoRatio: 0.47},
		{Name: "nyt", Popularity: 0.08, MobileRatio: 0.33, VideoRatio: 0.22},
		{Name: "hfn", Popularity: 0.10, MobileRatio: 0.48, VideoRatio: 0.35},
		{Name: "msn", Popularity: 0.14, MobileRatio: 0.40, VideoRatio: 0.31},
		{Name: "fox", Popularity: 0.09, MobileRatio: 0.38, VideoRatio: 0.42},
		{Name: "amazon", Popularity: 0.12, MobileRatio: 0.45, VideoRatio: 0.13},
		{Name: "ebay", Popularity: 0.08, MobileRatio: 0.43, VideoRatio: 0.11},
		{Name: "webmd", Popularity: 0.07, MobileRatio: 0.36, VideoRatio: 0.19},
		{Name: "weather", Popularity: 0.07, MobileRatio: 0.52, VideoRatio: 0.16},
	}
}

// Query is one ad opportunity: a user arriving at a publisher on some
// device, with a slot of some ad type.
type Query struct {
	User      User
	Publisher string
	Device    demand.Device
	AdType    demand.AdType
}

// pickPublisher draws from the catalog proportionally to popularity.
func pickPublisher(catalog []Publisher, rng *rand.Rand) Publisher {
	total := 0.0
	for _, p := range catalog {
		total += p.Popularity
	}
	x := rng.Float64() * total
	for _, p := range catalog {
		x -= p.Popularity
		if x <= 0 {
			return p
		}
	}
	return catalog[len(catalog)-1]
}

// NewQuery simulates one user visit through the catalog.
func NewQuery(user User, catalog []Publisher, rng *rand.Rand) Query {
	p := pickPublisher(catalog, rng)
	q := Query{User: user, Publisher: p.Name, Device: demand.DeviceDesktop, AdType: demand.AdTypeText}
	if rng.Float64() < p.MobileRatio {
		q.Device = demand.DeviceMobile
	}
	if rng.Float64() < p.VideoRatio {
		q.AdType = demand.AdTypeVideo
	}
	return q
}
