package demand

import (
	"encoding/json"
	"sort"
)

// Device is the device class an impression was served on.
type Device string

const (
	DeviceDesktop Device = "desktop"
	DeviceMobile  Device = "mobile"
)

// AdType is the creative format of a served impression.
type AdType string

const (
	AdTypeText  AdType = "text"
	AdTypeVideo AdType = "video"
)

// MarketSegment is an atomic audience attribute. A user carries one
// segment per axis (gender, age, income); a campaign targets any subset.
type MarketSegment string

const (
	SegmentMale       MarketSegment = "male"
	SegmentFemale     MarketSegment = "female"
	SegmentYoung      MarketSegment = "young"
	SegmentOld        MarketSegment = "old"
	SegmentLowIncome  MarketSegment = "low_income"
	SegmentHighIncome MarketSegment = "high_income"
)

// SegmentSet is an unordered set of market segments.
type SegmentSet map[MarketSegment]struct{}

func NewSegmentSet(segments ...MarketSegment) SegmentSet {
	s := make(SegmentSet, len(segments))
	for _, seg := range segments {
		s[seg] = struct{}{}
	}
	return s
}

// ContainsAll reports whether s covers every segment in other.
func (s SegmentSet) ContainsAll(other SegmentSet) bool {
	for seg := range other {
		if _, ok := s[seg]; !ok {
			return false
		}
	}
	return true
}

func (s SegmentSet) Slice() []MarketSegment {
	out := make([]MarketSegment, 0, len(s))
	for seg := range s {
		out = append(out, seg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s SegmentSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Slice())
}

func (s *SegmentSet) UnmarshalJSON(data []byte) error {
	var segs []MarketSegment
	if err := json.Unmarshal(data, &segs); err != nil {
		return err
	}
	*s = NewSegmentSet(segs...)
	return nil
}
