package model

import (
	"sort"
	"strings"

	"github.com/goccy/go-json"
)

// Timeframe is how soon the ramp needs to be installed.
type Timeframe string

const (
	TimeframeWithin24Hours Timeframe = "Within 24 hours"
	TimeframeWithin2Days   Timeframe = "Within 2 days"
	TimeframeWithin3Days   Timeframe = "Within 3 days"
	TimeframeWithin1Week   Timeframe = "Within 1 week"
	TimeframeOver1Week     Timeframe = "Over 1 week"
)

var timeframes = []Timeframe{
	TimeframeWithin24Hours,
	TimeframeWithin2Days,
	TimeframeWithin3Days,
	TimeframeWithin1Week,
	TimeframeOver1Week,
}

// Timeframes lists the accepted installation timeframes in display order.
func Timeframes() []Timeframe {
	return append([]Timeframe(nil), timeframes...)
}

// Valid reports whether t is one of the accepted timeframes.
func (t Timeframe) Valid() bool {
	for _, candidate := range timeframes {
		if t == candidate {
			return true
		}
	}
	return false
}

// Aid is a mobility aid identifier.
type Aid string

const (
	AidWheelchair       Aid = "wheelchair"
	AidMotorizedScooter Aid = "motorized_scooter"
	AidWalkerCane       Aid = "walker_cane"
	AidNone             Aid = "none"
)

var aids = []Aid{AidWheelchair, AidMotorizedScooter, AidWalkerCane, AidNone}

var aidLabels = map[Aid]string{
	AidWheelchair:       "Wheelchair",
	AidMotorizedScooter: "Motorized scooter",
	AidWalkerCane:       "Walker/cane",
	AidNone:             "None",
}

// Aids lists the known mobility aids in display order.
func Aids() []Aid {
	return append([]Aid(nil), aids...)
}

// Valid reports whether a is a known mobility aid.
func (a Aid) Valid() bool {
	_, ok := aidLabels[a]
	return ok
}

// Label returns the human readable name, falling back to the raw value.
func (a Aid) Label() string {
	if label, ok := aidLabels[a]; ok {
		return label
	}
	return string(a)
}

// ParseAid accepts either the identifier or the display label.
func ParseAid(raw string) Aid {
	trimmed := strings.TrimSpace(raw)
	for _, aid := range aids {
		if strings.EqualFold(trimmed, string(aid)) || strings.EqualFold(trimmed, aidLabels[aid]) {
			return aid
		}
	}
	return Aid(trimmed)
}

// AidSet holds the selected mobility aids. Membership is all that matters, so
// duplicates cannot exist.
type AidSet map[Aid]struct{}

// NewAidSet builds a set from the given aids.
func NewAidSet(values ...Aid) AidSet {
	set := make(AidSet, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// Has reports whether aid is selected.
func (s AidSet) Has(aid Aid) bool {
	_, ok := s[aid]
	return ok
}

// Toggle flips membership of aid and returns the resulting set. A nil set is
// allocated on demand.
func (s AidSet) Toggle(aid Aid) AidSet {
	if s == nil {
		s = AidSet{}
	}
	if _, ok := s[aid]; ok {
		delete(s, aid)
		return s
	}
	s[aid] = struct{}{}
	return s
}

// Clone copies the set.
func (s AidSet) Clone() AidSet {
	out := make(AidSet, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}

// Slice returns the members with known aids first in display order, followed
// by any unknown values sorted lexically.
func (s AidSet) Slice() []Aid {
	if len(s) == 0 {
		return []Aid{}
	}
	out := make([]Aid, 0, len(s))
	for _, aid := range aids {
		if s.Has(aid) {
			out = append(out, aid)
		}
	}
	var unknown []string
	for aid := range s {
		if !aid.Valid() {
			unknown = append(unknown, string(aid))
		}
	}
	sort.Strings(unknown)
	for _, raw := range unknown {
		out = append(out, Aid(raw))
	}
	return out
}

// Strings returns Slice as plain strings.
func (s AidSet) Strings() []string {
	members := s.Slice()
	out := make([]string, len(members))
	for i, aid := range members {
		out[i] = string(aid)
	}
	return out
}

// MarshalJSON encodes the set as an ordered array.
func (s AidSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Strings())
}

// UnmarshalJSON decodes an array of aid identifiers.
func (s *AidSet) UnmarshalJSON(data []byte) error {
	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	set := make(AidSet, len(raw))
	for _, value := range raw {
		set[ParseAid(value)] = struct{}{}
	}
	*s = set
	return nil
}
