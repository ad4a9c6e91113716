package model

// FreshnessTier classifies how recently a pair's offset last changed.
// Tiers are ordered from freshest to least informative; the zero value is
// JustChanged.
type FreshnessTier int

const (
	JustChanged FreshnessTier = iota
	Recent
	Aging
	Idle
	UnknownFirstSeen
	Missing
)

var tierNames = [...]string{
	JustChanged:      "JUST_CHANGED",
	Recent:           "RECENT",
	Aging:            "AGING",
	Idle:             "IDLE",
	UnknownFirstSeen: "UNKNOWN_FIRST_SEEN",
	Missing:          "MISSING",
}

// AllTiers lists every tier in order
func AllTiers() []FreshnessTier {
	return []FreshnessTier{JustChanged, Recent, Aging, Idle, UnknownFirstSeen, Missing}
}

func (t FreshnessTier) String() string {
	if t < 0 || int(t) >= len(tierNames) {
		return "UNKNOWN"
	}
	return tierNames[t]
}

// MarshalText lets tiers appear by name in JSON output
func (t FreshnessTier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// IsObserved reports whether the tier came from an actual observation
func (t FreshnessTier) IsObserved() bool {
	return t != Missing
}
