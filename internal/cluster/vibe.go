package cluster

import (
	"fmt"

	"github.com/theirongolddev/spendvibe/internal/model"
)

// Vibe labels.
const (
	VibeNightOwl      = "night-owl spending"
	VibeEarlyRiser    = "early riser"
	VibeImpulse       = "impulse shopping"
	VibeFixedOverhead = "fixed overhead"
	VibeEntertainment = "entertainment-driven"
)

// Profile is the dominant character of one cluster.
type Profile struct {
	TopParent     string
	TopParentKind model.ParentKind
	TopPeriod     model.TimePeriod
	AvgAmount     float64
}

type vibeRule struct {
	match func(p Profile, l Labeler) bool
	vibe  string
}

// vibeRules is evaluated top-down; the first match names the cluster.
var vibeRules = []vibeRule{
	{func(p Profile, _ Labeler) bool { return p.TopPeriod == model.NightLife }, VibeNightOwl},
	{func(p Profile, _ Labeler) bool { return p.TopPeriod == model.Breakfast }, VibeEarlyRiser},
	{func(p Profile, l Labeler) bool {
		return p.TopParentKind == model.ParentShopping && p.AvgAmount > l.ImpulseAmount
	}, VibeImpulse},
	{func(p Profile, _ Labeler) bool { return p.TopParentKind == model.ParentFixed }, VibeFixedOverhead},
	{func(p Profile, _ Labeler) bool { return p.TopParentKind == model.ParentEntertainment }, VibeEntertainment},
}

// Labeler names clusters from their profile.
type Labeler struct {
	ImpulseAmount float64
}

// Vibe returns the label of the first matching rule, or
// "<top parent> (<top period>)".
func (l Labeler) Vibe(p Profile) string {
	for _, r := range vibeRules {
		if r.match(p, l) {
			return r.vibe
		}
	}
	return fmt.Sprintf("%s (%s)", p.TopParent, p.TopPeriod)
}
