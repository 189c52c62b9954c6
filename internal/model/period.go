package model

// TimePeriod is a day segment derived from the transaction hour.
type TimePeriod int

const (
	Breakfast TimePeriod = iota
	Lunch
	Dinner
	NightLife
	WorkOther
)

// AllPeriods lists every period in display order.
var AllPeriods = []TimePeriod{Breakfast, Lunch, Dinner, NightLife, WorkOther}

// PeriodForHour maps an hour of day (0-23) to its period.
//
//	[5,9)  Breakfast
//	[11,14) Lunch
//	[17,21) Dinner
//	[21,24) and [0,5) NightLife
//	anything else Work/Other
func PeriodForHour(hour int) TimePeriod {
	switch {
	case hour >= 5 && hour < 9:
		return Breakfast
	case hour >= 11 && hour < 14:
		return Lunch
	case hour >= 17 && hour < 21:
		return Dinner
	case hour >= 21 || hour < 5:
		return NightLife
	default:
		return WorkOther
	}
}

// String returns the period key used in reports.
func (p TimePeriod) String() string {
	switch p {
	case Breakfast:
		return "Breakfast"
	case Lunch:
		return "Lunch"
	case Dinner:
		return "Dinner"
	case NightLife:
		return "NightLife"
	default:
		return "Work/Other"
	}
}

// Label returns the human-facing name of the period.
func (p TimePeriod) Label() string {
	switch p {
	case Breakfast:
		return "breakfast"
	case Lunch:
		return "lunch"
	case Dinner:
		return "dinner"
	case NightLife:
		return "night owl"
	default:
		return "daily life"
	}
}

// ParentKind classifies the top-level categories that drive labelling and
// policy decisions.
type ParentKind int

const (
	ParentOther ParentKind = iota
	ParentFixed
	ParentLiving
	ParentShopping
	ParentTransport
	ParentEducation
	ParentEntertainment
	ParentSocial
	ParentElectronics
)

var parentKindNames = map[string]ParentKind{
	"other":         ParentOther,
	"fixed":         ParentFixed,
	"living":        ParentLiving,
	"shopping":      ParentShopping,
	"transport":     ParentTransport,
	"education":     ParentEducation,
	"entertainment": ParentEntertainment,
	"social":        ParentSocial,
	"electronics":   ParentElectronics,
}

// ParseParentKind maps a config name such as "shopping" to its kind.
func ParseParentKind(name string) (ParentKind, bool) {
	k, ok := parentKindNames[name]
	return k, ok
}

// String returns the config name of the kind.
func (k ParentKind) String() string {
	for name, v := range parentKindNames {
		if v == k {
			return name
		}
	}
	return "other"
}
