package domain

import "time"

type TrendDirection string

const (
	TrendUp     TrendDirection = "up"
	TrendDown   TrendDirection = "down"
	TrendStable TrendDirection = "stable"
)

type Season string

const (
	SeasonSpring Season = "spring"
	SeasonSummer Season = "summer"
	SeasonAutumn Season = "autumn"
	SeasonWinter Season = "winter"
)

// SeasonOf classifies a date by calendar month:
// Mar-May spring, Jun-Aug summer, Sep-Nov autumn, Dec-Feb winter.
func SeasonOf(t time.Time) Season {
	switch t.Month() {
	case time.March, time.April, time.May:
		return SeasonSpring
	case time.June, time.July, time.August:
		return SeasonSummer
	case time.September, time.October, time.November:
		return SeasonAutumn
	default:
		return SeasonWinter
	}
}

// Known category labels for the mobile client's pickers. Users can
// certify under any free-form name, so these are a lookup table, not a
// closed enum: analytics must accept unknown names as-is.
var (
	KnownExerciseCategories = []string{
		"근력 운동",
		"유산소 운동",
		"요가",
		"필라테스",
		"스트레칭",
		"구기 운동",
	}

	KnownDietCategories = []string{
		"집밥",
		"샐러드",
		"단백질 위주",
		"저탄수화물",
		"과일/채소",
		"간헐적 단식",
	}
)

var knownCategorySet = buildKnownCategorySet()

func buildKnownCategorySet() map[string]bool {
	set := make(map[string]bool, len(KnownExerciseCategories)+len(KnownDietCategories))
	for _, name := range KnownExerciseCategories {
		set[name] = true
	}
	for _, name := range KnownDietCategories {
		set[name] = true
	}
	return set
}

func IsKnownCategory(name string) bool {
	return knownCategorySet[name]
}

func KnownCategoryCount() int {
	return len(knownCategorySet)
}
