package domain

type AchievementType string

const (
	AchievementTypeVariety     AchievementType = "variety"
	AchievementTypeConsistency AchievementType = "consistency"
	AchievementTypeExploration AchievementType = "exploration"
	AchievementTypeBalance     AchievementType = "balance"
)

type AchievementRarity string

const (
	RarityCommon    AchievementRarity = "common"
	RarityRare      AchievementRarity = "rare"
	RarityEpic      AchievementRarity = "epic"
	RarityLegendary AchievementRarity = "legendary"
)

// CategoryAchievement is a gamification unlock. Evaluation is a pure
// function of the input snapshot; deduplicating unlocks a user has
// already seen is caller-owned state, so IsNew is always true here and
// the ID is the stable rule identifier, not a fresh UUID.
type CategoryAchievement struct {
	ID     string            `json:"id"`
	Title  string            `json:"title"`
	Type   AchievementType   `json:"type"`
	Rarity AchievementRarity `json:"rarity"`
	Points int               `json:"points"`
	IsNew  bool              `json:"is_new"`
}

// AchievementProgress reports progress toward a rule that has not
// unlocked yet, for UI progress bars.
type AchievementProgress struct {
	RuleID       string  `json:"rule_id"`
	Title        string  `json:"title"`
	CurrentValue float64 `json:"current_value"`
	TargetValue  float64 `json:"target_value"`
	Progress     float64 `json:"progress"`
}
