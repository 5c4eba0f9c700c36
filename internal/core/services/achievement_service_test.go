package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthup/insight-engine/internal/core/domain"
	"github.com/healthup/insight-engine/internal/core/services"
)

func findAchievement(list []domain.CategoryAchievement, id string) *domain.CategoryAchievement {
	for i := range list {
		if list[i].ID == id {
			return &list[i]
		}
	}
	return nil
}

func findProgress(list []domain.AchievementProgress, ruleID string) *domain.AchievementProgress {
	for i := range list {
		if list[i].RuleID == ruleID {
			return &list[i]
		}
	}
	return nil
}

func TestAchievementService_Detect(t *testing.T) {
	svc := services.NewAchievementService()

	t.Run("Fail: Nil current report", func(t *testing.T) {
		_, err := svc.Detect(nil, nil)
		assert.ErrorIs(t, err, domain.ErrNilReport)
	})

	t.Run("Edge Case: Four distinct categories do not unlock Well-Rounded Week", func(t *testing.T) {
		current := completedWeek(0,
			map[string]int{"근력 운동": 2, "유산소 운동": 1, "요가": 1},
			map[string]int{"집밥": 1},
		)

		unlocked, err := svc.Detect(current, nil)

		require.NoError(t, err)
		assert.Nil(t, findAchievement(unlocked, "well_rounded_week"))
	})

	t.Run("Success: Five distinct categories unlock Well-Rounded Week", func(t *testing.T) {
		current := completedWeek(0,
			map[string]int{"근력 운동": 2, "유산소 운동": 1, "요가": 1},
			map[string]int{"집밥": 1, "샐러드": 1},
		)

		unlocked, err := svc.Detect(current, nil)

		require.NoError(t, err)
		a := findAchievement(unlocked, "well_rounded_week")
		require.NotNil(t, a)
		assert.Equal(t, domain.RarityCommon, a.Rarity)
		assert.Equal(t, 25, a.Points)
		assert.Equal(t, domain.AchievementTypeVariety, a.Type)
		assert.True(t, a.IsNew)
	})

	t.Run("Success: Seven distinct categories upgrade Well-Rounded Week to rare", func(t *testing.T) {
		current := completedWeek(0,
			map[string]int{"근력 운동": 1, "유산소 운동": 1, "요가": 1, "필라테스": 1},
			map[string]int{"집밥": 1, "샐러드": 1, "과일/채소": 1},
		)

		unlocked, err := svc.Detect(current, nil)

		require.NoError(t, err)
		a := findAchievement(unlocked, "well_rounded_week")
		require.NotNil(t, a)
		assert.Equal(t, domain.RarityRare, a.Rarity)
	})

	t.Run("Success: Four exercise categories unlock Exercise Variety Master", func(t *testing.T) {
		current := completedWeek(0,
			map[string]int{"근력 운동": 1, "유산소 운동": 1, "요가": 1, "스트레칭": 1},
			nil,
		)

		unlocked, err := svc.Detect(current, nil)

		require.NoError(t, err)
		a := findAchievement(unlocked, "exercise_variety_master")
		require.NotNil(t, a)
		assert.Equal(t, 50, a.Points)
	})

	t.Run("Success: Every known category unlocks the legendary Perfect Variety", func(t *testing.T) {
		exercise := make(map[string]int)
		for _, name := range domain.KnownExerciseCategories {
			exercise[name] = 1
		}
		diet := make(map[string]int)
		for _, name := range domain.KnownDietCategories {
			diet[name] = 1
		}
		current := completedWeek(0, exercise, diet)

		unlocked, err := svc.Detect(current, nil)

		require.NoError(t, err)
		a := findAchievement(unlocked, "perfect_variety")
		require.NotNil(t, a)
		assert.Equal(t, domain.RarityLegendary, a.Rarity)
		assert.Equal(t, 250, a.Points)
	})

	t.Run("Success: Four straight weeks of one category unlock the Consistency Champion", func(t *testing.T) {
		history := []*domain.WeeklyReport{
			completedWeek(0, map[string]int{"근력 운동": 2}, nil),
			completedWeek(1, map[string]int{"근력 운동": 1}, nil),
			completedWeek(2, map[string]int{"근력 운동": 3}, nil),
		}
		current := completedWeek(3, map[string]int{"근력 운동": 2}, nil)

		unlocked, err := svc.Detect(current, history)

		require.NoError(t, err)
		assert.NotNil(t, findAchievement(unlocked, "consistent_category_champion"))
	})

	t.Run("Edge Case: A broken streak does not count", func(t *testing.T) {
		history := []*domain.WeeklyReport{
			completedWeek(0, map[string]int{"근력 운동": 2}, nil),
			completedWeek(1, map[string]int{"요가": 1}, nil),
			completedWeek(2, map[string]int{"근력 운동": 3}, nil),
		}
		current := completedWeek(3, map[string]int{"근력 운동": 2}, nil)

		unlocked, err := svc.Detect(current, history)

		require.NoError(t, err)
		assert.Nil(t, findAchievement(unlocked, "consistent_category_champion"))
	})

	t.Run("Edge Case: Nothing is new without history", func(t *testing.T) {
		current := completedWeek(0, map[string]int{"근력 운동": 1}, nil)

		unlocked, err := svc.Detect(current, nil)

		require.NoError(t, err)
		assert.Nil(t, findAchievement(unlocked, "first_time_explorer"))
	})

	t.Run("Success: A first new category unlocks the Explorer, three the Adventure Seeker", func(t *testing.T) {
		history := []*domain.WeeklyReport{
			completedWeek(0, map[string]int{"근력 운동": 1}, nil),
		}
		current := completedWeek(1,
			map[string]int{"근력 운동": 1, "요가": 1, "필라테스": 1},
			map[string]int{"샐러드": 1},
		)

		unlocked, err := svc.Detect(current, history)

		require.NoError(t, err)
		assert.NotNil(t, findAchievement(unlocked, "first_time_explorer"))
		assert.NotNil(t, findAchievement(unlocked, "adventure_seeker"))
	})

	t.Run("Success: Evenly spread categories unlock Perfect Balance", func(t *testing.T) {
		current := completedWeek(0,
			map[string]int{"근력 운동": 2, "유산소 운동": 2},
			map[string]int{"집밥": 2},
		)

		unlocked, err := svc.Detect(current, nil)

		require.NoError(t, err)
		a := findAchievement(unlocked, "perfect_balance")
		require.NotNil(t, a)
		assert.Equal(t, domain.RarityEpic, a.Rarity)
	})

	t.Run("Success: Each group is judged against its own average", func(t *testing.T) {
		// Exercise and diet run at different volumes, but each group
		// is even within itself.
		current := completedWeek(0,
			map[string]int{"근력 운동": 4, "유산소 운동": 4},
			map[string]int{"집밥": 1, "샐러드": 1},
		)

		unlocked, err := svc.Detect(current, nil)

		require.NoError(t, err)
		assert.NotNil(t, findAchievement(unlocked, "perfect_balance"))
	})

	t.Run("Edge Case: An uneven diet group alone misses Perfect Balance", func(t *testing.T) {
		current := completedWeek(0,
			map[string]int{"근력 운동": 2, "유산소 운동": 2},
			map[string]int{"집밥": 4, "샐러드": 1},
		)

		unlocked, err := svc.Detect(current, nil)

		require.NoError(t, err)
		assert.Nil(t, findAchievement(unlocked, "perfect_balance"))
	})

	t.Run("Edge Case: A lopsided spread misses Perfect Balance", func(t *testing.T) {
		current := completedWeek(0,
			map[string]int{"근력 운동": 6, "유산소 운동": 1},
			map[string]int{"집밥": 1},
		)

		unlocked, err := svc.Detect(current, nil)

		require.NoError(t, err)
		assert.Nil(t, findAchievement(unlocked, "perfect_balance"))
	})

	t.Run("Success: An even exercise-diet split unlocks the Health Optimizer", func(t *testing.T) {
		current := completedWeek(0,
			map[string]int{"근력 운동": 3},
			map[string]int{"집밥": 3},
		)

		unlocked, err := svc.Detect(current, nil)

		require.NoError(t, err)
		assert.NotNil(t, findAchievement(unlocked, "health_optimizer"))
	})

	t.Run("Success: Identical input gives identical unlocks", func(t *testing.T) {
		history := []*domain.WeeklyReport{
			completedWeek(0, map[string]int{"근력 운동": 1}, nil),
		}
		current := completedWeek(1,
			map[string]int{"근력 운동": 2, "요가": 2},
			map[string]int{"집밥": 2},
		)

		first, err := svc.Detect(current, history)
		require.NoError(t, err)
		second, err := svc.Detect(current, history)
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})
}

func TestAchievementService_Progress(t *testing.T) {
	svc := services.NewAchievementService()

	t.Run("Fail: Nil current report", func(t *testing.T) {
		_, err := svc.Progress(nil, nil)
		assert.ErrorIs(t, err, domain.ErrNilReport)
	})

	t.Run("Success: Locked rules report partial progress", func(t *testing.T) {
		current := completedWeek(0,
			map[string]int{"근력 운동": 2, "유산소 운동": 1, "요가": 1},
			map[string]int{"집밥": 1},
		)

		progress, err := svc.Progress(current, nil)

		require.NoError(t, err)
		p := findProgress(progress, "well_rounded_week")
		require.NotNil(t, p)
		assert.Equal(t, 4.0, p.CurrentValue)
		assert.Equal(t, 5.0, p.TargetValue)
		assert.InDelta(t, 0.8, p.Progress, 1e-9)
	})

	t.Run("Edge Case: Unlocked rules are excluded from progress", func(t *testing.T) {
		current := completedWeek(0,
			map[string]int{"근력 운동": 1, "유산소 운동": 1, "요가": 1},
			map[string]int{"집밥": 1, "샐러드": 1},
		)

		progress, err := svc.Progress(current, nil)

		require.NoError(t, err)
		assert.Nil(t, findProgress(progress, "well_rounded_week"))
	})
}
