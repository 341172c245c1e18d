package service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/sma-wellbeing-api/internal/models"
)

func floatPtr(v float64) *float64 { return &v }

func intPtr(v int) *int { return &v }

func TestCalculateTrend(t *testing.T) {
	cases := []struct {
		name     string
		current  *float64
		previous *float64
		want     models.Trend
	}{
		{name: "improving", current: floatPtr(70), previous: floatPtr(65), want: models.TrendImproving},
		{name: "declining", current: floatPtr(60), previous: floatPtr(65), want: models.TrendDeclining},
		{name: "exact deadband is stable", current: floatPtr(70.5), previous: floatPtr(70), want: models.TrendStable},
		{name: "negative deadband is stable", current: floatPtr(69.5), previous: floatPtr(70), want: models.TrendStable},
		{name: "just above deadband", current: floatPtr(70.51), previous: floatPtr(70), want: models.TrendImproving},
		{name: "missing current", current: nil, previous: floatPtr(70), want: models.TrendStable},
		{name: "missing previous", current: floatPtr(70), previous: nil, want: models.TrendStable},
		{name: "nan", current: floatPtr(math.NaN()), previous: floatPtr(70), want: models.TrendStable},
		{name: "infinite", current: floatPtr(70), previous: floatPtr(math.Inf(1)), want: models.TrendStable},
		{name: "zero is a value", current: floatPtr(10), previous: floatPtr(0), want: models.TrendImproving},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CalculateTrend(tc.current, tc.previous, 0.5))
		})
	}
}

func TestBuildTrends(t *testing.T) {
	policy := DefaultInsightPolicy()

	t.Run("no snapshots", func(t *testing.T) {
		trends := BuildTrends(nil, nil, policy)
		assert.Equal(t, models.TrendStable, trends.WellbeingTrend)
		assert.Equal(t, models.TrendStable, trends.RiskTrend)
	})

	t.Run("single snapshot keeps upstream risk trend", func(t *testing.T) {
		latest := &models.WellbeingSnapshot{OverallWellbeingScore: floatPtr(80), RiskTrend: "declining"}
		trends := BuildTrends(latest, nil, policy)
		assert.Equal(t, models.TrendStable, trends.WellbeingTrend)
		assert.Equal(t, models.TrendDeclining, trends.RiskTrend)
	})

	t.Run("compares each dimension", func(t *testing.T) {
		latest := &models.WellbeingSnapshot{
			OverallWellbeingScore:    floatPtr(72),
			AcademicWellbeingScore:   floatPtr(60),
			EmotionalWellbeingScore:  floatPtr(50),
			EngagementWellbeingScore: nil,
		}
		previous := &models.WellbeingSnapshot{
			OverallWellbeingScore:    floatPtr(70),
			AcademicWellbeingScore:   floatPtr(65),
			EmotionalWellbeingScore:  floatPtr(50.2),
			EngagementWellbeingScore: floatPtr(40),
		}
		trends := BuildTrends(latest, previous, policy)
		assert.Equal(t, models.TrendImproving, trends.WellbeingTrend)
		assert.Equal(t, models.TrendDeclining, trends.AcademicTrend)
		assert.Equal(t, models.TrendStable, trends.EmotionalTrend)
		assert.Equal(t, models.TrendStable, trends.EngagementTrend)
		assert.Equal(t, models.TrendStable, trends.RiskTrend)
	})
}
