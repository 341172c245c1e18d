package service

import (
	"math"

	"github.com/noah-isme/sma-wellbeing-api/internal/dto"
	"github.com/noah-isme/sma-wellbeing-api/internal/models"
)

// CalculateTrend classifies the change between two scores. Missing or non-finite inputs
// never produce a direction.
func CalculateTrend(current, previous *float64, deadband float64) models.Trend {
	cur, ok := finite(current)
	if !ok {
		return models.TrendStable
	}
	prev, ok := finite(previous)
	if !ok {
		return models.TrendStable
	}
	delta := cur - prev
	switch {
	case delta > deadband:
		return models.TrendImproving
	case delta < -deadband:
		return models.TrendDeclining
	default:
		return models.TrendStable
	}
}

// BuildTrends compares the latest snapshot with the one before it. Risk trend is taken
// from the upstream field of the latest snapshot rather than recomputed.
func BuildTrends(latest, previous *models.WellbeingSnapshot, policy InsightPolicy) dto.TrendSet {
	trends := dto.TrendSet{
		WellbeingTrend:  models.TrendStable,
		AcademicTrend:   models.TrendStable,
		EmotionalTrend:  models.TrendStable,
		EngagementTrend: models.TrendStable,
		RiskTrend:       models.TrendStable,
	}
	if latest == nil {
		return trends
	}
	if latest.RiskTrend != "" {
		trends.RiskTrend = models.Trend(latest.RiskTrend)
	}
	if previous == nil {
		return trends
	}
	trends.WellbeingTrend = CalculateTrend(latest.OverallWellbeingScore, previous.OverallWellbeingScore, policy.TrendDeadband)
	trends.AcademicTrend = CalculateTrend(latest.AcademicWellbeingScore, previous.AcademicWellbeingScore, policy.TrendDeadband)
	trends.EmotionalTrend = CalculateTrend(latest.EmotionalWellbeingScore, previous.EmotionalWellbeingScore, policy.TrendDeadband)
	trends.EngagementTrend = CalculateTrend(latest.EngagementWellbeingScore, previous.EngagementWellbeingScore, policy.TrendDeadband)
	return trends
}

func finite(v *float64) (float64, bool) {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0, false
	}
	return *v, true
}
