package service

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/sma-wellbeing-api/internal/dto"
	"github.com/noah-isme/sma-wellbeing-api/internal/models"
)

func moods(labels ...string) []models.MoodEntry {
	entries := make([]models.MoodEntry, 0, len(labels))
	for _, label := range labels {
		entries = append(entries, models.MoodEntry{Mood: label})
	}
	return entries
}

func TestAggregateMoods(t *testing.T) {
	stats := AggregateMoods(moods("happy", "excited", "calm", "sad", "angry", "anxious", "neutral", "tired", "stressed", "Happy"))

	assert.Equal(t, dto.MoodStats{TotalEntries: 10, PositiveCount: 3, NegativeCount: 3, NeutralCount: 2}, stats)
}

func TestAggregateMoodsEmpty(t *testing.T) {
	assert.Equal(t, dto.MoodStats{}, AggregateMoods(nil))
}

func TestAggregateHelpRequests(t *testing.T) {
	stats := AggregateHelpRequests([]models.HelpRequest{
		{Urgency: models.UrgencyHigh, Status: models.HelpStatusPending},
		{Urgency: models.UrgencyHigh, Status: models.HelpStatusResolved},
		{Urgency: models.UrgencyLow, Status: models.HelpStatusResolved},
		{Urgency: models.UrgencyMedium, Status: "in_progress"},
	})

	assert.Equal(t, dto.HelpStats{TotalRequests: 4, UrgentRequests: 2, ResolvedRequests: 2, PendingRequests: 1}, stats)
}

func TestAggregateQuests(t *testing.T) {
	stats := AggregateQuests([]models.QuestCompletion{{XPEarned: 10}, {XPEarned: 25}})
	assert.Equal(t, 2, stats.TotalCompleted)
	assert.Equal(t, 35, stats.TotalXP)
	assert.InDelta(t, 17.5, stats.AverageXP, 1e-9)

	assert.Equal(t, dto.QuestStats{}, AggregateQuests(nil))
}

func TestAggregateMoodsCountsNeverExceedTotal(t *testing.T) {
	known := []string{
		models.MoodHappy, models.MoodExcited, models.MoodCalm,
		models.MoodSad, models.MoodAngry, models.MoodAnxious,
		models.MoodNeutral, models.MoodTired,
	}
	unknown := []string{models.MoodStressed, "Happy", "bored", ""}
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		n := rng.Intn(20)
		labels := make([]string, 0, n)
		allKnown := true
		for j := 0; j < n; j++ {
			if rng.Intn(4) == 0 {
				labels = append(labels, unknown[rng.Intn(len(unknown))])
				allKnown = false
				continue
			}
			labels = append(labels, known[rng.Intn(len(known))])
		}

		stats := AggregateMoods(moods(labels...))
		bucketed := stats.PositiveCount + stats.NegativeCount + stats.NeutralCount

		assert.Equal(t, n, stats.TotalEntries)
		assert.LessOrEqual(t, bucketed, stats.TotalEntries, "labels %v", labels)
		assert.Equal(t, allKnown, bucketed == stats.TotalEntries, "labels %v", labels)
	}
}

func TestAggregateHelpRequestsCountsNeverExceedTotal(t *testing.T) {
	urgencies := []string{models.UrgencyLow, models.UrgencyMedium, models.UrgencyHigh, "HIGH", ""}
	statuses := []string{models.HelpStatusPending, models.HelpStatusResolved, "in_progress", "closed", ""}
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 200; i++ {
		n := rng.Intn(15)
		requests := make([]models.HelpRequest, 0, n)
		for j := 0; j < n; j++ {
			requests = append(requests, models.HelpRequest{
				Urgency: urgencies[rng.Intn(len(urgencies))],
				Status:  statuses[rng.Intn(len(statuses))],
			})
		}

		stats := AggregateHelpRequests(requests)

		assert.Equal(t, n, stats.TotalRequests)
		assert.LessOrEqual(t, stats.UrgentRequests, stats.TotalRequests)
		assert.LessOrEqual(t, stats.ResolvedRequests+stats.PendingRequests, stats.TotalRequests)
	}
}
