package service

import (
	"fmt"
	"math"
	"time"

	"github.com/noah-isme/sma-wellbeing-api/internal/models"
)

// InsightInput is the immutable state every insight rule reads from. Moods and help
// requests are ordered newest first.
type InsightInput struct {
	Snapshot     *models.WellbeingSnapshot
	Moods        []models.MoodEntry
	HelpRequests []models.HelpRequest
	Now          time.Time
}

// insightRule inspects the input and returns at most one insight.
type insightRule func(in InsightInput, policy InsightPolicy) (models.Insight, bool)

// insightRules fixes the evaluation order, which is also the output order.
var insightRules = []insightRule{
	activityRule,
	academicRule,
	attendanceRule,
	emotionalRule,
	supportRule,
	engagementRule,
}

// GenerateInsights evaluates every rule independently and collects what fires.
func GenerateInsights(in InsightInput, policy InsightPolicy) []models.Insight {
	insights := make([]models.Insight, 0, len(insightRules))
	for _, rule := range insightRules {
		if insight, ok := rule(in, policy); ok {
			insights = append(insights, insight)
		}
	}
	return insights
}

func activityRule(in InsightInput, policy InsightPolicy) (models.Insight, bool) {
	if len(in.Moods) == 0 {
		return models.Insight{}, false
	}
	last := in.Moods[0].CreatedAt
	if last.IsZero() {
		last = in.Moods[0].Date
	}
	days := int(math.Floor(in.Now.Sub(last).Hours() / 24))

	switch {
	case days > policy.LowActivityDays:
		return models.Insight{
			Type:       models.InsightActivity,
			Level:      models.LevelInfo,
			Title:      "Low Recent Activity",
			Message:    fmt.Sprintf("No mood entries for %d days. Student may be busy with other activities, assignments, or personal commitments.", days),
			Suggestion: "Consider a gentle check-in to ensure they're managing their workload well.",
		}, true
	case days > policy.ReducedActivityDays:
		return models.Insight{
			Type:       models.InsightActivity,
			Level:      models.LevelInfo,
			Title:      "Reduced Engagement",
			Message:    fmt.Sprintf("Last mood entry was %d days ago. This could indicate increased focus on studies or other priorities.", days),
			Suggestion: "Normal pattern - student may be in a focused work period.",
		}, true
	}
	return models.Insight{}, false
}

func academicRule(in InsightInput, policy InsightPolicy) (models.Insight, bool) {
	if in.Snapshot == nil {
		return models.Insight{}, false
	}
	gpa, ok := finite(in.Snapshot.GPA)
	if !ok {
		return models.Insight{}, false
	}

	switch {
	case gpa >= policy.StrongGPA:
		return models.Insight{
			Type:       models.InsightAcademic,
			Level:      models.LevelPositive,
			Title:      "Strong Academic Performance",
			Message:    fmt.Sprintf("Excellent GPA of %.2f indicates consistent academic achievement.", gpa),
			Suggestion: "Continue supporting their academic excellence and consider leadership opportunities.",
		}, true
	case gpa < policy.LowGPA:
		return models.Insight{
			Type:       models.InsightAcademic,
			Level:      models.LevelConcern,
			Title:      "Academic Support Needed",
			Message:    fmt.Sprintf("GPA of %.2f suggests academic challenges that may be affecting wellbeing.", gpa),
			Suggestion: "Consider academic support resources and check for underlying issues.",
		}, true
	}
	return models.Insight{}, false
}

func attendanceRule(in InsightInput, policy InsightPolicy) (models.Insight, bool) {
	if in.Snapshot == nil {
		return models.Insight{}, false
	}
	rate, ok := finite(in.Snapshot.AttendanceRate)
	if !ok {
		return models.Insight{}, false
	}

	switch {
	case rate < policy.LowAttendance:
		return models.Insight{
			Type:       models.InsightAttendance,
			Level:      models.LevelConcern,
			Title:      "Attendance Concerns",
			Message:    fmt.Sprintf("%.1f%% attendance may indicate health issues, family responsibilities, or disengagement.", rate),
			Suggestion: "Reach out to understand barriers to attendance and provide appropriate support.",
		}, true
	case rate >= policy.ExcellentAttendance:
		return models.Insight{
			Type:       models.InsightAttendance,
			Level:      models.LevelPositive,
			Title:      "Excellent Attendance",
			Message:    fmt.Sprintf("Outstanding %.1f%% attendance shows strong commitment and engagement.", rate),
			Suggestion: "Acknowledge their dedication and use as a positive example.",
		}, true
	}
	return models.Insight{}, false
}

func emotionalRule(in InsightInput, policy InsightPolicy) (models.Insight, bool) {
	if len(in.Moods) == 0 {
		return models.Insight{}, false
	}
	recent := in.Moods
	if len(recent) > policy.RecentMoodWindow {
		recent = recent[:policy.RecentMoodWindow]
	}
	negative := 0
	for _, entry := range recent {
		if concernMoods.has(entry.Mood) {
			negative++
		}
	}

	switch {
	case negative >= policy.NegativeMoodConcern:
		return models.Insight{
			Type:       models.InsightEmotional,
			Level:      models.LevelConcern,
			Title:      "Emotional Support Needed",
			Message:    fmt.Sprintf("%d negative mood entries in recent days suggests emotional challenges.", negative),
			Suggestion: "Consider counseling resources or a private conversation to offer support.",
		}, true
	case negative == 0 && len(recent) >= policy.PositiveMoodMinEntries:
		return models.Insight{
			Type:       models.InsightEmotional,
			Level:      models.LevelPositive,
			Title:      "Positive Emotional State",
			Message:    "Consistent positive moods indicate good emotional wellbeing and life balance.",
			Suggestion: "Great emotional stability - continue current support strategies.",
		}, true
	}
	return models.Insight{}, false
}

// supportRule always fires exactly one branch.
func supportRule(in InsightInput, policy InsightPolicy) (models.Insight, bool) {
	if len(in.HelpRequests) == 0 {
		return models.Insight{
			Type:       models.InsightSupport,
			Level:      models.LevelInfo,
			Title:      "Independent Learning Style",
			Message:    "No recent help requests may indicate independence, self-reliance, or reluctance to seek help.",
			Suggestion: "Check in periodically to ensure they know support is available when needed.",
		}, true
	}

	cutoff := in.Now.Add(-policy.UrgentHelpWindow)
	urgent := 0
	for _, req := range in.HelpRequests {
		if req.Urgency == models.UrgencyHigh && req.CreatedAt.After(cutoff) {
			urgent++
		}
	}
	if urgent > 0 {
		return models.Insight{
			Type:       models.InsightSupport,
			Level:      models.LevelUrgent,
			Title:      "Recent Urgent Help Requests",
			Message:    fmt.Sprintf("%d urgent help request(s) in the past week indicates immediate support needs.", urgent),
			Suggestion: "Priority follow-up required - ensure urgent needs are being addressed.",
		}, true
	}
	return models.Insight{
		Type:       models.InsightSupport,
		Level:      models.LevelPositive,
		Title:      "Healthy Help-Seeking",
		Message:    "Student demonstrates good self-advocacy by reaching out when needed.",
		Suggestion: "Positive behavior - continue encouraging open communication.",
	}, true
}

func engagementRule(in InsightInput, policy InsightPolicy) (models.Insight, bool) {
	if in.Snapshot == nil {
		return models.Insight{}, false
	}
	rate, ok := finite(in.Snapshot.QuestCompletionRate)
	if !ok {
		return models.Insight{}, false
	}

	switch {
	case rate < policy.LowCompletion:
		return models.Insight{
			Type:       models.InsightEngagement,
			Level:      models.LevelConcern,
			Title:      "Low Task Completion",
			Message:    fmt.Sprintf("%.1f%% completion rate may indicate overwhelm, lack of interest, or competing priorities.", rate),
			Suggestion: "Explore barriers to completion and consider adjusting workload or approach.",
		}, true
	case rate >= policy.HighCompletion:
		return models.Insight{
			Type:       models.InsightEngagement,
			Level:      models.LevelPositive,
			Title:      "High Task Engagement",
			Message:    fmt.Sprintf("Excellent %.1f%% completion rate shows strong motivation and time management.", rate),
			Suggestion: "Outstanding engagement - consider additional challenges or leadership roles.",
		}, true
	}
	return models.Insight{}, false
}
