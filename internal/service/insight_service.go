package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-wellbeing-api/internal/dto"
	"github.com/noah-isme/sma-wellbeing-api/internal/models"
	appErrors "github.com/noah-isme/sma-wellbeing-api/pkg/errors"
	applog "github.com/noah-isme/sma-wellbeing-api/pkg/logger"
)

// Signal names used in logs, metrics and unavailableSignals.
const (
	SignalSnapshots = "snapshots"
	SignalMoods     = "mood_entries"
	SignalHelp      = "help_requests"
	SignalQuests    = "quest_completions"
	SignalClasses   = "class_assignments"
)

type wellbeingSignalReader interface {
	Snapshots(ctx context.Context, studentID, schoolID string, limit int) ([]models.WellbeingSnapshot, error)
	MoodEntries(ctx context.Context, studentID, schoolID string, since time.Time) ([]models.MoodEntry, error)
	HelpRequests(ctx context.Context, studentID, schoolID string, since time.Time) ([]models.HelpRequest, error)
	QuestCompletions(ctx context.Context, studentID, schoolID string, since time.Time) ([]models.QuestCompletion, error)
	ClassAssignments(ctx context.Context, studentID, schoolID string) ([]models.ClassAssignment, error)
}

type studentProfileReader interface {
	FindProfile(ctx context.Context, studentID, schoolID string) (*models.StudentProfile, error)
}

type studentAccessChecker interface {
	CanViewStudent(ctx context.Context, caller models.CallerContext, studentID string) (bool, error)
}

// InsightServiceConfig tunes report assembly.
type InsightServiceConfig struct {
	LookbackDays     int
	HistoryLimit     int
	FetchTimeout     time.Duration
	MoodHistoryLimit int
	HelpExcerptLimit int
	Policy           InsightPolicy
}

// InsightService assembles per-student wellbeing reports.
type InsightService struct {
	signals   wellbeingSignalReader
	profiles  studentProfileReader
	access    studentAccessChecker
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
	cfg       InsightServiceConfig
	csv       documentRenderer
	pdf       documentRenderer
}

// InsightServiceParams groups constructor dependencies.
type InsightServiceParams struct {
	Signals   wellbeingSignalReader
	Profiles  studentProfileReader
	Access    studentAccessChecker
	Metrics   *MetricsService
	Validator *validator.Validate
	Logger    *zap.Logger
	Config    InsightServiceConfig
	CSV       documentRenderer
	PDF       documentRenderer
}

// NewInsightService constructs an InsightService.
func NewInsightService(params InsightServiceParams) *InsightService {
	cfg := params.Config
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = 30
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 10
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 5 * time.Second
	}
	if cfg.MoodHistoryLimit <= 0 {
		cfg.MoodHistoryLimit = 14
	}
	if cfg.HelpExcerptLimit <= 0 {
		cfg.HelpExcerptLimit = 5
	}
	if cfg.Policy == (InsightPolicy{}) {
		cfg.Policy = DefaultInsightPolicy()
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	validate := params.Validator
	if validate == nil {
		validate = validator.New()
	}
	csvRenderer, pdfRenderer := defaultRenderers(params.CSV, params.PDF)
	return &InsightService{
		signals:   params.Signals,
		profiles:  params.Profiles,
		access:    params.Access,
		metrics:   params.Metrics,
		validator: validate,
		logger:    logger,
		now:       time.Now,
		cfg:       cfg,
		csv:       csvRenderer,
		pdf:       pdfRenderer,
	}
}

// Report builds the wellbeing report of studentID for caller.
func (s *InsightService) Report(ctx context.Context, caller models.CallerContext, studentID string) (*dto.InsightReport, error) {
	studentID = strings.TrimSpace(studentID)
	if err := s.validator.Struct(dto.InsightReportRequest{StudentID: studentID}); err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrValidation, "student id must be a valid uuid")
	}

	profile, err := s.authorize(ctx, caller, studentID)
	if err != nil {
		return nil, err
	}

	signals, err := s.collect(ctx, studentID, caller.TenantID)
	if err != nil {
		return nil, err
	}

	report := s.assemble(profile, signals)
	s.metrics.RecordReport(report.Insights)
	return report, nil
}

func (s *InsightService) authorize(ctx context.Context, caller models.CallerContext, studentID string) (*models.StudentProfile, error) {
	if caller.TenantID == "" || caller.SubjectID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "caller scope missing")
	}

	allowed, err := s.access.CanViewStudent(ctx, caller, studentID)
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to resolve access scope")
	}
	if !allowed {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "student is outside caller scope")
	}

	profile, err := s.profiles.FindProfile(ctx, studentID, caller.TenantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrStudentNotFound
		}
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to load student profile")
	}
	return profile, nil
}

// signalResult carries either a fetched collection or the reason it is unavailable.
type signalResult[T any] struct {
	Value T
	Err   error
}

func (r signalResult[T]) available() bool { return r.Err == nil }

type wellbeingSignals struct {
	snapshots signalResult[[]models.WellbeingSnapshot]
	moods     signalResult[[]models.MoodEntry]
	help      signalResult[[]models.HelpRequest]
	quests    signalResult[[]models.QuestCompletion]
	classes   signalResult[[]models.ClassAssignment]
}

func (w wellbeingSignals) unavailable() []string {
	names := make([]string, 0, 5)
	if !w.snapshots.available() {
		names = append(names, SignalSnapshots)
	}
	if !w.moods.available() {
		names = append(names, SignalMoods)
	}
	if !w.help.available() {
		names = append(names, SignalHelp)
	}
	if !w.quests.available() {
		names = append(names, SignalQuests)
	}
	if !w.classes.available() {
		names = append(names, SignalClasses)
	}
	return names
}

// collect runs the five signal fetches concurrently and waits for all of them.
func (s *InsightService) collect(ctx context.Context, studentID, schoolID string) (wellbeingSignals, error) {
	var (
		out wellbeingSignals
		wg  sync.WaitGroup
	)
	since := s.now().AddDate(0, 0, -s.cfg.LookbackDays)

	wg.Add(5)
	go func() {
		defer wg.Done()
		out.snapshots = fetchSignal(ctx, s, SignalSnapshots, studentID, func(ctx context.Context) ([]models.WellbeingSnapshot, error) {
			return s.signals.Snapshots(ctx, studentID, schoolID, s.cfg.HistoryLimit)
		})
	}()
	go func() {
		defer wg.Done()
		out.moods = fetchSignal(ctx, s, SignalMoods, studentID, func(ctx context.Context) ([]models.MoodEntry, error) {
			return s.signals.MoodEntries(ctx, studentID, schoolID, since)
		})
	}()
	go func() {
		defer wg.Done()
		out.help = fetchSignal(ctx, s, SignalHelp, studentID, func(ctx context.Context) ([]models.HelpRequest, error) {
			return s.signals.HelpRequests(ctx, studentID, schoolID, since)
		})
	}()
	go func() {
		defer wg.Done()
		out.quests = fetchSignal(ctx, s, SignalQuests, studentID, func(ctx context.Context) ([]models.QuestCompletion, error) {
			return s.signals.QuestCompletions(ctx, studentID, schoolID, since)
		})
	}()
	go func() {
		defer wg.Done()
		out.classes = fetchSignal(ctx, s, SignalClasses, studentID, func(ctx context.Context) ([]models.ClassAssignment, error) {
			return s.signals.ClassAssignments(ctx, studentID, schoolID)
		})
	}()
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return wellbeingSignals{}, appErrors.WrapAs(err, appErrors.ErrInternal, "report request cancelled")
	}
	if unavailable := out.unavailable(); len(unavailable) == 5 {
		return wellbeingSignals{}, appErrors.ErrUnavailable
	}
	return out, nil
}

// fetchSignal bounds one fetch with its own timeout and converts panics into errors.
func fetchSignal[T any](ctx context.Context, s *InsightService, name, studentID string, fetch func(context.Context) (T, error)) (res signalResult[T]) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	defer cancel()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			res = signalResult[T]{Err: fmt.Errorf("signal %s panicked: %v", name, r)}
		}
		s.metrics.ObserveSignalFetch(name, time.Since(start), res.Err)
		if res.Err != nil {
			applog.ForContext(ctx, s.logger).Warn("wellbeing signal unavailable",
				zap.String("student_id", studentID),
				zap.String("signal", name),
				zap.Error(res.Err),
			)
		}
	}()

	res.Value, res.Err = fetch(fetchCtx)
	return res
}

func (s *InsightService) assemble(profile *models.StudentProfile, signals wellbeingSignals) *dto.InsightReport {
	now := s.now()
	snapshots := signals.snapshots.Value
	moods := signals.moods.Value
	help := signals.help.Value

	var latest, previous *models.WellbeingSnapshot
	if len(snapshots) > 0 {
		latest = &snapshots[0]
	}
	if len(snapshots) > 1 {
		previous = &snapshots[1]
	}

	report := &dto.InsightReport{
		ID:                 profile.ID,
		Name:               studentDisplayName(profile.FirstName, profile.LastName),
		FirstName:          profile.FirstName,
		LastName:           profile.LastName,
		Grade:              profile.GradeLevel,
		Classes:            classSummaries(signals.classes.Value),
		CurrentAnalytics:   currentAnalytics(latest),
		Trends:             BuildTrends(latest, previous, s.cfg.Policy),
		MoodHistory:        moodHistory(moods, s.cfg.MoodHistoryLimit),
		MoodStats:          AggregateMoods(moods),
		HelpRequests:       helpExcerpt(help, s.cfg.HelpExcerptLimit),
		HelpStats:          AggregateHelpRequests(help),
		QuestStats:         AggregateQuests(signals.quests.Value),
		HistoricalData:     historicalSeries(snapshots),
		UnavailableSignals: signals.unavailable(),
		GeneratedAt:        now.UTC(),
	}
	report.Insights = GenerateInsights(InsightInput{
		Snapshot:     latest,
		Moods:        moods,
		HelpRequests: help,
		Now:          now,
	}, s.cfg.Policy)
	return report
}

func studentDisplayName(first, last string) string {
	first = strings.TrimSpace(first)
	last = strings.TrimSpace(last)
	switch {
	case first != "" && last != "":
		return first + " " + last
	case first != "":
		return first
	case last != "":
		return last
	default:
		return "Unknown Student"
	}
}

func classSummaries(classes []models.ClassAssignment) []dto.ClassSummary {
	out := make([]dto.ClassSummary, 0, len(classes))
	for _, class := range classes {
		out = append(out, dto.ClassSummary{ID: class.ClassID, Name: class.ClassName, Subject: class.Subject})
	}
	return out
}

func currentAnalytics(snap *models.WellbeingSnapshot) *dto.CurrentAnalytics {
	if snap == nil {
		return nil
	}
	return &dto.CurrentAnalytics{
		AnalysisDate:             snap.AnalysisDate,
		OverallWellbeingScore:    snap.OverallWellbeingScore,
		EmotionalWellbeingScore:  snap.EmotionalWellbeingScore,
		AcademicWellbeingScore:   snap.AcademicWellbeingScore,
		EngagementWellbeingScore: snap.EngagementWellbeingScore,
		SocialWellbeingScore:     snap.SocialWellbeingScore,
		BehavioralWellbeingScore: snap.BehavioralWellbeingScore,
		RiskLevel:                string(snap.RiskLevel),
		RiskScore:                snap.RiskScore,
		RiskTrend:                snap.RiskTrend,
		AttendanceRate:           snap.AttendanceRate,
		GPA:                      snap.GPA,
		QuestCompletionRate:      snap.QuestCompletionRate,
		MoodScoreAvg:             snap.MoodScoreAvg,
		StressLevelAvg:           snap.StressLevelAvg,
		ResilienceScore:          snap.ResilienceScore,
		XPEarned:                 snap.XPEarned,
		AchievementCount:         snap.AchievementCount,
		GratitudeEntriesCount:    snap.GratitudeEntriesCount,
		KindnessActsCount:        snap.KindnessActsCount,
		IncidentCount:            snap.IncidentCount,
		HelpRequestsCount:        snap.HelpRequestsCount,
		UrgentHelpRequestsCount:  snap.UrgentHelpRequestsCount,
		InterventionRecommended:  snap.InterventionRecommended,
		InterventionPriority:     snap.InterventionPriority,
		RecommendedActions:       nonNilStrings(snap.RecommendedActions),
		RiskFactors:              nonNilStrings(snap.RiskFactors),
		ProtectiveFactors:        nonNilStrings(snap.ProtectiveFactors),
		EarlyWarningFlags:        nonNilStrings(snap.EarlyWarningFlags),
	}
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func moodHistory(moods []models.MoodEntry, limit int) []dto.MoodHistoryEntry {
	if len(moods) > limit {
		moods = moods[:limit]
	}
	out := make([]dto.MoodHistoryEntry, 0, len(moods))
	for _, entry := range moods {
		out = append(out, dto.MoodHistoryEntry{
			Date:      entry.Date.Format("2006-01-02"),
			Mood:      entry.Mood,
			Emoji:     entry.Emoji,
			Timestamp: entry.CreatedAt,
		})
	}
	return out
}

func helpExcerpt(requests []models.HelpRequest, limit int) []dto.HelpRequestExcerpt {
	if len(requests) > limit {
		requests = requests[:limit]
	}
	out := make([]dto.HelpRequestExcerpt, 0, len(requests))
	for _, req := range requests {
		out = append(out, dto.HelpRequestExcerpt{
			Message:   req.Message,
			Urgency:   req.Urgency,
			Status:    req.Status,
			CreatedAt: req.CreatedAt,
		})
	}
	return out
}

// historicalSeries excludes the latest snapshot, which is reported as currentAnalytics.
func historicalSeries(snapshots []models.WellbeingSnapshot) []dto.HistoricalPoint {
	if len(snapshots) <= 1 {
		return []dto.HistoricalPoint{}
	}
	prior := snapshots[1:]
	out := make([]dto.HistoricalPoint, 0, len(prior))
	for _, snap := range prior {
		out = append(out, dto.HistoricalPoint{
			Date:            snap.AnalysisDate,
			OverallScore:    snap.OverallWellbeingScore,
			EmotionalScore:  snap.EmotionalWellbeingScore,
			AcademicScore:   snap.AcademicWellbeingScore,
			EngagementScore: snap.EngagementWellbeingScore,
			RiskScore:       snap.RiskScore,
			AttendanceRate:  snap.AttendanceRate,
		})
	}
	return out
}
