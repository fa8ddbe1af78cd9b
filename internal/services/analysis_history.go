package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/jstittsworth/monster-team-builder/internal/analysis"
	"github.com/jstittsworth/monster-team-builder/internal/models"
	"github.com/jstittsworth/monster-team-builder/pkg/database"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// AnalysisHistoryService stores reports for saved teams and prunes old ones
// on a schedule.
type AnalysisHistoryService struct {
	db        *database.DB
	logger    *logrus.Logger
	cron      *cron.Cron
	entryID   cron.EntryID
	mu        sync.Mutex
	isRunning bool
	retention time.Duration
	schedule  string
	now       func() time.Time
}

func NewAnalysisHistoryService(db *database.DB, logger *logrus.Logger, retention time.Duration, schedule string) *AnalysisHistoryService {
	return &AnalysisHistoryService{
		db:        db,
		logger:    logger,
		cron:      cron.New(),
		retention: retention,
		schedule:  schedule,
		now:       time.Now,
	}
}

// Record stores a report for a team.
func (s *AnalysisHistoryService) Record(ctx context.Context, requestID string, teamID uint, report *analysis.TeamAnalysisReport) (*models.TeamAnalysis, error) {
	payload, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}

	entry := models.TeamAnalysis{
		RequestID:           requestID,
		TeamID:              teamID,
		Report:              datatypes.JSON(payload),
		RecommendationCount: len(report.Recommendations),
		WarningCount:        len(report.Warnings),
	}
	if err := s.db.WithContext(ctx).Omit("Team").Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("failed to store analysis: %w", err)
	}
	return &entry, nil
}

// List returns the most recent reports for a team.
func (s *AnalysisHistoryService) List(ctx context.Context, teamID uint, limit int) ([]models.TeamAnalysis, error) {
	analyses, err := models.GetTeamAnalyses(&database.DB{DB: s.db.WithContext(ctx)}, teamID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	return analyses, nil
}

// Prune deletes reports older than the retention window.
func (s *AnalysisHistoryService) Prune(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.retention)
	result := s.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&models.TeamAnalysis{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to prune analyses: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// Start schedules the retention job.
func (s *AnalysisHistoryService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("analysis history cleanup is already running")
	}
	if s.retention <= 0 {
		return fmt.Errorf("analysis history retention must be positive, got %s", s.retention)
	}

	entryID, err := s.cron.AddFunc(s.schedule, s.cleanup)
	if err != nil {
		return fmt.Errorf("failed to schedule analysis cleanup: %w", err)
	}
	s.entryID = entryID

	s.cron.Start()
	s.isRunning = true

	s.logger.WithFields(logrus.Fields{
		"schedule":  s.schedule,
		"retention": s.retention.String(),
	}).Info("Analysis history cleanup started")
	return nil
}

// Stop halts the schedule, waits for a running cleanup to finish and drops
// the job so a later Start schedules it once.
func (s *AnalysisHistoryService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.cron.Remove(s.entryID)

	s.isRunning = false
	s.logger.Info("Analysis history cleanup stopped")
}

// Status reports whether the job is scheduled and when it next runs.
func (s *AnalysisHistoryService) Status() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	nextRuns := make([]time.Time, 0, len(entries))
	for _, entry := range entries {
		nextRuns = append(nextRuns, entry.Next)
	}

	return map[string]interface{}{
		"is_running": s.isRunning,
		"schedule":   s.schedule,
		"retention":  s.retention.String(),
		"next_runs":  nextRuns,
	}
}

func (s *AnalysisHistoryService) cleanup() {
	deleted, err := s.Prune(context.Background())
	if err != nil {
		s.logger.Errorf("Failed to clean up analysis history: %v", err)
		return
	}
	s.logger.Infof("Cleaned up %d old analysis records", deleted)
}
