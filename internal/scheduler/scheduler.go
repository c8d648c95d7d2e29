package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/shopms/internal/config"
	"github.com/mamadbah2/shopms/internal/domain/models"
	"github.com/mamadbah2/shopms/internal/service/whatsapp"
)

// ReportBuilder produces and persists the end-of-day report.
type ReportBuilder interface {
	SaveDailyReport(ctx context.Context, day time.Time) (models.DailyReport, error)
	FormatDailyReport(report models.DailyReport) string
}

// ReportExporter mirrors a saved report somewhere outside the database.
type ReportExporter interface {
	ExportDailyReport(ctx context.Context, report models.DailyReport) error
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron         *cron.Cron
	reportingSvc ReportBuilder
	exporter     ReportExporter
	messagingSvc whatsapp.MessagingService
	cfg          config.ReportingConfig
	recipient    string
	logger       *zap.Logger
	now          func() time.Time
}

// NewScheduler creates a new scheduler instance. exporter and messagingSvc may be nil.
func NewScheduler(cfg config.Config, reportingSvc ReportBuilder, exporter ReportExporter, messagingSvc whatsapp.MessagingService, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := cfg.Reporting.Location()
	if err != nil {
		return nil, err
	}

	// Standard 5-field parser, evaluated in the shop's timezone.
	c := cron.New(cron.WithLocation(loc))

	return &Scheduler{
		cron:         c,
		reportingSvc: reportingSvc,
		exporter:     exporter,
		messagingSvc: messagingSvc,
		cfg:          cfg.Reporting,
		recipient:    cfg.WhatsApp.RecipientID,
		logger:       logger,
		now:          time.Now,
	}, nil
}

// Start registers the jobs and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("daily_report", s.cfg.CronSchedule))

	if _, err := s.cron.AddFunc(s.cfg.CronSchedule, s.runDailyReport); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runDailyReport() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	s.DailyReport(ctx)
}

// DailyReport saves today's report, then exports and announces it. Only the save
// is required; export and notification failures are logged.
func (s *Scheduler) DailyReport(ctx context.Context) {
	s.logger.Info("generating daily report")

	report, err := s.reportingSvc.SaveDailyReport(ctx, s.now())
	if err != nil {
		s.logger.Error("failed to save daily report", zap.Error(err))
		return
	}

	if s.exporter != nil {
		if err := s.exporter.ExportDailyReport(ctx, report); err != nil {
			s.logger.Error("failed to export daily report", zap.Error(err))
		}
	}

	if s.messagingSvc == nil {
		return
	}
	req := models.OutboundMessageRequest{
		To:      s.recipient,
		Message: s.reportingSvc.FormatDailyReport(report),
	}
	if err := s.messagingSvc.SendOutbound(ctx, req); err != nil {
		s.logger.Error("failed to send daily report", zap.Error(err))
	} else {
		s.logger.Info("daily report sent successfully")
	}
}
