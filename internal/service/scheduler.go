package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"market-tips/config"
	"market-tips/internal/dto"
	"market-tips/internal/repository"
	"market-tips/pkg/eventstore"
	"market-tips/pkg/logger"
	"market-tips/pkg/metrics"
	"market-tips/pkg/trace"

	"github.com/robfig/cron/v3"
)

// SchedulerService runs the delivery pipeline twice a day and exposes it
// for manual triggering. Overlapping runs of the same job are skipped.
type SchedulerService interface {
	Start(ctx context.Context) error
	Stop()
	ExecuteDelivery(ctx context.Context, deliveryType dto.DeliveryType) error
}

type schedulerService struct {
	cfg            *config.Config
	logger         *logger.Logger
	aggregator     AggregatorService
	analysis       AnalysisService
	email          EmailService
	tipRepo        repository.TradingTipRepository
	marketDataRepo repository.MarketDataRepository
	events         *eventstore.Store
	cron           *cron.Cron
}

func NewSchedulerService(
	cfg *config.Config,
	log *logger.Logger,
	aggregator AggregatorService,
	analysis AnalysisService,
	email EmailService,
	tipRepo repository.TradingTipRepository,
	marketDataRepo repository.MarketDataRepository,
	events *eventstore.Store,
) (SchedulerService, error) {
	loc, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid scheduler timezone %q: %w", cfg.Scheduler.Timezone, err)
	}

	return &schedulerService{
		cfg:            cfg,
		logger:         log,
		aggregator:     aggregator,
		analysis:       analysis,
		email:          email,
		tipRepo:        tipRepo,
		marketDataRepo: marketDataRepo,
		events:         events,
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
	}, nil
}

func (s *schedulerService) Start(ctx context.Context) error {
	jobs := []struct {
		timeOfDay    string
		deliveryType dto.DeliveryType
	}{
		{s.cfg.Scheduler.MorningTime, dto.DeliveryMorning},
		{s.cfg.Scheduler.EveningTime, dto.DeliveryEvening},
	}

	for _, job := range jobs {
		spec, err := cronSpecFromTimeOfDay(job.timeOfDay)
		if err != nil {
			return fmt.Errorf("invalid %s delivery time: %w", job.deliveryType, err)
		}
		deliveryType := job.deliveryType
		if _, err := s.cron.AddFunc(spec, func() {
			runCtx := trace.WithContext(ctx, trace.NewTraceID())
			if err := s.ExecuteDelivery(runCtx, deliveryType); err != nil {
				s.logger.ErrorContext(runCtx, "Scheduled delivery failed",
					logger.StringField("delivery_type", string(deliveryType)),
					logger.ErrorField(err))
			}
		}); err != nil {
			return err
		}
		s.logger.Info("Scheduled delivery registered",
			logger.StringField("delivery_type", string(deliveryType)),
			logger.StringField("time", job.timeOfDay),
			logger.StringField("timezone", s.cfg.Scheduler.Timezone))
	}

	// Housekeeping: drop aged events so the store reflects its max age.
	if _, err := s.cron.AddFunc("*/10 * * * *", func() {
		removed := s.events.PurgeOlderThan(0)
		if removed > 0 {
			s.logger.Debug("Purged aged events", logger.IntField("removed", removed))
		}
	}); err != nil {
		return err
	}

	if s.cfg.Scheduler.RetentionDays > 0 {
		if _, err := s.cron.AddFunc("0 4 * * *", func() {
			s.purgeAgedRecords(ctx)
		}); err != nil {
			return err
		}
	}

	s.cron.Start()
	return nil
}

func (s *schedulerService) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
}

// ExecuteDelivery runs the full pipeline: fetch, analyze, persist, email.
func (s *schedulerService) ExecuteDelivery(ctx context.Context, deliveryType dto.DeliveryType) error {
	start := time.Now()
	traceID := trace.FromContext(ctx)
	if traceID == "" {
		traceID = trace.NewTraceID()
		ctx = trace.WithContext(ctx, traceID)
	}

	s.logger.InfoContext(ctx, "Starting delivery pipeline",
		logger.StringField("delivery_type", string(deliveryType)))
	s.events.Add(traceID, eventstore.TypeDeliveryStart, "scheduler",
		fmt.Sprintf("starting %s delivery", deliveryType),
		map[string]interface{}{"delivery_type": string(deliveryType)}, 0)

	stats, err := s.runPipeline(ctx, deliveryType)

	status := dto.DeliveryStatusSuccess
	if err != nil {
		status = dto.DeliveryStatusFailed
		s.events.Add(traceID, eventstore.TypeError, "scheduler", err.Error(),
			map[string]interface{}{"delivery_type": string(deliveryType)}, 0)
	}

	elapsed := time.Since(start)
	metrics.DeliveriesTotal.WithLabelValues(string(deliveryType), status).Inc()
	metrics.DeliveryDuration.WithLabelValues(string(deliveryType)).Observe(elapsed.Seconds())
	s.events.Add(traceID, eventstore.TypeDeliveryComplete, "scheduler",
		fmt.Sprintf("%s delivery finished with status %s", deliveryType, status),
		map[string]interface{}{
			"delivery_type":   string(deliveryType),
			"status":          status,
			"tips_generated":  stats.tipsGenerated,
			"recipients_sent": stats.recipientsSent,
		},
		float64(elapsed.Milliseconds()))

	s.logger.InfoContext(ctx, "Delivery pipeline finished",
		logger.StringField("delivery_type", string(deliveryType)),
		logger.StringField("status", status))
	return err
}

type pipelineStats struct {
	tipsGenerated  int
	recipientsSent int
}

func (s *schedulerService) runPipeline(ctx context.Context, deliveryType dto.DeliveryType) (pipelineStats, error) {
	var stats pipelineStats

	data, err := s.aggregator.FetchAll(ctx)
	if err != nil {
		return stats, fmt.Errorf("market data fetch failed: %w", err)
	}

	tips := s.analysis.Analyze(ctx, data, deliveryType)
	stats.tipsGenerated = len(tips)
	if err := s.analysis.PersistTips(ctx, tips); err != nil {
		// Tips still go out by email even when persistence fails.
		s.logger.ErrorContext(ctx, "Failed to persist tips", logger.ErrorField(err))
	}

	sent, err := s.email.Deliver(ctx, tips, data, deliveryType)
	stats.recipientsSent = sent
	if err != nil {
		return stats, fmt.Errorf("email delivery failed: %w", err)
	}
	return stats, nil
}

// purgeAgedRecords applies the retention policy to persisted tips and
// market data snapshots.
func (s *schedulerService) purgeAgedRecords(ctx context.Context) {
	cutoff := time.Now().UTC().AddDate(0, 0, -s.cfg.Scheduler.RetentionDays)

	tipsRemoved, err := s.tipRepo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to purge aged tips", logger.ErrorField(err))
	}
	snapshotsRemoved, err := s.marketDataRepo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to purge aged market data", logger.ErrorField(err))
	}

	if tipsRemoved > 0 || snapshotsRemoved > 0 {
		s.logger.Info("Retention purge finished",
			logger.IntField("tips_removed", int(tipsRemoved)),
			logger.IntField("snapshots_removed", int(snapshotsRemoved)))
	}
}

// cronSpecFromTimeOfDay converts an HH:MM wall-clock time into a daily
// cron spec.
func cronSpecFromTimeOfDay(timeOfDay string) (string, error) {
	parts := strings.Split(timeOfDay, ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("time %q is not in HH:MM format", timeOfDay)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("time %q has an invalid hour", timeOfDay)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("time %q has an invalid minute", timeOfDay)
	}
	return fmt.Sprintf("%d %d * * *", minute, hour), nil
}
