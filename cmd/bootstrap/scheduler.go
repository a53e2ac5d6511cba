package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"allegro-autopilot/internal/pkg/config"
	"allegro-autopilot/internal/pkg/errs"
	"allegro-autopilot/internal/usecase/commands"

	"go.uber.org/fx"
)

var SchedulerModule = fx.Module("scheduler",
	fx.Invoke(StartScheduler),
)

// Scheduler drives the automation loops. Each loop runs on its own
// interval; a tick gets a bounded context and an overrun abandons the tick
// rather than delaying the next one.
type Scheduler struct {
	repricing commands.RepricingCommands
	inventory commands.InventoryCommands
	disputes  commands.DisputeCommands
	cfg       config.AutomationConfig
	logger    *slog.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

func StartScheduler(
	lc fx.Lifecycle,
	repricing commands.RepricingCommands,
	inventory commands.InventoryCommands,
	disputes commands.DisputeCommands,
	cfg config.AutomationConfig,
	logger *slog.Logger,
) {
	s := &Scheduler{
		repricing: repricing,
		inventory: inventory,
		disputes:  disputes,
		cfg:       cfg,
		logger:    logger,
	}

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			ctx, cancel := context.WithCancel(context.Background())
			s.cancel = cancel
			s.done = make(chan struct{}, 3)

			go s.loop(ctx, "repricing", s.cfg.RepricingEvery, func(tickCtx context.Context) error {
				_, err := s.repricing.Run(tickCtx, nil)
				return err
			})
			go s.loop(ctx, "inventory", s.cfg.InventoryEvery, func(tickCtx context.Context) error {
				_, err := s.inventory.Run(tickCtx, nil)
				return err
			})
			go s.loop(ctx, "disputes", s.cfg.DisputeSweepEvery, func(tickCtx context.Context) error {
				_, err := s.disputes.Sweep(tickCtx)
				return err
			})

			s.logger.Info("automation scheduler started",
				"repricing_every", s.cfg.RepricingEvery,
				"inventory_every", s.cfg.InventoryEvery,
				"dispute_sweep_every", s.cfg.DisputeSweepEvery,
				"tick_budget", s.cfg.TickBudget)
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			s.cancel()
			for range 3 {
				select {
				case <-s.done:
				case <-stopCtx.Done():
					return stopCtx.Err()
				}
			}
			s.logger.Info("automation scheduler stopped")
			return nil
		},
	})
}

func (s *Scheduler) loop(ctx context.Context, name string, every time.Duration, tick func(context.Context) error) {
	defer func() { s.done <- struct{}{} }()

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runTick(ctx, name, tick)
		}
	}
}

func (s *Scheduler) runTick(ctx context.Context, name string, tick func(context.Context) error) {
	tickCtx, cancel := context.WithTimeout(ctx, s.cfg.TickBudget)
	defer cancel()

	start := time.Now()
	if err := tick(tickCtx); err != nil {
		// A disconnected account stalls every loop the same way; keep the
		// log noise proportional.
		level := slog.LevelError
		if errors.Is(err, errs.ErrAccountDisconnected) {
			level = slog.LevelWarn
		}
		s.logger.Log(ctx, level, "automation tick failed",
			"loop", name, "duration", time.Since(start), "error", err.Error())
		return
	}
	s.logger.Debug("automation tick finished", "loop", name, "duration", time.Since(start))
}
