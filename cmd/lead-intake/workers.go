package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	commonaws "lead-intake/internal/common/aws"
	"lead-intake/internal/common/camunda"
	"lead-intake/internal/common/config"
	"lead-intake/internal/common/database"
	"lead-intake/internal/common/logger"
	"lead-intake/internal/submission"

	cl "lead-intake/internal/workers/lead/crm-lead-create"
	ns "lead-intake/internal/workers/lead/notify-sales"
	rl "lead-intake/internal/workers/lead/record-ledger"
	sf "lead-intake/internal/workers/lead/start-follow-up"
)

// workerDeps holds the clients only enabled workers need.
type workerDeps struct {
	postgres *database.PostgresClient
	ses      *commonaws.SESClient
	sns      *commonaws.SNSClient
	zeebe    *camunda.Client
}

func connectWorkerDeps(ctx context.Context, cfg *config.Config, zapLog *zap.Logger) (*workerDeps, error) {
	deps := &workerDeps{}

	// --- Init PostgreSQL with retry ---
	if config.IsWorkerEnabled(cfg, config.WorkerRecordLedger) {
		err := retryWithBackoff(func() error {
			pg, err := database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			if err := pg.Ping(ctx); err != nil {
				_ = pg.Close()
				return err
			}
			deps.postgres = pg
			return nil
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			return nil, err
		}
		if err := deps.postgres.Migrate(ctx); err != nil {
			deps.Close(zapLog)
			return nil, err
		}
		zapLog.Info("PostgreSQL connected successfully")
	}

	// --- AWS ---
	awsCfg := cfg.Integrations.AWS
	if config.IsWorkerEnabled(cfg, config.WorkerNotifySales) && (awsCfg.SES.Enabled || awsCfg.SNS.Enabled) {
		sdkCfg, err := commonaws.LoadConfig(ctx, awsCfg.Region)
		if err != nil {
			deps.Close(zapLog)
			return nil, err
		}
		if awsCfg.SES.Enabled {
			deps.ses = commonaws.NewSESClient(sdkCfg)
		}
		if awsCfg.SNS.Enabled {
			deps.sns = commonaws.NewSNSClient(sdkCfg)
		}
	}

	// --- Init Zeebe Client with retry ---
	if config.IsWorkerEnabled(cfg, config.WorkerStartFollowUp) {
		err := retryWithBackoff(func() error {
			client, err := camunda.NewClient(cfg.Camunda.BrokerAddress, config.GetDuration(cfg.Camunda.RequestTimeout))
			if err != nil {
				return err
			}
			if err := client.HealthCheck(ctx); err != nil {
				_ = client.Close()
				return err
			}
			deps.zeebe = client
			return nil
		}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
		if err != nil {
			deps.Close(zapLog)
			return nil, err
		}
		zapLog.Info("Zeebe client connected successfully")
	}

	return deps, nil
}

func (d *workerDeps) Close(zapLog *zap.Logger) {
	if d.postgres != nil {
		if err := d.postgres.Close(); err != nil {
			zapLog.Error("Error closing PostgreSQL", zap.Error(err))
		}
	}
	if d.zeebe != nil {
		if err := d.zeebe.Close(); err != nil {
			zapLog.Error("Error closing Zeebe client", zap.Error(err))
		}
	}
}

// buildWorkers returns the enabled post-submission workers.
func buildWorkers(cfg *config.Config, deps *workerDeps, log logger.Logger) ([]submission.Worker, error) {
	var workers []submission.Worker

	if config.IsWorkerEnabled(cfg, config.WorkerRecordLedger) {
		h, err := rl.NewHandler(rl.HandlerOptions{AppConfig: cfg, DB: deps.postgres, Logger: log})
		if err != nil {
			return nil, err
		}
		workers = append(workers, h)
	}

	if config.IsWorkerEnabled(cfg, config.WorkerNotifySales) {
		opts := ns.HandlerOptions{AppConfig: cfg, Logger: log}
		// Typed nils must not reach the handler as non-nil interfaces.
		if deps.ses != nil {
			opts.Email = deps.ses
		}
		if deps.sns != nil {
			opts.Topic = deps.sns
		}
		h, err := ns.NewHandler(opts)
		if err != nil {
			return nil, err
		}
		workers = append(workers, h)
	}

	if config.IsWorkerEnabled(cfg, config.WorkerCRMLeadCreate) {
		h, err := cl.NewHandler(cl.HandlerOptions{AppConfig: cfg, Logger: log})
		if err != nil {
			return nil, err
		}
		workers = append(workers, h)
	}

	if config.IsWorkerEnabled(cfg, config.WorkerStartFollowUp) {
		h, err := sf.NewHandler(sf.HandlerOptions{AppConfig: cfg, Camunda: deps.zeebe, Logger: log})
		if err != nil {
			return nil, err
		}
		workers = append(workers, h)
	}

	for _, w := range workers {
		log.Info("Worker registered", map[string]interface{}{"worker": w.Name()})
	}
	if len(workers) == 0 {
		log.Info("No post-submission workers enabled", nil)
	}
	return workers, nil
}
