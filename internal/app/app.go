// Package app wires the AWS-backed collaborators shared by every binary.
package app

import (
	"context"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/clemsonMakerspace/unified-makerspace-sub003/internal/config"
	"github.com/clemsonMakerspace/unified-makerspace-sub003/internal/email"
	"github.com/clemsonMakerspace/unified-makerspace-sub003/internal/logging"
	"github.com/clemsonMakerspace/unified-makerspace-sub003/internal/notifier"
	"github.com/clemsonMakerspace/unified-makerspace-sub003/internal/settings"
	"github.com/clemsonMakerspace/unified-makerspace-sub003/internal/store"
)

type Services struct {
	Tasks     *store.DynamoStore
	Addresses *settings.S3Store
	Email     *email.SESClient
	Notifier  *notifier.Handler
}

func Build(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Services, error) {
	awsCfg, err := cfg.LoadAWS(ctx)
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	s := &Services{
		Tasks:     store.NewDynamoStore(awsCfg, cfg.TasksTable, cfg.DynamoEndpoint, logger),
		Addresses: settings.NewS3Store(awsCfg, cfg.BucketName, cfg.S3Endpoint),
		Email:     email.NewSESClient(awsCfg, cfg.SESEndpoint, logger),
	}
	s.Notifier = notifier.New(s.Tasks, s.Addresses, s.Email, s.Email, notifier.Options{
		Location:  loc,
		SkipEmpty: cfg.SkipEmptyReport,
	}, logger)

	logger.Info("services ready",
		zap.String("table", cfg.TasksTable),
		zap.String("bucket", cfg.BucketName),
		zap.String("region", cfg.Region),
		zap.String("timezone", loc.String()))
	return s, nil
}

// Load reads the environment (after .env, when present), builds the logger
// and wires the services.
func Load(ctx context.Context) (config.Config, *zap.Logger, *Services, error) {
	_ = godotenv.Load()

	cfg, err := config.FromEnv()
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	svc, err := Build(ctx, cfg, logger)
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	return cfg, logger, svc, nil
}
