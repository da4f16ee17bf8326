package config

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// The deployment stack injects the camel-cased bucketName, which
	// envconfig cannot address (it upper-cases keys); see FromEnv.
	BucketName string `envconfig:"BUCKET_NAME" validate:"required"`
	TasksTable string `envconfig:"TASKS_TABLE" default:"Child_Tasks" validate:"required"`

	Region         string `envconfig:"AWS_REGION" default:"us-east-1" validate:"required"`
	DynamoEndpoint string `envconfig:"DYNAMO_ENDPOINT" validate:"omitempty,url"`
	S3Endpoint     string `envconfig:"S3_ENDPOINT" validate:"omitempty,url"`
	SESEndpoint    string `envconfig:"SES_ENDPOINT" validate:"omitempty,url"`

	Timezone        string `envconfig:"REPORT_TIMEZONE" default:"UTC" validate:"required,timezone"`
	SkipEmptyReport bool   `envconfig:"SKIP_EMPTY_REPORT" default:"false"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json" validate:"oneof=json text"`

	// Daemon and API modes only.
	ScheduleCron string `envconfig:"SCHEDULE_CRON" default:"0 20 * * *" validate:"required"`
	MetricsAddr  string `envconfig:"METRICS_ADDR" default:":9090"`
	HTTPAddr     string `envconfig:"HTTP_ADDR" default:":8080"`
}

// FromEnv reads and validates the process configuration.
func FromEnv() (Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return Config{}, fmt.Errorf("read env: %w", err)
	}
	if v, ok := os.LookupEnv("bucketName"); ok && v != "" {
		c.BucketName = v
	}
	if err := validator.New().Struct(c); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return c, nil
}

// Location is the zone in which "today" is computed.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// LoadAWS builds the SDK config shared by the DynamoDB, S3 and SES clients.
func (c Config) LoadAWS(ctx context.Context) (aws.Config, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(c.Region))
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return cfg, nil
}
