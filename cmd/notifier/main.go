// Command notifier is the Lambda function EventBridge invokes once a day to
// email the list of late maintenance tasks.
package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	_ "time/tzdata"

	"github.com/clemsonMakerspace/unified-makerspace-sub003/internal/app"
)

func main() {
	ctx := context.Background()

	_, logger, svc, err := app.Load(ctx)
	if err != nil {
		log.Fatalf("notifier: init: %v", err)
	}
	defer logger.Sync()

	// The schedule event carries nothing we need.
	lambda.Start(func(ctx context.Context, ev events.CloudWatchEvent) (string, error) {
		logger.Info("invoked", zap.String("source", ev.Source), zap.Time("time", ev.Time))
		return svc.Notifier.Run(ctx)
	})
}
