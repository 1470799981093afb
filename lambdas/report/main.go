package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"axiapac.com/timeclock/config"
	"axiapac.com/timeclock/infrastructure/communication"
	"axiapac.com/timeclock/infrastructure/devops"
	"axiapac.com/timeclock/infrastructure/filesystem"
	"axiapac.com/timeclock/infrastructure/mail"
	"axiapac.com/timeclock/lambdas/report/helper"
	v1 "axiapac.com/timeclock/timeclock/v1"
	"github.com/aws/aws-lambda-go/lambda"
)

// The function calls the API with a service token, TIMECLOCK_API_TOKEN.
func newGenerator(ctx context.Context) (*helper.Generator, *config.Config, error) {
	cfg, err := config.Load(ctx, config.LoadOptions{Parameters: devops.LoadParameter})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	token := os.Getenv("TIMECLOCK_API_TOKEN")
	if token == "" {
		return nil, nil, fmt.Errorf("TIMECLOCK_API_TOKEN is required")
	}
	client := v1.NewClient(cfg.APIURL, v1.StaticToken(token), nil)

	mailer, err := mail.ConnectMailer(ctx)
	if err != nil {
		return nil, nil, err
	}

	return &helper.Generator{
		History:        client.History,
		ProjectHistory: client.ProjectHistory,
		Archive: func(ctx context.Context, bucket string) (helper.Archive, error) {
			return filesystem.ConnectBucket(ctx, bucket)
		},
		Mailer:       mailer,
		Sender:       cfg.Report.Sender,
		PhotoBaseURL: strings.TrimRight(cfg.APIURL, "/"),
		Location:     cfg.Location(),
	}, cfg, nil
}

func HandleRequest(ctx context.Context, event helper.ReportEvent) (*helper.Result, error) {
	eventJson, _ := json.Marshal(event)
	fmt.Printf("[INFO] Event: %s\n", string(eventJson))

	generator, cfg, err := newGenerator(ctx)
	if err != nil {
		fmt.Printf("[ERROR] %v\n", err)
		return nil, err
	}
	if event.Bucket == "" {
		event.Bucket = cfg.Report.Bucket
	}

	slack := communication.NewSlack(cfg.Slack.Token, communication.SlackOption{
		InfoChannelID:  cfg.Slack.InfoChannel,
		ErrorChannelID: cfg.Slack.ErrorChannel,
	})

	result, err := generator.Generate(ctx, event, time.Now().In(cfg.Location()))
	if err != nil {
		fmt.Printf("[ERROR] failed to generate %s report: %v\n", event.Kind, err)
		if cfg.Slack.Token != "" {
			if serr := slack.Error(ctx, fmt.Sprintf("%s report failed: %v", event.Kind, err)); serr != nil {
				fmt.Printf("[ERROR] %v\n", serr)
			}
		}
		return nil, err
	}

	if cfg.Slack.Token != "" {
		msg := fmt.Sprintf("%s generated with %d rows", result.FileName, result.Rows)
		if len(event.Recipients) > 0 {
			msg += " and sent to " + strings.Join(event.Recipients, ", ")
		}
		if err := slack.Info(ctx, msg); err != nil {
			fmt.Printf("[ERROR] %v\n", err)
		}
	}
	return result, nil
}

func main() {
	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		lambda.Start(HandleRequest)
		return
	}

	event := helper.ReportEvent{Kind: helper.KindRecords}
	if len(os.Args) > 1 {
		if err := json.Unmarshal([]byte(os.Args[1]), &event); err != nil {
			fmt.Printf("[ERROR] invalid event: %v\n", err)
			os.Exit(1)
		}
	}
	result, err := HandleRequest(context.Background(), event)
	if err != nil {
		os.Exit(1)
	}
	resJson, _ := json.MarshalIndent(result, "", "  ")
	fmt.Printf("[SUCCESS] Result:\n%s\n", string(resJson))
}
