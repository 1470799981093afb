package communication

import (
	"context"
	"fmt"
	"os"

	"github.com/slack-go/slack"

	"axiapac.com/timeclock/service"
)

// Poster is the part of the slack client used here.
type Poster interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

type Slack struct {
	client  Poster
	options SlackOption
}

type SlackOption struct {
	InfoChannelID  string
	ErrorChannelID string
}

func ConnectSlack() *Slack {
	token := os.Getenv("SLACK_BOT_TOKEN")
	infoCh := os.Getenv("SLACK_INFO_CHANNEL")
	errorCh := os.Getenv("SLACK_ERROR_CHANNEL")

	return NewSlack(token, SlackOption{InfoChannelID: infoCh, ErrorChannelID: errorCh})
}

func NewSlack(token string, options SlackOption) *Slack {
	return NewSlackWithClient(slack.New(token), options)
}

func NewSlackWithClient(client Poster, options SlackOption) *Slack {
	return &Slack{client: client, options: options}
}

func (s *Slack) postMessage(ctx context.Context, channelID, message string) error {
	if channelID == "" {
		return nil
	}
	_, _, err := s.client.PostMessageContext(ctx,
		channelID,
		slack.MsgOptionText(message, false),
		slack.MsgOptionAsUser(true),
	)
	if err != nil {
		return fmt.Errorf("failed to post message to Slack: %w", err)
	}
	return nil
}

func (s *Slack) Info(ctx context.Context, message string) error {
	return s.postMessage(ctx, s.options.InfoChannelID, message)
}

func (s *Slack) Error(ctx context.Context, message string) error {
	return s.postMessage(ctx, s.options.ErrorChannelID, message)
}

// Notify posts geofence exits to the error channel and everything else to
// the info channel.
func (s *Slack) Notify(ctx context.Context, alert service.Alert) error {
	text := fmt.Sprintf("[%s] user %s: %s", alert.Kind, alert.UserID, alert.Message)
	if alert.ClockinID != "" {
		text += fmt.Sprintf(" (clock-in %s)", alert.ClockinID)
	}
	if alert.Kind == service.AlertGeofenceExit {
		return s.Error(ctx, text)
	}
	return s.Info(ctx, text)
}

var _ service.Notifier = (*Slack)(nil)
