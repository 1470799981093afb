package helper

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"axiapac.com/timeclock/infrastructure/mail"
	"axiapac.com/timeclock/report"
	v1 "axiapac.com/timeclock/timeclock/v1"
)

const (
	KindRecords        = "records"
	KindProjectHistory = "project-history"

	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type ReportEvent struct {
	Kind       string   `json:"kind"`
	UserID     string   `json:"userId"`
	Recipients []string `json:"recipients"`
	Bucket     string   `json:"bucket"`
}

type Result struct {
	FileName  string `json:"fileName"`
	Rows      int    `json:"rows"`
	Key       string `json:"key,omitempty"`
	MessageID string `json:"messageId,omitempty"`
}

type HistorySource interface {
	All(ctx context.Context) ([]v1.HistoryDTO, error)
	ForUser(ctx context.Context, userID string) ([]v1.HistoryDTO, error)
}

type ProjectHistorySource interface {
	List(ctx context.Context) ([]v1.ProjectHistoryDTO, error)
}

type Archive interface {
	WriteFile(ctx context.Context, key, contentType string, data []byte) error
}

type Mailer interface {
	Send(ctx context.Context, msg *mail.Message) (string, error)
}

type Generator struct {
	History        HistorySource
	ProjectHistory ProjectHistorySource
	// Archive opens the bucket named by the event.
	Archive      func(ctx context.Context, bucket string) (Archive, error)
	Mailer       Mailer
	Sender       string
	PhotoBaseURL string
	Location     *time.Location
}

func (g *Generator) workbook(ctx context.Context, event ReportEvent, now time.Time) ([]byte, string, int, error) {
	var buf bytes.Buffer

	switch event.Kind {
	case KindRecords:
		var (
			history []v1.HistoryDTO
			err     error
		)
		if event.UserID == "" {
			history, err = g.History.All(ctx)
		} else {
			history, err = g.History.ForUser(ctx, event.UserID)
		}
		if err != nil {
			return nil, "", 0, fmt.Errorf("failed to fetch history: %w", err)
		}
		rows := report.RecordRows(history, g.PhotoBaseURL, g.Location)
		if err := report.WriteRecords(&buf, rows); err != nil {
			return nil, "", 0, err
		}
		return buf.Bytes(), report.FileName(report.RecordSheet, now), len(rows), nil

	case KindProjectHistory:
		entries, err := g.ProjectHistory.List(ctx)
		if err != nil {
			return nil, "", 0, fmt.Errorf("failed to fetch project history: %w", err)
		}
		rows := report.ProjectHistoryRows(entries)
		if err := report.WriteProjectHistory(&buf, rows); err != nil {
			return nil, "", 0, err
		}
		return buf.Bytes(), report.FileName(report.HistorySheet, now), len(rows), nil
	}
	return nil, "", 0, fmt.Errorf("unknown report kind %q", event.Kind)
}

// Generate builds the workbook, archives it when a bucket is given and mails
// it to the recipients.
func (g *Generator) Generate(ctx context.Context, event ReportEvent, now time.Time) (*Result, error) {
	if event.Kind == "" {
		event.Kind = KindRecords
	}

	data, name, rows, err := g.workbook(ctx, event, now)
	if err != nil {
		return nil, err
	}
	result := &Result{FileName: name, Rows: rows}
	fmt.Printf("[INFO] %s: %d rows, %d bytes\n", name, rows, len(data))

	if event.Bucket != "" {
		archive, err := g.Archive(ctx, event.Bucket)
		if err != nil {
			return nil, err
		}
		key := fmt.Sprintf("reports/%s/%s", event.Kind, name)
		if err := archive.WriteFile(ctx, key, XLSXContentType, data); err != nil {
			return nil, err
		}
		result.Key = key
		fmt.Printf("[INFO] archived to s3://%s/%s\n", event.Bucket, key)
	}

	if len(event.Recipients) > 0 {
		id, err := g.Mailer.Send(ctx, &mail.Message{
			From:    g.Sender,
			To:      event.Recipients,
			Subject: Subject(event, now),
			Text:    fmt.Sprintf("The %s report generated on %s is attached (%d rows).", event.Kind, now.Format(time.DateOnly), rows),
			Attachments: []mail.Attachment{
				{Filename: name, ContentType: XLSXContentType, Content: data},
			},
		})
		if err != nil {
			return nil, err
		}
		result.MessageID = id
		fmt.Printf("[INFO] emailed %s to %s\n", name, strings.Join(event.Recipients, ", "))
	}

	return result, nil
}

func Subject(event ReportEvent, now time.Time) string {
	title := "Clock-in records"
	if event.Kind == KindProjectHistory {
		title = "Project history"
	}
	if event.UserID != "" {
		title += " for " + event.UserID
	}
	return fmt.Sprintf("%s %s", title, now.Format(time.DateOnly))
}
