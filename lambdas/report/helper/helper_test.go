package helper

import (
	"context"
	"testing"
	"time"

	"axiapac.com/timeclock/infrastructure/mail"
	"axiapac.com/timeclock/report"
	v1 "axiapac.com/timeclock/timeclock/v1"
	"axiapac.com/timeclock/timeclock/v1/common"
	"axiapac.com/timeclock/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHistory struct {
	forUser string
}

func (f *fakeHistory) All(context.Context) ([]v1.HistoryDTO, error) {
	return []v1.HistoryDTO{{ID: "h1", UserName: "Ana", Hours: 1}, {ID: "h2", UserName: "Ben", Hours: 2}}, nil
}

func (f *fakeHistory) ForUser(_ context.Context, userID string) ([]v1.HistoryDTO, error) {
	f.forUser = userID
	return []v1.HistoryDTO{{ID: "h1", UserID: userID, UserName: "Ana", Hours: 1, PhotoPath: utils.Ptr("/uploads/a.jpg")}}, nil
}

type fakeProjectHistory struct{}

func (fakeProjectHistory) List(context.Context) ([]v1.ProjectHistoryDTO, error) {
	return []v1.ProjectHistoryDTO{{ID: "p1", ProjectID: "abcdef123", ProjectName: "Depot", Status: common.ProjectStatus("start")}}, nil
}

type memArchive map[string][]byte

func (m memArchive) WriteFile(_ context.Context, key, _ string, data []byte) error {
	m[key] = data
	return nil
}

type fakeMailer struct {
	sent []*mail.Message
}

func (f *fakeMailer) Send(_ context.Context, msg *mail.Message) (string, error) {
	f.sent = append(f.sent, msg)
	return "msg-1", nil
}

func newGenerator(history *fakeHistory, archive memArchive, mailer *fakeMailer) *Generator {
	return &Generator{
		History:        history,
		ProjectHistory: fakeProjectHistory{},
		Archive: func(context.Context, string) (Archive, error) {
			return archive, nil
		},
		Mailer:       mailer,
		Sender:       "reports@example.com",
		PhotoBaseURL: "https://api.example.com",
	}
}

func TestGenerateRecords(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	history := &fakeHistory{}
	archive := memArchive{}
	mailer := &fakeMailer{}

	result, err := newGenerator(history, archive, mailer).Generate(context.Background(), ReportEvent{
		UserID:     "u1",
		Recipients: []string{"boss@example.com"},
		Bucket:     "reports",
	}, now)
	require.NoError(t, err)

	assert.Equal(t, "u1", history.forUser)
	assert.Equal(t, "MyRecord_20240501_093000.xlsx", result.FileName)
	assert.Equal(t, 1, result.Rows)
	assert.Equal(t, "reports/records/MyRecord_20240501_093000.xlsx", result.Key)
	assert.Equal(t, "msg-1", result.MessageID)
	assert.NotEmpty(t, archive[result.Key])

	require.Len(t, mailer.sent, 1)
	msg := mailer.sent[0]
	assert.Equal(t, "Clock-in records for u1 2024-05-01", msg.Subject)
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, result.FileName, msg.Attachments[0].Filename)
}

func TestGenerateProjectHistoryWithoutDelivery(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	archive := memArchive{}
	mailer := &fakeMailer{}

	result, err := newGenerator(&fakeHistory{}, archive, mailer).Generate(context.Background(), ReportEvent{Kind: KindProjectHistory}, now)
	require.NoError(t, err)

	assert.Equal(t, "History_20240501_093000.xlsx", result.FileName)
	assert.Empty(t, result.Key)
	assert.Empty(t, archive)
	assert.Empty(t, mailer.sent)
}

func TestGenerateErrors(t *testing.T) {
	g := newGenerator(&fakeHistory{}, memArchive{}, &fakeMailer{})

	_, err := g.Generate(context.Background(), ReportEvent{Kind: "timesheets"}, time.Now())
	assert.ErrorContains(t, err, "unknown report kind")

	g.History = emptyHistory{}
	_, err = g.Generate(context.Background(), ReportEvent{}, time.Now())
	assert.ErrorIs(t, err, report.ErrNoData)
}

type emptyHistory struct{}

func (emptyHistory) All(context.Context) ([]v1.HistoryDTO, error) { return nil, nil }

func (emptyHistory) ForUser(context.Context, string) ([]v1.HistoryDTO, error) { return nil, nil }
