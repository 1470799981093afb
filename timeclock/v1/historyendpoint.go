package v1

import (
	"context"
	"fmt"

	"axiapac.com/timeclock/timeclock/v1/common"
)

type HistoryDTO struct {
	ID          string            `json:"id" validate:"required"`
	ClockinID   string            `json:"clockin_id"`
	UserID      string            `json:"user_id"`
	UserName    string            `json:"user_name"`
	ProjectID   string            `json:"project_id"`
	ProjectName string            `json:"project_name"`
	StartTime   common.Timestamp  `json:"start_time" validate:"required"`
	EndTime     *common.Timestamp `json:"end_time,omitempty"`
	Hours       float64           `json:"hours"`
	PhotoPath   *string           `json:"photo_path,omitempty"`
	CreatedAt   common.Timestamp  `json:"created_at"`
	common.Address
}

type HistoryEndpoint struct {
	transport *Transport
}

func (e *HistoryEndpoint) All(ctx context.Context) ([]HistoryDTO, error) {
	const path = "/clockin_history/all"
	resp, err := e.transport.Get(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[HistoryDTO](resp, path)
}

func (e *HistoryEndpoint) ForUser(ctx context.Context, userID string) ([]HistoryDTO, error) {
	path := fmt.Sprintf("/clockin_history/%s", userID)
	resp, err := e.transport.Get(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[HistoryDTO](resp, path)
}

// Update replaces the address fields of a history entry.
func (e *HistoryEndpoint) Update(ctx context.Context, id string, address common.Address) (*HistoryDTO, error) {
	path := fmt.Sprintf("/clockin_history/%s", id)
	resp, err := e.transport.Patch(ctx, path, address)
	if err != nil {
		return nil, err
	}
	return decodeOne[HistoryDTO](resp, path)
}

func (e *HistoryEndpoint) Delete(ctx context.Context, id string) error {
	_, err := e.transport.Delete(ctx, fmt.Sprintf("/clockin_history/%s", id))
	return err
}

type ProjectHistoryDTO struct {
	ID          string               `json:"id" validate:"required"`
	ClockinID   *string              `json:"clockin_id,omitempty"`
	UserID      *string              `json:"user_id,omitempty"`
	UserName    string               `json:"user_name"`
	ProjectID   string               `json:"project_id" validate:"required"`
	ProjectName string               `json:"project_name"`
	Status      common.ProjectStatus `json:"status" validate:"omitempty,oneof=start in_progress finished"`
	StartDate   common.Timestamp     `json:"start_date"`
	EndDate     *common.Timestamp    `json:"end_date,omitempty"`
	Hours       float64              `json:"hours"`
	common.Address
}

// IsTotal reports whether the row is the per-project total the server
// emits ahead of the individual entries.
func (p *ProjectHistoryDTO) IsTotal() bool {
	return p.UserID == nil && p.UserName == "TOTAL"
}

type ProjectHistoryEndpoint struct {
	transport *Transport
}

func (e *ProjectHistoryEndpoint) List(ctx context.Context) ([]ProjectHistoryDTO, error) {
	const path = "/project_history/"
	resp, err := e.transport.Get(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[ProjectHistoryDTO](resp, path)
}
