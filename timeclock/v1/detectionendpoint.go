package v1

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
)

const (
	TaskPending   = "pending"
	TaskCompleted = "completed"
	TaskFailed    = "failed"
)

type DetectResponse struct {
	TaskID string `json:"task_id" validate:"required"`
}

type TaskStatusDTO struct {
	Status  string      `json:"status" validate:"required,oneof=pending completed failed"`
	Clockin *ClockinDTO `json:"clockin,omitempty" validate:"required_if=Status completed"`
	Error   string      `json:"error,omitempty"`
}

func (s *TaskStatusDTO) Done() bool {
	return s.Status == TaskCompleted || s.Status == TaskFailed
}

type TaskMetadata struct {
	ProjectID  string
	Latitude   float64
	Longitude  float64
	PostalCode string
}

type DetectionEndpoint struct {
	transport *Transport
}

// Detect submits a clock-in photo for safety equipment detection and
// returns the id of the background task.
func (e *DetectionEndpoint) Detect(ctx context.Context, userID string, start ClockinStart) (*DetectResponse, error) {
	path := fmt.Sprintf("/detection/clockins/%s/detect", userID)
	resp, err := e.transport.SendForm(ctx, http.MethodPost, path, start.form())
	if err != nil {
		return nil, err
	}
	return decodeOne[DetectResponse](resp, path)
}

func (e *DetectionEndpoint) SaveTaskMetadata(ctx context.Context, taskID string, meta TaskMetadata) error {
	query := map[string]string{
		"task_id":     taskID,
		"project_id":  meta.ProjectID,
		"latitude":    strconv.FormatFloat(meta.Latitude, 'f', -1, 64),
		"longitude":   strconv.FormatFloat(meta.Longitude, 'f', -1, 64),
		"postal_code": meta.PostalCode,
	}
	_, err := e.transport.Post(ctx, "/detection/task-metadata", nil, query)
	return err
}

func (e *DetectionEndpoint) TaskStatus(ctx context.Context, taskID string) (*TaskStatusDTO, error) {
	path := fmt.Sprintf("/detection/task-status/%s", taskID)
	resp, err := e.transport.Get(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	return decodeOne[TaskStatusDTO](resp, path)
}
