package v1

import (
	"context"
	"fmt"

	"axiapac.com/timeclock/timeclock/v1/common"
)

type ProjectDTO struct {
	ID           string               `json:"id" validate:"required"`
	Name         string               `json:"name" validate:"required"`
	Description  *string              `json:"description,omitempty"`
	LocationLat  *float64             `json:"location_lat,omitempty"`
	LocationLong *float64             `json:"location_long,omitempty"`
	Status       common.ProjectStatus `json:"status" validate:"omitempty,oneof=start in_progress finished"`
	StartDate    *common.Timestamp    `json:"start_date,omitempty"`
	EndDate      *common.Timestamp    `json:"end_date,omitempty"`
	CreatedAt    common.Timestamp     `json:"created_at"`
	TotalHours   *float64             `json:"total_hours,omitempty"`
	common.Address
}

// ProjectInput carries the fields sent on create and update. Nil fields are left out.
type ProjectInput struct {
	Name         *string               `json:"name,omitempty"`
	Description  *string               `json:"description,omitempty"`
	State        *string               `json:"state,omitempty"`
	City         *string               `json:"city,omitempty"`
	Street       *string               `json:"street,omitempty"`
	StreetNumber *string               `json:"street_number,omitempty"`
	PostalCode   *string               `json:"postal_code,omitempty"`
	LocationLat  *float64              `json:"location_lat,omitempty"`
	LocationLong *float64              `json:"location_long,omitempty"`
	Status       *common.ProjectStatus `json:"status,omitempty"`
	StartDate    *string               `json:"start_date,omitempty"`
	EndDate      *string               `json:"end_date,omitempty"`
}

type ProjectEndpoint struct {
	transport *Transport
}

func (e *ProjectEndpoint) List(ctx context.Context) ([]ProjectDTO, error) {
	const path = "/projects"
	resp, err := e.transport.Get(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[ProjectDTO](resp, path)
}

func (e *ProjectEndpoint) Get(ctx context.Context, id string) (*ProjectDTO, error) {
	path := fmt.Sprintf("/projects/%s", id)
	resp, err := e.transport.Get(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	return decodeOne[ProjectDTO](resp, path)
}

func (e *ProjectEndpoint) Create(ctx context.Context, input ProjectInput) (*ProjectDTO, error) {
	const path = "/projects"
	resp, err := e.transport.Post(ctx, path, input, nil)
	if err != nil {
		return nil, err
	}
	return decodeOne[ProjectDTO](resp, path)
}

func (e *ProjectEndpoint) Update(ctx context.Context, id string, input ProjectInput) (*ProjectDTO, error) {
	path := fmt.Sprintf("/projects/%s", id)
	resp, err := e.transport.Put(ctx, path, input)
	if err != nil {
		return nil, err
	}
	return decodeOne[ProjectDTO](resp, path)
}

func (e *ProjectEndpoint) Delete(ctx context.Context, id string) error {
	_, err := e.transport.Delete(ctx, fmt.Sprintf("/projects/%s", id))
	return err
}
