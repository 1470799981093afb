package v1

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"axiapac.com/timeclock/timeclock/v1/common"
)

type ClockinDTO struct {
	ID           string            `json:"id" validate:"required"`
	UserID       string            `json:"user_id"`
	UserName     string            `json:"user_name"`
	ProjectID    *string           `json:"project_id,omitempty"`
	ProjectName  *string           `json:"project_name,omitempty"`
	StartTime    common.Timestamp  `json:"start_time" validate:"required"`
	EndTime      *common.Timestamp `json:"end_time,omitempty"`
	Status       string            `json:"status"`
	LocationLat  *float64          `json:"location_lat,omitempty"`
	LocationLong *float64          `json:"location_long,omitempty"`
	PostalCode   *string           `json:"postal_code,omitempty"`
	PhotoPath    *string           `json:"photo_path,omitempty"`
	Approved     *bool             `json:"approved,omitempty"`
	CreatedAt    common.Timestamp  `json:"created_at"`
}

// Rejected reports an explicit approved=false from the server.
func (c *ClockinDTO) Rejected() bool {
	return c.Approved != nil && !*c.Approved
}

type MonthlyHoursDTO struct {
	Month int     `json:"month" validate:"min=1,max=12"`
	Hours float64 `json:"hours"`
}

type LocationDTO struct {
	ID        string           `json:"id" validate:"required"`
	UserID    string           `json:"user_id"`
	ClockinID *string          `json:"clockin_id,omitempty"`
	Latitude  float64          `json:"latitude" validate:"min=-90,max=90"`
	Longitude float64          `json:"longitude" validate:"min=-180,max=180"`
	Timestamp common.Timestamp `json:"timestamp"`
	Username  string           `json:"username,omitempty"`
}

type LocationInput struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	ClockinID string  `json:"clockin_id,omitempty"`
}

// ClockinStart is the form submitted when a user clocks in with a photo.
type ClockinStart struct {
	ProjectID string
	Latitude  float64
	Longitude float64
	Address   common.Address
	Photo     []byte
	PhotoName string
}

func (s ClockinStart) form() *Form {
	name := s.PhotoName
	if name == "" {
		name = "clockin.jpg"
	}
	form := &Form{}
	form.Set("project_id", s.ProjectID).
		Set("latitude", strconv.FormatFloat(s.Latitude, 'f', -1, 64)).
		Set("longitude", strconv.FormatFloat(s.Longitude, 'f', -1, 64)).
		Set("state", s.Address.State).
		Set("city", s.Address.City).
		Set("street", s.Address.Street).
		Set("street_number", s.Address.StreetNumber).
		Set("postal_code", s.Address.PostalCode).
		File("file", name, s.Photo)
	return form
}

type endRequest struct {
	ElapsedMs int64 `json:"elapsed_ms"`
}

type modifyRequest struct {
	Hours float64 `json:"hours"`
}

type ClockinEndpoint struct {
	transport *Transport
}

// ListForUser returns the user's clock-ins, newest first. A user without
// clock-ins yields an empty list.
func (e *ClockinEndpoint) ListForUser(ctx context.Context, userID string) ([]ClockinDTO, error) {
	path := fmt.Sprintf("/clockins/user/%s", userID)
	resp, err := e.transport.Get(ctx, path, nil)
	if IsNotFound(err) {
		return []ClockinDTO{}, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeList[ClockinDTO](resp, path)
}

// StartWithPhoto opens a clock-in directly, without safety detection.
func (e *ClockinEndpoint) StartWithPhoto(ctx context.Context, start ClockinStart) (*ClockinDTO, error) {
	const path = "/clockins/photo"
	resp, err := e.transport.SendForm(ctx, http.MethodPost, path, start.form())
	if err != nil {
		return nil, err
	}
	return decodeOne[ClockinDTO](resp, path)
}

func (e *ClockinEndpoint) End(ctx context.Context, id string, elapsedMs int64) (*ClockinDTO, error) {
	path := fmt.Sprintf("/clockins/end/%s", id)
	resp, err := e.transport.Put(ctx, path, endRequest{ElapsedMs: elapsedMs})
	if err != nil {
		return nil, err
	}
	return decodeOne[ClockinDTO](resp, path)
}

// EndSession closes a clock-in and discards the returned record.
func (e *ClockinEndpoint) EndSession(ctx context.Context, id string, elapsedMs int64) error {
	_, err := e.End(ctx, id, elapsedMs)
	return err
}

// Modify sets the worked hours of a clock-in by hand.
func (e *ClockinEndpoint) Modify(ctx context.Context, id string, hours float64) (*ClockinDTO, error) {
	path := fmt.Sprintf("/clockins/modify/%s", id)
	resp, err := e.transport.Patch(ctx, path, modifyRequest{Hours: hours})
	if err != nil {
		return nil, err
	}
	return decodeOne[ClockinDTO](resp, path)
}

func (e *ClockinEndpoint) Delete(ctx context.Context, id string) error {
	_, err := e.transport.Delete(ctx, fmt.Sprintf("/clockins/%s", id))
	return err
}

func (e *ClockinEndpoint) ChartData(ctx context.Context, userID string) ([]MonthlyHoursDTO, error) {
	path := fmt.Sprintf("/clockins/%s/chart-data", userID)
	resp, err := e.transport.Get(ctx, path, nil)
	if IsNotFound(err) {
		return []MonthlyHoursDTO{}, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeList[MonthlyHoursDTO](resp, path)
}

func (e *ClockinEndpoint) AddLocation(ctx context.Context, clockinID string, lat, lng float64) (*LocationDTO, error) {
	path := fmt.Sprintf("/clockins/%s/locations", clockinID)
	resp, err := e.transport.Post(ctx, path, LocationInput{Latitude: lat, Longitude: lng}, nil)
	if err != nil {
		return nil, err
	}
	return decodeOne[LocationDTO](resp, path)
}

func (e *ClockinEndpoint) Locations(ctx context.Context, clockinID string) ([]LocationDTO, error) {
	path := fmt.Sprintf("/clockins/%s/locations", clockinID)
	resp, err := e.transport.Get(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[LocationDTO](resp, path)
}
