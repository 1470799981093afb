package v1

import (
	"context"
	"fmt"
)

// SummaryDTO holds worked hours rounded to one decimal.
type SummaryDTO struct {
	Total float64 `json:"total" validate:"gte=0"`
	Month float64 `json:"month" validate:"gte=0"`
	Week  float64 `json:"week" validate:"gte=0"`
}

type SummaryEndpoint struct {
	transport *Transport
}

func (e *SummaryEndpoint) All(ctx context.Context) (*SummaryDTO, error) {
	const path = "/summary/all"
	resp, err := e.transport.Get(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	return decodeOne[SummaryDTO](resp, path)
}

func (e *SummaryEndpoint) ForUser(ctx context.Context, userID string) (*SummaryDTO, error) {
	path := fmt.Sprintf("/summary/%s", userID)
	resp, err := e.transport.Get(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	return decodeOne[SummaryDTO](resp, path)
}
