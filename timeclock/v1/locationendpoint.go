package v1

import (
	"context"
	"fmt"
)

type LocationEndpoint struct {
	transport *Transport
}

func (e *LocationEndpoint) Post(ctx context.Context, input LocationInput) (*LocationDTO, error) {
	const path = "/locations/"
	resp, err := e.transport.Post(ctx, path, input, nil)
	if err != nil {
		return nil, err
	}
	return decodeOne[LocationDTO](resp, path)
}

func (e *LocationEndpoint) All(ctx context.Context) ([]LocationDTO, error) {
	const path = "/locations/all"
	resp, err := e.transport.Get(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[LocationDTO](resp, path)
}

func (e *LocationEndpoint) ByClockin(ctx context.Context, clockinID string) ([]LocationDTO, error) {
	path := fmt.Sprintf("/locations/clockin/%s", clockinID)
	resp, err := e.transport.Get(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[LocationDTO](resp, path)
}
