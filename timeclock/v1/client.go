package v1

import "github.com/hashicorp/go-hclog"

type Client struct {
	Transport      *Transport
	Auth           *AuthEndpoint
	Users          *UserEndpoint
	AdminUsers     *AdminUserEndpoint
	Projects       *ProjectEndpoint
	Clockins       *ClockinEndpoint
	History        *HistoryEndpoint
	Locations      *LocationEndpoint
	Summary        *SummaryEndpoint
	ProjectHistory *ProjectHistoryEndpoint
	Detection      *DetectionEndpoint
}

// NewClient initializes the API client
func NewClient(baseURL string, tokens TokenSource, logger hclog.Logger) *Client {
	t := NewTransport(baseURL, tokens)
	if logger != nil {
		t.Logger = logger.Named("api")
	}
	return &Client{
		Transport:      t,
		Auth:           &AuthEndpoint{transport: t},
		Users:          &UserEndpoint{transport: t},
		AdminUsers:     &AdminUserEndpoint{transport: t},
		Projects:       &ProjectEndpoint{transport: t},
		Clockins:       &ClockinEndpoint{transport: t},
		History:        &HistoryEndpoint{transport: t},
		Locations:      &LocationEndpoint{transport: t},
		Summary:        &SummaryEndpoint{transport: t},
		ProjectHistory: &ProjectHistoryEndpoint{transport: t},
		Detection:      &DetectionEndpoint{transport: t},
	}
}
