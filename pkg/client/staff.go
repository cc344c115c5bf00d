package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type StaffMember struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

// DisplayName is the human-readable name shown on enriched appointments.
func (s *StaffMember) DisplayName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// StaffClient talks to the staff registry service holding veterinarian records.
type StaffClient struct {
	httpClient *HttpClient
}

func NewStaffClient(baseURL string, timeout time.Duration) *StaffClient {
	return &StaffClient{
		httpClient: NewHttpClient(baseURL, timeout),
	}
}

func (c *StaffClient) GetByID(ctx context.Context, id int64, bearer string) (*StaffMember, error) {
	headers := map[string]string{}
	if bearer != "" {
		headers["Authorization"] = bearer
	}

	resp, err := c.httpClient.GET(ctx, fmt.Sprintf("/users/%d", id), headers)
	if err != nil {
		return nil, fmt.Errorf("staff registry request failed: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrRecordNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, &RemoteStatusError{Service: "staff registry", StatusCode: resp.StatusCode}
	}

	var wrapper struct {
		User *StaffMember `json:"user"`
	}
	if err := resp.DecodeJSON(&wrapper); err != nil {
		return nil, fmt.Errorf("could not decode staff response: %w", err)
	}
	if wrapper.User == nil {
		return nil, ErrRecordNotFound
	}

	return wrapper.User, nil
}
