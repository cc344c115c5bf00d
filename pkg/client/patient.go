package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrRecordNotFound is returned when a registry answers 404 for the requested id.
var ErrRecordNotFound = errors.New("record not found")

// RemoteStatusError is returned for any registry response that is neither
// success nor a clean 404, so callers can tell "does not exist" from
// "registry is broken".
type RemoteStatusError struct {
	Service    string
	StatusCode int
}

func (e *RemoteStatusError) Error() string {
	return fmt.Sprintf("%s returned unexpected status %d", e.Service, e.StatusCode)
}

type Patient struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// PatientClient talks to the patient registry service.
type PatientClient struct {
	httpClient *HttpClient
}

func NewPatientClient(baseURL string, timeout time.Duration) *PatientClient {
	return &PatientClient{
		httpClient: NewHttpClient(baseURL, timeout),
	}
}

func (c *PatientClient) GetByID(ctx context.Context, id int64, bearer string) (*Patient, error) {
	headers := map[string]string{}
	if bearer != "" {
		headers["Authorization"] = bearer
	}

	resp, err := c.httpClient.GET(ctx, fmt.Sprintf("/patients/%d", id), headers)
	if err != nil {
		return nil, fmt.Errorf("patient registry request failed: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrRecordNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, &RemoteStatusError{Service: "patient registry", StatusCode: resp.StatusCode}
	}

	var wrapper struct {
		Patient *Patient `json:"patient"`
	}
	if err := resp.DecodeJSON(&wrapper); err != nil {
		return nil, fmt.Errorf("could not decode patient response: %w", err)
	}
	if wrapper.Patient == nil {
		return nil, ErrRecordNotFound
	}

	return wrapper.Patient, nil
}
