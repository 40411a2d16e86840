// Package timecard is the HTTP client for the timecard backend API, used
// by the recognition pipeline and the registration CLI.
package timecard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to the timecard backend REST API.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

// NewClient creates a client for the backend at rawURL (the base API URL,
// e.g. http://localhost:8080/api).
func NewClient(rawURL string, timeout time.Duration) (*Client, error) {
	parsed, err := url.Parse(strings.TrimRight(rawURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid backend URL %q: %w", rawURL, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("backend URL %q must be absolute", rawURL)
	}
	return &Client{
		baseURL:    parsed,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// resolveURL builds a full URL from the base API URL and path segments.
// A query string on the last segment is split off so JoinPath only sees
// the path portion.
func (c *Client) resolveURL(pathSegments ...string) string {
	if len(pathSegments) == 0 {
		return c.baseURL.String()
	}
	last := pathSegments[len(pathSegments)-1]
	if pathPart, query, ok := strings.Cut(last, "?"); ok {
		pathSegments[len(pathSegments)-1] = pathPart
		result := c.baseURL.JoinPath(pathSegments...)
		result.RawQuery = query
		return result.String()
	}
	return c.baseURL.JoinPath(pathSegments...).String()
}

// readErrorBody reads the response body for error messages.
// Returns a placeholder if reading fails (we're already in an error path).
func readErrorBody(r io.Reader) string {
	body, err := io.ReadAll(r)
	if err != nil {
		return "(could not read error body)"
	}
	return string(body)
}

// doGetJSON performs a GET request and unmarshals the JSON response.
func doGetJSON[T any](ctx context.Context, c *Client, endpoint string) (*T, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.resolveURL(endpoint), nil)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, readErrorBody(resp.Body))
	}

	var result T
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("could not unmarshal response: %w", err)
	}
	return &result, nil
}

// doPostJSON performs a POST request with a JSON body and unmarshals the
// JSON response. Both 200 and 201 are accepted.
func doPostJSON[T any](ctx context.Context, c *Client, endpoint string, requestBody any) (*T, error) {
	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("could not marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.resolveURL(endpoint), bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, readErrorBody(resp.Body))
	}

	var result T
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("could not unmarshal response: %w", err)
	}
	return &result, nil
}

// reportRetries and reportRetryDelay bound the delivery attempts for one
// attendance event; beyond this the event is dropped.
const (
	reportRetries    = 3
	reportRetryDelay = time.Second
)

// ReportTimecard posts one attendance event, retrying transient failures a
// bounded number of times. On success it returns the stored record with
// the entry type the backend assigned.
func (c *Client) ReportTimecard(ctx context.Context, event Event) (*Record, error) {
	var lastErr error
	for attempt := 0; attempt < reportRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(reportRetryDelay):
			}
		}

		resp, err := doPostJSON[ReportResponse](ctx, c, "timecard", event)
		if err != nil {
			lastErr = err
			continue
		}
		if resp.Data == nil {
			return nil, fmt.Errorf("backend accepted timecard but returned no record")
		}
		return resp.Data, nil
	}
	return nil, fmt.Errorf("reporting timecard after %d attempts: %w", reportRetries, lastErr)
}

// Health checks the backend health endpoint.
func (c *Client) Health(ctx context.Context) error {
	_, err := doGetJSON[map[string]any](ctx, c, "health")
	return err
}

// Employees fetches the roster.
func (c *Client) Employees(ctx context.Context) ([]Employee, error) {
	resp, err := doGetJSON[struct {
		Employees []Employee `json:"employees"`
	}](ctx, c, "employees")
	if err != nil {
		return nil, err
	}
	return resp.Employees, nil
}

// CreateEmployee registers an employee on the backend. Creating an id that
// already exists is not an error; the backend keeps the original record.
func (c *Client) CreateEmployee(ctx context.Context, id, name string) error {
	_, err := doPostJSON[map[string]any](ctx, c, "employees", map[string]string{
		"id":   id,
		"name": name,
	})
	return err
}

// AddEmployeeFace appends one face embedding for an employee so a re-imaged
// kiosk can resync its local encoding store from the backend.
func (c *Client) AddEmployeeFace(ctx context.Context, id string, vector []float32) error {
	_, err := doPostJSON[map[string]any](ctx, c, "employee/"+id+"/faces", map[string]any{
		"embedding": vector,
	})
	return err
}

// FaceCount reports how many face samples the backend holds for an employee.
func (c *Client) FaceCount(ctx context.Context, id string) (*FaceCountResponse, error) {
	return doGetJSON[FaceCountResponse](ctx, c, "employee/"+id+"/faces/count")
}

// EmployeeStatus reports whether an employee is currently clocked in.
func (c *Client) EmployeeStatus(ctx context.Context, id string) (*StatusResponse, error) {
	return doGetJSON[StatusResponse](ctx, c, "employee/"+id+"/status")
}
