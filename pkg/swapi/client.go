// Package swapi is an HTTP implementation of people.Service against a Star
// Wars API-style people backend: GET /people lists the collection and
// PUT /people/{id} saves a record.
package swapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/MASAKi-cell/personstore/pkg/people"
)

const tracerName = "personstore/swapi"

// Client talks to the people backend. The zero value is not usable; create
// one with NewClient.
type Client struct {
	baseURL string
	http    *http.Client
	tracer  trace.Tracer
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets the underlying HTTP client.
// Default: a client with a 10 second timeout.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// List fetches the full people collection.
func (c *Client) List(ctx context.Context) ([]people.Person, error) {
	ctx, span := c.tracer.Start(ctx, "swapi.list",
		trace.WithSpanKind(trace.SpanKindClient),
	)
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/people", nil)
	if err != nil {
		return nil, fmt.Errorf("build list request: %w", err)
	}

	var list []people.Person
	if err := c.do(req, span, &list); err != nil {
		return nil, fmt.Errorf("list people: %w", err)
	}
	span.SetAttributes(attribute.Int("people.count", len(list)))
	return list, nil
}

// Save persists an edited record and returns the server's canonical
// version. The record is addressed by editID when present, otherwise by
// its own id.
func (c *Client) Save(ctx context.Context, p people.Person, editID *int) (people.Person, error) {
	id := p.ID
	if editID != nil {
		id = *editID
	}

	ctx, span := c.tracer.Start(ctx, "swapi.save",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.Int("person.id", id)),
	)
	defer span.End()

	body, err := json.Marshal(p)
	if err != nil {
		return people.Person{}, fmt.Errorf("encode person %d: %w", id, err)
	}

	url := fmt.Sprintf("%s/people/%d", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return people.Person{}, fmt.Errorf("build save request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var saved people.Person
	if err := c.do(req, span, &saved); err != nil {
		return people.Person{}, fmt.Errorf("save person %d: %w", id, err)
	}
	return saved, nil
}

// do executes the request, expects a 2xx JSON response, and decodes it into
// out. Errors are recorded on the span.
func (c *Client) do(req *http.Request, span trace.Span, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("unexpected status %s", resp.Status)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		// Drain so the connection can be reused.
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("decode response: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}
