// Package partnerclient talks to the flight and hotel booking APIs over HTTP.
package partnerclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/taxi-travel/service-travel/internal/domain"
	"github.com/taxi-travel/service-travel/internal/domain/partner"
	"go.uber.org/zap"
)

const (
	flightResource = "/flightBookings"
	hotelResource  = "/hotelBookings"

	maxErrorBody = 4 << 10
)

// Client is a partner.Service backed by a REST resource such as
// {baseURL}/flightBookings.
type Client[T any] struct {
	name       string
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger
}

var (
	_ partner.FlightService = (*Client[partner.FlightBooking])(nil)
	_ partner.HotelService  = (*Client[partner.HotelBooking])(nil)
)

// NewFlightClient creates a client for the flight partner.
func NewFlightClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client[partner.FlightBooking] {
	return newClient[partner.FlightBooking]("FlightBooking", baseURL+flightResource, timeout, logger)
}

// NewHotelClient creates a client for the hotel partner.
func NewHotelClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client[partner.HotelBooking] {
	return newClient[partner.HotelBooking]("HotelBooking", baseURL+hotelResource, timeout, logger)
}

func newClient[T any](name, endpoint string, timeout time.Duration, logger *zap.Logger) *Client[T] {
	return &Client[T]{
		name:       name,
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With(zap.String("partner", name)),
	}
}

// Create posts a new booking and returns it with the partner-assigned id.
func (c *Client[T]) Create(ctx context.Context, booking T) (T, error) {
	var zero T
	body, err := json.Marshal(booking)
	if err != nil {
		return zero, fmt.Errorf("failed to encode %s: %w", c.name, err)
	}
	return c.do(ctx, http.MethodPost, c.endpoint, "", body)
}

// FindByID fetches a booking.
func (c *Client[T]) FindByID(ctx context.Context, id int64) (T, error) {
	return c.do(ctx, http.MethodGet, c.endpoint+"/"+strconv.FormatInt(id, 10), strconv.FormatInt(id, 10), nil)
}

// Delete removes a booking. An unknown id yields NotFound.
func (c *Client[T]) Delete(ctx context.Context, id int64) (T, error) {
	return c.do(ctx, http.MethodDelete, c.endpoint+"/"+strconv.FormatInt(id, 10), strconv.FormatInt(id, 10), nil)
}

func (c *Client[T]) do(ctx context.Context, method, url, id string, body []byte) (T, error) {
	var zero T

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return zero, fmt.Errorf("failed to build %s request: %w", c.name, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("partner call failed",
			zap.String("method", method),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return zero, domain.NewUnavailableError(fmt.Sprintf("%s service unreachable", c.name), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if resp.StatusCode == http.StatusNoContent {
			return zero, nil
		}
		var out T
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			if errors.Is(err, io.EOF) {
				return zero, nil
			}
			return zero, domain.NewUnavailableError(fmt.Sprintf("%s service returned an unreadable body", c.name), err)
		}
		return out, nil
	}

	detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return zero, c.classify(resp.StatusCode, id, detail)
}

func (c *Client[T]) classify(status int, id string, detail []byte) error {
	msg := fmt.Sprintf("%s service responded %d", c.name, status)
	if len(detail) > 0 {
		msg += ": " + string(bytes.TrimSpace(detail))
	}

	switch {
	case status == http.StatusNotFound:
		if id == "" {
			id = "?"
		}
		return domain.NewNotFoundError(c.name, id)
	case status == http.StatusConflict:
		return domain.NewConflictError(msg)
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return domain.NewValidationError(msg)
	default:
		return domain.NewUnavailableError(msg, nil)
	}
}
