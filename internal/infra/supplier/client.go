package supplier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"flynext/internal/pkg/config"
	"flynext/internal/pkg/errs"
	"flynext/internal/usecase/queries"
)

const dateLayout = "2006-01-02"

// Client talks to the external hotel and flight supplier API. Responses
// are relayed as candidates; the core snapshots whatever it accepts.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(cfg config.SupplierConfig) queries.SupplierClient {
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *Client) SearchRooms(ctx context.Context, city string, checkIn, checkOut time.Time) ([]queries.RoomCandidate, error) {
	params := url.Values{}
	params.Set("city", city)
	params.Set("check_in", checkIn.Format(dateLayout))
	params.Set("check_out", checkOut.Format(dateLayout))

	var rooms []queries.RoomCandidate
	if err := c.getJSON(ctx, "/api/rooms", params, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

func (c *Client) SearchFlights(ctx context.Context, origin, destination string, date time.Time) ([]queries.FlightCandidate, error) {
	params := url.Values{}
	if origin != "" {
		params.Set("origin", origin)
	}
	params.Set("destination", destination)
	params.Set("date", date.Format(dateLayout))

	var flights []queries.FlightCandidate
	if err := c.getJSON(ctx, "/api/flights", params, &flights); err != nil {
		return nil, err
	}
	return flights, nil
}

func (c *Client) VerifyFlight(ctx context.Context, flightID string) (bool, error) {
	var status struct {
		Scheduled bool `json:"scheduled"`
	}
	err := c.getJSON(ctx, "/api/flights/"+url.PathEscape(flightID), nil, &status)
	if err != nil {
		return false, err
	}
	return status.Scheduled, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return errs.Wrap(err, "build supplier request")
	}
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errs.Wrap(err, "supplier request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errs.New(fmt.Sprintf("supplier returned status %d for %s", resp.StatusCode, path))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errs.Wrap(err, "decode supplier response")
	}
	return nil
}
