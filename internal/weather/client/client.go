// Package client issues the three outbound HTTP calls the app depends
// on: IP-based location detection, city geocoding, and the forecast
// fetch. Each endpoint sits behind its own circuit breaker so a dark
// upstream fails fast instead of burning the full timeout every poll.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/dualtemp/dualtemp/internal/config"
	"github.com/dualtemp/dualtemp/internal/weather"
)

// Client talks to the upstream weather endpoints.
type Client struct {
	http    *http.Client
	timeout time.Duration

	ipAPIBase    string
	geocodeBase  string
	forecastBase string

	ipCircuit       *gobreaker.CircuitBreaker
	geocodeCircuit  *gobreaker.CircuitBreaker
	forecastCircuit *gobreaker.CircuitBreaker
}

func newCircuit(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
}

// New creates a Client using the endpoint base URLs and timeout from
// cfg.
func New(httpClient *http.Client, cfg *config.AppConfig) *Client {
	return &Client{
		http:            httpClient,
		timeout:         cfg.HTTPTimeout,
		ipAPIBase:       cfg.IPAPIBaseURL,
		geocodeBase:     cfg.GeocodeBaseURL,
		forecastBase:    cfg.ForecastBaseURL,
		ipCircuit:       newCircuit("ip-api"),
		geocodeCircuit:  newCircuit("geocoding"),
		forecastCircuit: newCircuit("forecast"),
	}
}

// DetectLocation resolves the machine's location from its public IP.
func (c *Client) DetectLocation(ctx context.Context) (weather.Location, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	values := url.Values{}
	values.Set("fields", "city,lat,lon")

	resp, err := c.do(ctx, c.ipCircuit, "ip-api", fmt.Sprintf("%s?%s", c.ipAPIBase, values.Encode()))
	if err != nil {
		return weather.Location{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		City string  `json:"city"`
		Lat  float64 `json:"lat"`
		Lon  float64 `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Location{}, err
	}

	return weather.Location{City: payload.City, Lat: payload.Lat, Lon: payload.Lon}, nil
}

// GeocodeCity resolves a city name to coordinates via the Open-Meteo
// geocoding endpoint, taking the single best match. Zero results fail
// with weather.ErrCityNotFound; a partial location is never returned.
func (c *Client) GeocodeCity(ctx context.Context, name string) (weather.Location, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	values := url.Values{}
	values.Set("name", name)
	values.Set("count", "1")

	resp, err := c.do(ctx, c.geocodeCircuit, "geocoding", fmt.Sprintf("%s?%s", c.geocodeBase, values.Encode()))
	if err != nil {
		return weather.Location{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Results []struct {
			Name      string  `json:"name"`
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Location{}, err
	}

	if len(payload.Results) == 0 {
		return weather.Location{}, fmt.Errorf("%w: %s", weather.ErrCityNotFound, name)
	}

	best := payload.Results[0]
	return weather.Location{City: best.Name, Lat: best.Latitude, Lon: best.Longitude}, nil
}

// FetchWeather fetches current conditions plus a two-day daily forecast
// (today and tomorrow) for the given coordinates, with the timezone
// resolved server-side. Missing payload fields come back as nil
// pointers rather than errors.
func (c *Client) FetchWeather(ctx context.Context, lat, lon float64) (weather.Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	values := url.Values{}
	values.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	values.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	values.Set("current", "temperature_2m,apparent_temperature,weather_code")
	values.Set("daily", "temperature_2m_max,temperature_2m_min")
	values.Set("timezone", "auto")
	values.Set("forecast_days", "2")

	resp, err := c.do(ctx, c.forecastCircuit, "forecast", fmt.Sprintf("%s?%s", c.forecastBase, values.Encode()))
	if err != nil {
		return weather.Snapshot{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Current struct {
			Temperature *float64 `json:"temperature_2m"`
			Apparent    *float64 `json:"apparent_temperature"`
			WeatherCode *int     `json:"weather_code"`
		} `json:"current"`
		Daily struct {
			TempMax []*float64 `json:"temperature_2m_max"`
			TempMin []*float64 `json:"temperature_2m_min"`
		} `json:"daily"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Snapshot{}, err
	}

	condition := "Unknown"
	if payload.Current.WeatherCode != nil {
		condition = weather.ConditionLabel(*payload.Current.WeatherCode)
	}

	return weather.Snapshot{
		TempC:         payload.Current.Temperature,
		FeelsLikeC:    payload.Current.Apparent,
		Condition:     condition,
		HighC:         dailyAt(payload.Daily.TempMax, 0),
		LowC:          dailyAt(payload.Daily.TempMin, 0),
		TomorrowHighC: dailyAt(payload.Daily.TempMax, 1),
		TomorrowLowC:  dailyAt(payload.Daily.TempMin, 1),
	}, nil
}

// do executes a GET through the endpoint's circuit breaker. The caller
// owns the response body on success.
func (c *Client) do(ctx context.Context, cb *gobreaker.CircuitBreaker, endpoint, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	result, err := cb.Execute(func() (interface{}, error) {
		resp, execErr := c.http.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			resp.Body.Close()
			return nil, &weather.StatusError{Endpoint: endpoint, Code: resp.StatusCode}
		}
		return resp, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%s circuit open: %w", endpoint, err)
		}
		return nil, err
	}

	resp, ok := result.(*http.Response)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}
	return resp, nil
}

func dailyAt(vals []*float64, i int) *float64 {
	if i < len(vals) {
		return vals[i]
	}
	return nil
}
