package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
)

const defaultWeatherEndpoint = "https://api.open-meteo.com/v1/forecast"

type WeatherTool struct {
	endpoint   string
	httpClient *http.Client
}

func NewWeatherTool(endpoint string, httpClient *http.Client) *WeatherTool {
	if endpoint == "" {
		endpoint = defaultWeatherEndpoint
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &WeatherTool{
		endpoint:   endpoint,
		httpClient: httpClient,
	}
}

func (t *WeatherTool) Name() string {
	return "getWeather"
}

func (t *WeatherTool) Definition() openai.Tool {
	return openai.Tool{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        t.Name(),
			Description: "Get the current weather at a location.",
			Parameters: jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"latitude": {
						Type:        jsonschema.Number,
						Description: "Latitude of the location.",
					},
					"longitude": {
						Type:        jsonschema.Number,
						Description: "Longitude of the location.",
					},
				},
				Required: []string{"latitude", "longitude"},
			},
		},
	}
}

type weatherArgs struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (t *WeatherTool) Call(ctx context.Context, arguments string) (string, error) {
	var args weatherArgs
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return "", fmt.Errorf("invalid getWeather arguments, %w", err)
	}

	url := fmt.Sprintf("%s?latitude=%f&longitude=%f&current=temperature_2m&hourly=temperature_2m&daily=sunrise,sunset&timezone=auto", t.endpoint, args.Latitude, args.Longitude)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("weather request failed, %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("weather service responded with status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
