// Package api is a typed client for the Krishi-Chetan backend REST
// contract. Every call takes its language, phone and token explicitly;
// the client holds no per-user state besides the bearer token bound by
// WithToken.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/krishichetan/kchetan/internal/models"
)

const maxErrorBody = 512

// Client issues requests against one backend base URL.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// New returns a Client for baseURL. httpClient may be nil.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// WithToken returns a copy of c that authenticates as token.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// BaseURL returns the configured backend URL.
func (c *Client) BaseURL() string { return c.baseURL }

type request struct {
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
}

func jsonBody(v any) (io.Reader, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return bytes.NewReader(b), nil
}

// do sends r and decodes a 2xx JSON answer into out (skipped when out is nil).
func (c *Client) do(ctx context.Context, r request, out any) error {
	u := c.baseURL + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, r.method, u, r.body)
	if err != nil {
		return fmt.Errorf("build request %s %s: %w", r.method, r.path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", r.method, r.path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, resp.Body)
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ParseError{Endpoint: r.path, Err: err}
	}
	return nil
}

func langQuery(lang models.Language) url.Values {
	return url.Values{"lang": {string(lang)}}
}

// Login exchanges phone and password for a bearer token.
func (c *Client) Login(ctx context.Context, phone, password string) (*models.LoginResult, error) {
	form := url.Values{"username": {phone}, "password": {password}}
	var out models.LoginResult
	err := c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/api/auth/token",
		body:        strings.NewReader(form.Encode()),
		contentType: "application/x-www-form-urlencoded",
	}, &out)
	if err != nil {
		return nil, err
	}
	if out.AccessToken == "" {
		return nil, &ParseError{Endpoint: "/api/auth/token", Err: fmt.Errorf("missing access_token")}
	}
	return &out, nil
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, reg models.Registration) error {
	body, err := jsonBody(reg)
	if err != nil {
		return err
	}
	return c.do(ctx, request{method: http.MethodPost, path: "/api/auth/register", body: body, contentType: "application/json"}, nil)
}

// Profile fetches the farmer profile for phone. A missing profile is
// ErrNotFound.
func (c *Client) Profile(ctx context.Context, phone string) (*models.FarmerProfile, error) {
	var out models.FarmerProfile
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/farmer/profile/" + url.PathEscape(phone)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SaveProfile stores a farmer profile.
func (c *Client) SaveProfile(ctx context.Context, p models.FarmerProfile) error {
	body, err := jsonBody(p)
	if err != nil {
		return err
	}
	return c.do(ctx, request{method: http.MethodPost, path: "/api/farmer/profile", body: body, contentType: "application/json"}, nil)
}

// SowingRecommendation returns the sowing window for crop at location.
func (c *Client) SowingRecommendation(ctx context.Context, crop, location string, lang models.Language) (*models.SowingRecommendation, error) {
	q := langQuery(lang)
	q.Set("crop", crop)
	q.Set("location", location)
	var out models.SowingRecommendation
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/farmer/sowing-recommendation", query: q}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FertilizerDosage returns the dosage for crop on landSize acres at stage.
func (c *Client) FertilizerDosage(ctx context.Context, crop string, landSize float64, stage string, lang models.Language) (*models.FertilizerDosage, error) {
	q := langQuery(lang)
	q.Set("crop", crop)
	q.Set("land_size", strconv.FormatFloat(landSize, 'f', -1, 64))
	q.Set("stage", stage)
	var out models.FertilizerDosage
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/farmer/fertilizer-dosage", query: q}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AdvisoryHistory returns the advisories sent to phone, newest first.
func (c *Client) AdvisoryHistory(ctx context.Context, phone string) ([]models.Advisory, error) {
	var out []models.Advisory
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/farmer/advisory-history/" + url.PathEscape(phone)}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateAdvisoryStatus records whether the farmer followed an advisory.
func (c *Client) UpdateAdvisoryStatus(ctx context.Context, phone, id string, status models.AdvisoryStatus) error {
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   "/api/farmer/advisory/" + url.PathEscape(phone) + "/" + url.PathEscape(id) + "/status",
		query:  url.Values{"status": {string(status)}},
	}, nil)
}

// PriorityList returns the officer's risk ranking and adoption metrics.
func (c *Client) PriorityList(ctx context.Context) (*models.PriorityList, error) {
	var out models.PriorityList
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/officer/priority-list"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CropPatterns returns the crop distribution.
func (c *Client) CropPatterns(ctx context.Context) (models.CropPatterns, error) {
	var out models.CropPatterns
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/officer/crop-patterns"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Farmers returns the farmer locations for the officer map.
func (c *Client) Farmers(ctx context.Context) ([]models.FarmerLocation, error) {
	var out []models.FarmerLocation
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/officer/farmers"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PendingRecommendations returns the AI suggestions awaiting review.
func (c *Client) PendingRecommendations(ctx context.Context) ([]models.PendingRecommendation, error) {
	var out []models.PendingRecommendation
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/officer/pending-recs"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ValidateRecommendation approves a pending suggestion with refined text.
func (c *Client) ValidateRecommendation(ctx context.Context, id, text string) error {
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   "/api/officer/validate-rec/" + url.PathEscape(id),
		query:  url.Values{"new_text": {text}},
	}, nil)
}

// SendAdvisory broadcasts an advisory to several farmers.
func (c *Client) SendAdvisory(ctx context.Context, b models.Broadcast) (*models.BroadcastResult, error) {
	body, err := jsonBody(b)
	if err != nil {
		return nil, err
	}
	var out models.BroadcastResult
	if err := c.do(ctx, request{method: http.MethodPost, path: "/api/officer/send-advisory", body: body, contentType: "application/json"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MarketPrices returns mandi prices localized to lang.
func (c *Client) MarketPrices(ctx context.Context, lang models.Language) ([]models.MarketPrice, error) {
	var out []models.MarketPrice
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/market/prices", query: langQuery(lang)}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// News returns agri-news headlines localized to lang.
func (c *Client) News(ctx context.Context, lang models.Language) ([]models.NewsItem, error) {
	var out []models.NewsItem
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/market/news", query: langQuery(lang)}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CheckSubsidy returns the schemes the query qualifies for.
func (c *Client) CheckSubsidy(ctx context.Context, q models.SubsidyQuery, lang models.Language) ([]models.SubsidyScheme, error) {
	body, err := jsonBody(q)
	if err != nil {
		return nil, err
	}
	var out []models.SubsidyScheme
	if err := c.do(ctx, request{method: http.MethodPost, path: "/api/subsidy/check", query: langQuery(lang), body: body, contentType: "application/json"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Forecast returns the weather forecast for location.
func (c *Client) Forecast(ctx context.Context, location string, days int, lang models.Language) (*models.WeatherForecast, error) {
	q := langQuery(lang)
	q.Set("location", location)
	q.Set("days", strconv.Itoa(days))
	var out models.WeatherForecast
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/weather/forecast", query: q}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// IrrigationSchedule computes watering advice from current weather.
func (c *Client) IrrigationSchedule(ctx context.Context, crop, soilType string, lang models.Language, weather models.CurrentWeather) (*models.IrrigationSchedule, error) {
	q := langQuery(lang)
	q.Set("crop", crop)
	q.Set("soil_type", soilType)
	body, err := jsonBody(map[string]any{
		"temp":      float64(weather.Temp),
		"humidity":  float64(weather.Humidity),
		"condition": weather.Condition,
	})
	if err != nil {
		return nil, err
	}
	var out models.IrrigationSchedule
	if err := c.do(ctx, request{method: http.MethodPost, path: "/api/weather/irrigation-schedule", query: q, body: body, contentType: "application/json"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Image is a leaf photo to diagnose.
type Image struct {
	Name string
	Data []byte
}

// DiagnoseLeaf classifies a leaf photo. An empty image sends an empty body.
func (c *Client) DiagnoseLeaf(ctx context.Context, img Image, lang models.Language) (*models.Diagnosis, error) {
	r := request{method: http.MethodPost, path: "/api/diagnose/leaf", query: langQuery(lang)}
	if len(img.Data) > 0 {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		name := img.Name
		if name == "" {
			name = "leaf.jpg"
		}
		fw, err := mw.CreateFormFile("file", name)
		if err != nil {
			return nil, fmt.Errorf("build upload: %w", err)
		}
		if _, err := fw.Write(img.Data); err != nil {
			return nil, fmt.Errorf("build upload: %w", err)
		}
		if err := mw.Close(); err != nil {
			return nil, fmt.Errorf("build upload: %w", err)
		}
		r.body = &buf
		r.contentType = mw.FormDataContentType()
	}
	var out models.Diagnosis
	if err := c.do(ctx, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Ask sends a chat message to the assistant.
func (c *Client) Ask(ctx context.Context, message string, lang models.Language) (*models.ChatReply, error) {
	body, err := jsonBody(models.ChatRequest{Message: message, Lang: lang, Language: lang})
	if err != nil {
		return nil, err
	}
	var out models.ChatReply
	if err := c.do(ctx, request{method: http.MethodPost, path: "/api/chat/ask", body: body, contentType: "application/json"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
