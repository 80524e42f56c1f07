package claims

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	dashboard "github.com/goliatone/go-claims-dashboard/components/dashboard"
)

var (
	// ErrNotFound is returned when the backend has no data for the request.
	ErrNotFound = errors.New("claims: no data found")
	// ErrUnsupportedDocument is returned when Extract receives a non-image file.
	ErrUnsupportedDocument = errors.New("claims: only image documents are supported")
)

// RemoteError reports a non-success HTTP status from the claims backend.
type RemoteError struct {
	Status int
	Body   string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("claims: remote error %d: %s", e.Status, e.Body)
}

// Unwrap maps 404 responses onto ErrNotFound.
func (e *RemoteError) Unwrap() error {
	if e.Status == http.StatusNotFound {
		return ErrNotFound
	}
	return nil
}

// HTTPConfig configures the claims backend client.
type HTTPConfig struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// HTTPClient talks to the claims backend over its REST endpoints.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient builds a client for the claims backend.
func NewHTTPClient(cfg HTTPConfig) (*HTTPClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("claims: base url is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client:  httpClient,
	}, nil
}

// StatusDistribution returns the approved, pending and rejected share of the
// claims repaired in year.
func (c *HTTPClient) StatusDistribution(ctx context.Context, year int) ([]dashboard.StatusSlice, error) {
	if !dashboard.ValidClaimYear(year) {
		return nil, dashboard.ErrInvalidYear
	}
	var slices []dashboard.StatusSlice
	if err := c.doEnvelope(ctx, http.MethodPost, "/claim-status-distribution/", yearRequest{Year: year}, &slices); err != nil {
		return nil, err
	}
	return slices, nil
}

// MonthlyClaims returns monthly claim counts. The current year comes back
// split into closed months and forecast.
func (c *HTTPClient) MonthlyClaims(ctx context.Context, year int) (dashboard.MonthlyClaims, error) {
	if !dashboard.ValidClaimYear(year) {
		return dashboard.MonthlyClaims{}, dashboard.ErrInvalidYear
	}
	var raw monthlyResponse
	if err := c.doEnvelope(ctx, http.MethodPost, "/generate-claim-data/", yearRequest{Year: year}, &raw); err != nil {
		return dashboard.MonthlyClaims{}, err
	}
	return raw.toMonthly(year), nil
}

// LastMonthClaims returns the claims repaired in the last 30 days.
func (c *HTTPClient) LastMonthClaims(ctx context.Context) ([]dashboard.ClaimRecord, error) {
	var rows []claimRow
	if err := c.doEnvelope(ctx, http.MethodGet, "/last-month-claims/", nil, &rows); err != nil {
		return nil, err
	}
	records := make([]dashboard.ClaimRecord, 0, len(rows))
	for _, row := range rows {
		record, err := row.toRecord()
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

// SummaryCard returns the week, month and year summary for a status code.
func (c *HTTPClient) SummaryCard(ctx context.Context, statusCode string) (dashboard.ClaimSummary, error) {
	var summary dashboard.ClaimSummary
	if err := c.doEnvelope(ctx, http.MethodPost, "/ai-data-card/", statusRequest{StatusCode: statusCode}, &summary); err != nil {
		return dashboard.ClaimSummary{}, err
	}
	return summary, nil
}

// Predict returns the predicted warranty status and reason code.
func (c *HTTPClient) Predict(ctx context.Context, claim WarrantyClaim) (Prediction, error) {
	var prediction Prediction
	if err := c.do(ctx, http.MethodPost, "/predict-from-json/", claim, &prediction); err != nil {
		return Prediction{}, err
	}
	return prediction, nil
}

// Extract uploads a scanned claim document and returns the extracted fields.
func (c *HTTPClient) Extract(ctx context.Context, filename string, document io.Reader) (WarrantyClaim, error) {
	mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename)))
	if !strings.HasPrefix(mimeType, "image/") {
		return WarrantyClaim{}, fmt.Errorf("%w: %s", ErrUnsupportedDocument, filename)
	}
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filepath.Base(filename)))
	header.Set("Content-Type", mimeType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return WarrantyClaim{}, fmt.Errorf("claims: build upload: %w", err)
	}
	if _, err := io.Copy(part, document); err != nil {
		return WarrantyClaim{}, fmt.Errorf("claims: read document: %w", err)
	}
	if err := writer.Close(); err != nil {
		return WarrantyClaim{}, fmt.Errorf("claims: build upload: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/extract-warranty-claim", &body)
	if err != nil {
		return WarrantyClaim{}, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	var claim WarrantyClaim
	if err := c.send(req, &claim); err != nil {
		return WarrantyClaim{}, err
	}
	return claim, nil
}

// Ask returns a markdown answer for a question about the claims data.
func (c *HTTPClient) Ask(ctx context.Context, prompt string) (Answer, error) {
	var answer Answer
	if err := c.do(ctx, http.MethodPost, "/ai-chatbot-sql/", promptRequest{Prompt: prompt}, &answer); err != nil {
		return Answer{}, err
	}
	return answer, nil
}

// SmartTable returns rows answering a natural language query.
func (c *HTTPClient) SmartTable(ctx context.Context, prompt string) (Table, error) {
	var table Table
	if err := c.do(ctx, http.MethodPost, "/ai-smart-table/", promptRequest{Prompt: prompt}, &table); err != nil {
		return Table{}, err
	}
	return table, nil
}

func (c *HTTPClient) doEnvelope(ctx context.Context, method, path string, payload any, target any) error {
	var env envelope
	if err := c.do(ctx, method, path, payload, &env); err != nil {
		return err
	}
	if !env.Success {
		return fmt.Errorf("claims: %s reported failure", path)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err := json.Unmarshal(env.Data, target); err != nil {
		return fmt.Errorf("claims: decode %s data: %w", path, err)
	}
	return nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, payload any, target any) error {
	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("claims: encode payload: %w", err)
		}
		body = bytes.NewReader(buf)
	}
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, target)
}

func (c *HTTPClient) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("claims: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	return req, nil
}

func (c *HTTPClient) send(req *http.Request, target any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("claims: http request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(io.LimitReader(resp.Body, 4096))
		return &RemoteError{Status: resp.StatusCode, Body: strings.TrimSpace(buf.String())}
	}
	if target == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("claims: decode response: %w", err)
	}
	return nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

type yearRequest struct {
	Year int `json:"year"`
}

type statusRequest struct {
	StatusCode string `json:"status_code"`
}

type promptRequest struct {
	Prompt string `json:"prompt"`
}

type seriesPayload struct {
	Total    []float64 `json:"total"`
	Accepted []float64 `json:"accepted"`
	Rejected []float64 `json:"rejected"`
}

func (s seriesPayload) toSeries() dashboard.ClaimSeries {
	return dashboard.ClaimSeries{Total: s.Total, Accepted: s.Accepted, Rejected: s.Rejected}
}

// monthlyResponse accepts both the flat past-year shape and the
// historical/forecast split used for the current year.
type monthlyResponse struct {
	seriesPayload
	Historical *seriesPayload `json:"historical"`
	Forecast   *seriesPayload `json:"forecast"`
}

func (r monthlyResponse) toMonthly(year int) dashboard.MonthlyClaims {
	out := dashboard.MonthlyClaims{Year: year}
	if r.Historical == nil && r.Forecast == nil {
		out.Historical = r.seriesPayload.toSeries()
		return out
	}
	if r.Historical != nil {
		out.Historical = r.Historical.toSeries()
	}
	if r.Forecast != nil {
		forecast := r.Forecast.toSeries()
		out.Forecast = &forecast
	}
	return out
}

type claimRow struct {
	VIN        string          `json:"vincd"`
	Amount     json.RawMessage `json:"claimAmount"`
	Status     string          `json:"status"`
	Model      string          `json:"model"`
	RepairDate string          `json:"repair_date"`
}

// toRecord converts a wire row; the backend sends amounts as "%.2f" strings.
func (r claimRow) toRecord() (dashboard.ClaimRecord, error) {
	raw := strings.Trim(string(r.Amount), `"`)
	var amount float64
	if raw != "" && raw != "null" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return dashboard.ClaimRecord{}, fmt.Errorf("claims: parse amount %q for %s: %w", raw, r.VIN, err)
		}
		amount = v
	}
	return dashboard.ClaimRecord{
		VIN:        r.VIN,
		Amount:     amount,
		Status:     r.Status,
		Model:      strings.TrimSpace(r.Model),
		RepairDate: r.RepairDate,
	}, nil
}
