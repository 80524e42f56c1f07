package claims

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	dashboard "github.com/goliatone/go-claims-dashboard/components/dashboard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := NewHTTPClient(HTTPConfig{BaseURL: server.URL + "/", APIKey: "secret"})
	require.NoError(t, err)
	return client
}

func TestNewHTTPClientRequiresBaseURL(t *testing.T) {
	_, err := NewHTTPClient(HTTPConfig{})
	assert.Error(t, err)
}

func TestHTTPClientStatusDistribution(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/claim-status-distribution/" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Fatalf("expected auth header, got %s", got)
		}
		var body yearRequest
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Year != 2024 {
			t.Fatalf("expected year 2024, got %d", body.Year)
		}
		_, _ = io.WriteString(w, `{"success":true,"data":[
			{"name":"Approved","value":10,"percentage":50,"color":"#34D399"},
			{"name":"Pending","value":5,"percentage":25,"color":"#FBBF24"},
			{"name":"Rejected","value":5,"percentage":25,"color":"#F87171"}]}`)
	})
	slices, err := client.StatusDistribution(context.Background(), 2024)
	require.NoError(t, err)
	require.Len(t, slices, 3)
	assert.Equal(t, "Pending", slices[1].Name)
	assert.Equal(t, "#F87171", slices[2].Color)

	_, err = client.StatusDistribution(context.Background(), 1800)
	assert.ErrorIs(t, err, dashboard.ErrInvalidYear)
}

func TestHTTPClientMonthlyClaimsShapes(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body yearRequest
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Year == 2023 {
			_, _ = io.WriteString(w, `{"success":true,"data":{"total":[3,4],"accepted":[2,3],"rejected":[1,1]}}`)
			return
		}
		_, _ = io.WriteString(w, `{"success":true,"data":{
			"historical":{"total":[5],"accepted":[4],"rejected":[1]},
			"forecast":{"total":[6,7],"accepted":[5,5],"rejected":[1,2]}}}`)
	})

	past, err := client.MonthlyClaims(context.Background(), 2023)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 4}, past.Historical.Total)
	assert.Nil(t, past.Forecast)

	current, err := client.MonthlyClaims(context.Background(), 2025)
	require.NoError(t, err)
	assert.Equal(t, []float64{5}, current.Historical.Total)
	require.NotNil(t, current.Forecast)
	assert.Equal(t, []float64{6, 7}, current.Forecast.Total)
	assert.Equal(t, 2025, current.Year)
}

func TestHTTPClientLastMonthParsesStringAmounts(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Fatalf("expected GET, got %s", r.Method)
		}
		_, _ = io.WriteString(w, `{"success":true,"data":[
			{"vincd":"JM1","claimAmount":"812.40","status":"Approved","model":" MAZDA_CX_5 ","repair_date":"02-05-2025"}]}`)
	})
	records, err := client.LastMonthClaims(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 812.40, records[0].Amount)
	assert.Equal(t, "MAZDA_CX_5", records[0].Model)
}

func TestHTTPClientSummaryNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"No summary data found."}`, http.StatusNotFound)
	})
	_, err := client.SummaryCard(context.Background(), "A")
	assert.ErrorIs(t, err, ErrNotFound)
	var remote *RemoteError
	require.True(t, errors.As(err, &remote))
	assert.Equal(t, http.StatusNotFound, remote.Status)
}

func TestHTTPClientPredict(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var claim WarrantyClaim
		require.NoError(t, json.NewDecoder(r.Body).Decode(&claim))
		if claim.ModelName != "MAZDA_CX_5" || claim.MileageIn != 42000 {
			t.Fatalf("unexpected claim payload %+v", claim)
		}
		_, _ = io.WriteString(w, `{"warranty_status":"R","warranty_status_probability":0.91,"reason_code":"NWC","reason_code_probability":0.66}`)
	})
	prediction, err := client.Predict(context.Background(), WarrantyClaim{ModelName: "MAZDA_CX_5", MileageIn: 42000})
	require.NoError(t, err)
	assert.Equal(t, "Rejected", prediction.StatusName())
	assert.InDelta(t, 0.91, prediction.WarrantyStatusProbability, 1e-9)
}

func TestHTTPClientExtractUploadsImage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		data, _ := io.ReadAll(file)
		if header.Filename != "claim.png" || string(data) != "png-bytes" {
			t.Fatalf("unexpected upload %s %q", header.Filename, data)
		}
		_, _ = io.WriteString(w, `{"ClaimNumber":"C-1","VIN":"JM1","RelatedParts":["P1"]}`)
	})
	claim, err := client.Extract(context.Background(), "scans/claim.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "C-1", claim.ClaimNumber)
	assert.Equal(t, []string{"P1"}, claim.RelatedParts)

	_, err = client.Extract(context.Background(), "claim.pdf", strings.NewReader("pdf"))
	assert.ErrorIs(t, err, ErrUnsupportedDocument)
}

func TestHTTPClientAssistant(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ai-chatbot-sql/":
			_, _ = io.WriteString(w, `{"type":"language","content":"**42** claims"}`)
		case "/ai-smart-table/":
			_, _ = io.WriteString(w, `{"type":"table","content":[{"model":"CX-5","claims":3},{"model":"CX-30","dealer":"D1"}]}`)
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	})
	answer, err := client.Ask(context.Background(), "how many claims?")
	require.NoError(t, err)
	assert.Equal(t, "**42** claims", answer.Content)

	table, err := client.SmartTable(context.Background(), "claims per model")
	require.NoError(t, err)
	assert.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"claims", "model", "dealer"}, table.Columns())
}

func TestHTTPClientEnvelopeFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"success":false}`)
	})
	_, err := client.LastMonthClaims(context.Background())
	assert.Error(t, err)
}
