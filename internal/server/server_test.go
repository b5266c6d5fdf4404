package server

import (
	"bytes"
	"encoding/json"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iwvelando/property-underwriting/pkg/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

func newTestHandler(maxUpload int64) http.Handler {
	return NewHandler(zap.NewNop(), maxUpload, "test")
}

func performJSON(t *testing.T, handler http.Handler, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func performUpload(t *testing.T, handler http.Handler, data []byte) *httptest.ResponseRecorder {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "config.yaml")
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/evaluate/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func decodeEvaluate(t *testing.T, rr *httptest.ResponseRecorder) evaluateResponse {
	t.Helper()
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp evaluateResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func TestHandleEvaluateDefaults(t *testing.T) {
	rr := performJSON(t, newTestHandler(constants.DefaultMaxUploadSizeBytes), "/api/evaluate", map[string]interface{}{})
	resp := decodeEvaluate(t, rr)

	assert.Equal(t, constants.DefaultPropertyName, resp.Name)
	assert.InDelta(t, 1730000, resp.Outputs.TotalProjectCost, 1e-6)
	assert.InDelta(t, 136375, resp.Outputs.NetOperatingIncome, 1e-6)
	assert.InDelta(t, 52037.5, resp.Outputs.FreeCashFlow, 1e-6)
	assert.True(t, resp.Outputs.CapRate.Defined)
	assert.Len(t, resp.Outputs.Expenses, 7)
	assert.NotEmpty(t, resp.CSV)
	assert.NotEmpty(t, resp.Duration)
	assert.Empty(t, resp.Warnings)
}

func TestHandleEvaluateOverrides(t *testing.T) {
	payload := map[string]interface{}{
		"name":             "Corner Lot",
		"equityPercentage": 50,
		"unitMonthlyRents": []float64{3000, 3000},
	}
	resp := decodeEvaluate(t, performJSON(t, newTestHandler(0), "/api/evaluate", payload))

	assert.Equal(t, "Corner Lot", resp.Name)
	assert.Equal(t, []float64{3000, 3000}, resp.Inputs.UnitMonthlyRents)
	assert.InDelta(t, 865000, resp.Outputs.EquityAmount, 1e-6)
	assert.InDelta(t, 72000, resp.Outputs.AnnualRentIncome, 1e-6)
	// Unspecified fields keep their reference values.
	assert.Equal(t, 430000.0, resp.Inputs.PurchasePrice)
}

func TestHandleEvaluateUndefinedCapRate(t *testing.T) {
	payload := map[string]interface{}{
		"purchasePrice":         0,
		"renovationCostPerSqFt": 0,
	}
	rr := performJSON(t, newTestHandler(0), "/api/evaluate", payload)
	require.Equal(t, http.StatusOK, rr.Code)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &raw))
	var outputs map[string]interface{}
	require.NoError(t, json.Unmarshal(raw["outputs"], &outputs))
	value, present := outputs["capRatePercent"]
	assert.True(t, present)
	assert.Nil(t, value)
}

func TestHandleEvaluateInvalidInput(t *testing.T) {
	payload := map[string]interface{}{
		"purchasePrice":    -1,
		"equityPercentage": 101,
	}
	rr := performJSON(t, newTestHandler(0), "/api/evaluate", payload)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "purchasePrice")
	require.Len(t, resp.Details, 2)
	assert.Contains(t, resp.Details[0], "purchasePrice")
	assert.Contains(t, resp.Details[1], "equityPercentage")
}

func TestHandleEvaluateOverflowingInputs(t *testing.T) {
	payload := map[string]interface{}{
		"buildingSizeSqFt":      1e300,
		"renovationCostPerSqFt": 1e300,
	}
	rr := performJSON(t, newTestHandler(0), "/api/evaluate", payload)
	require.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Details)
	assert.Contains(t, resp.Error, "totalProjectCost")
}

func TestWriteJSONEncodingFailure(t *testing.T) {
	h := &handler{logger: zap.NewNop()}
	rr := httptest.NewRecorder()
	h.writeJSON(rr, http.StatusOK, map[string]float64{"value": math.Inf(1)})

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "failed to encode response")
}

func TestHandleEvaluateMalformedJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/evaluate", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()
	newTestHandler(0).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "failed to decode inputs")
}

func TestHandleEvaluateMethodNotAllowed(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/evaluate", nil)
	rr := httptest.NewRecorder()
	newTestHandler(0).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestHandleEvaluateUpload(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("..", "config", "testdata", "partial.yaml"))
	require.NoError(t, err)

	resp := decodeEvaluate(t, performUpload(t, newTestHandler(0), data))
	assert.Equal(t, "Elm Street Duplex", resp.Name)
	assert.InDelta(t, 250000+2400*100, resp.Outputs.TotalProjectCost, 1e-6)
	assert.InDelta(t, 12*(1850+1650.50), resp.Outputs.AnnualRentIncome, 1e-6)
}

func TestHandleEvaluateUploadTooLarge(t *testing.T) {
	rr := performUpload(t, newTestHandler(64), []byte(strings.Repeat("a", 128)))
	require.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "upload exceeds limit")
}

func TestHandleEvaluateUploadMissingFile(t *testing.T) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/evaluate/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rr := httptest.NewRecorder()
	newTestHandler(0).ServeHTTP(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "missing scenario file", resp.Error)
}

func TestHandleEvaluateUploadInvalidYAML(t *testing.T) {
	rr := performUpload(t, newTestHandler(0), []byte("property: [broken"))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleEvaluateUploadInvalidScenario(t *testing.T) {
	rr := performUpload(t, newTestHandler(0), []byte("units:\n  - monthlyRent: -100\n"))
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "unitMonthlyRents[0]")
}

func TestHandleDefaults(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/defaults", nil)
	rr := httptest.NewRecorder()
	newTestHandler(0).ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, constants.DefaultPropertyName, resp["name"])
	assert.Equal(t, 430000.0, resp["purchasePrice"])
	assert.Equal(t, 6.0, resp["managementFeePercent"])
	assert.Len(t, resp["unitMonthlyRents"], 7)
}

func TestHandleExport(t *testing.T) {
	payload := map[string]interface{}{
		"name":             "Export Test",
		"unitMonthlyRents": []float64{1200, 1300},
	}
	rr := performJSON(t, newTestHandler(0), "/api/export", payload)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	yamlStr := resp["configYaml"]
	require.NotEmpty(t, yamlStr)

	var doc map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(yamlStr), &doc))
	assert.Contains(t, doc, "property")
	assert.Contains(t, doc, "financing")
	assert.Contains(t, doc, "expenses")
	assert.Len(t, doc["units"], 2)
	assert.NotContains(t, doc, "logging")

	// The exported scenario evaluates to the same result when uploaded back.
	resp2 := decodeEvaluate(t, performUpload(t, newTestHandler(0), []byte(yamlStr)))
	assert.Equal(t, "Export Test", resp2.Name)
	assert.InDelta(t, 12*2500.0, resp2.Outputs.AnnualRentIncome, 1e-6)
}

func TestHandleVersion(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/version", nil)
	rr := httptest.NewRecorder()
	NewHandler(nil, 0, "  ").ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "dev", resp["version"])
}

func TestStaticIndex(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	newTestHandler(0).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Redevelopment Underwriting")
}
