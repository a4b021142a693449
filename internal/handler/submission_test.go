package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/ozclean/submission-gateway/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProcessor struct {
	err       error
	lastType  string
	lastBody  map[string]interface{}
	reference string
}

func (f *fakeProcessor) Process(ctx context.Context, submissionType string, payload map[string]interface{}, sourceIP string) (*service.ProcessResult, error) {
	f.lastType = submissionType
	f.lastBody = payload
	if f.err != nil {
		return nil, f.err
	}
	return &service.ProcessResult{
		Success:     true,
		ReferenceID: f.reference,
	}, nil
}

func newTestRouter(processor *fakeProcessor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewSubmissionHandler(processor)
	router.POST("/submit/:type", handler.Submit)
	return router
}

func submitJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	return body
}

func TestSubmitValidQuote(t *testing.T) {
	processor := &fakeProcessor{reference: "RQ-AB12CD34"}
	router := newTestRouter(processor)

	recorder := submitJSON(router, "/submit/residential-quote", `{
		"fullName": "Jo Smith",
		"email": "jo@example.com",
		"phone": "0412345678",
		"suburb": "Bondi",
		"serviceType": "deep-clean"
	}`)

	require.Equal(t, http.StatusOK, recorder.Code)
	body := decodeBody(t, recorder)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "RQ-AB12CD34", body["reference_id"])
	assert.Equal(t, "residential-quote", processor.lastType)
}

func TestSubmitSanitizesBeforeProcessing(t *testing.T) {
	processor := &fakeProcessor{reference: "RQ-AB12CD34"}
	router := newTestRouter(processor)

	recorder := submitJSON(router, "/submit/residential-quote", `{
		"fullName": "Jo Smith",
		"email": "jo@example.com",
		"phone": "0412345678",
		"suburb": "Bondi",
		"serviceType": "deep-clean",
		"notes": "please <script>alert(1)</script> call after 5"
	}`)

	require.Equal(t, http.StatusOK, recorder.Code)
	notes, _ := processor.lastBody["notes"].(string)
	assert.NotContains(t, notes, "<")
	assert.NotContains(t, notes, ">")
	assert.Contains(t, notes, "call after 5")
}

func TestSubmitUnknownType(t *testing.T) {
	processor := &fakeProcessor{}
	router := newTestRouter(processor)

	recorder := submitJSON(router, "/submit/pool-cleaning", `{"fullName": "Jo Smith"}`)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
	body := decodeBody(t, recorder)
	assert.Equal(t, false, body["success"])
	assert.Empty(t, processor.lastType)
}

func TestSubmitMalformedJSON(t *testing.T) {
	router := newTestRouter(&fakeProcessor{})

	recorder := submitJSON(router, "/submit/residential-quote", `{"fullName": `)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	body := decodeBody(t, recorder)
	assert.Equal(t, "Invalid request body", body["error"])
}

func TestSubmitValidationFailureListsAllErrors(t *testing.T) {
	processor := &fakeProcessor{}
	router := newTestRouter(processor)

	recorder := submitJSON(router, "/submit/residential-quote", `{
		"fullName": "J",
		"email": "not-an-email",
		"phone": "12345"
	}`)

	require.Equal(t, http.StatusBadRequest, recorder.Code)
	body := decodeBody(t, recorder)
	assert.Equal(t, "Validation failed", body["error"])

	details, ok := body["details"].([]interface{})
	require.True(t, ok)
	assert.GreaterOrEqual(t, len(details), 3)
	assert.Empty(t, processor.lastType, "processor must not run on invalid input")
}

func TestSubmitPersistenceFailure(t *testing.T) {
	processor := &fakeProcessor{err: errors.New("connection refused")}
	router := newTestRouter(processor)

	recorder := submitJSON(router, "/submit/residential-quote", `{
		"fullName": "Jo Smith",
		"email": "jo@example.com",
		"phone": "0412345678",
		"suburb": "Bondi",
		"serviceType": "deep-clean"
	}`)

	assert.Equal(t, http.StatusBadGateway, recorder.Code)
	body := decodeBody(t, recorder)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Failed to save submission, please try again", body["error"])
	assert.Nil(t, body["reference_id"])
}
