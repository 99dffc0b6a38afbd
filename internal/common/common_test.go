package common

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteErrorUsesAppError(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, NewAppError("INVALID_INPUT", "sellers is required", http.StatusUnprocessableEntity, errors.New("boom")))

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	var body struct {
		Error ErrorBody `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, "INVALID_INPUT", body.Error.Code)
	require.Equal(t, "sellers is required", body.Error.Message)
}

func TestWriteErrorWrapsUnknown(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, errors.New("database on fire"))
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.NotContains(t, rr.Body.String(), "database on fire")
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.7:5123"
	require.Equal(t, "10.0.0.7", ClientIP(req))
	req.RemoteAddr = "10.0.0.8"
	require.Equal(t, "10.0.0.8", ClientIP(req))
	require.Equal(t, "", ClientIP(nil))
}

func TestAtoiDefault(t *testing.T) {
	require.Equal(t, 5, AtoiDefault(" 5 ", 1))
	require.Equal(t, 1, AtoiDefault("x", 1))
	require.Equal(t, 1, AtoiDefault("", 1))
}

func TestFingerprintSeparatesParts(t *testing.T) {
	require.NotEqual(t, Fingerprint([]byte("ab"), []byte("c")), Fingerprint([]byte("a"), []byte("bc")))
	require.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", Fingerprint())
}

func TestDataWrapsPayload(t *testing.T) {
	rr := httptest.NewRecorder()
	Data(rr, http.StatusOK, map[string]int{"records": 3})

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "application/json; charset=utf-8", rr.Header().Get("Content-Type"))
	require.JSONEq(t, `{"data":{"records":3}}`, rr.Body.String())
}
