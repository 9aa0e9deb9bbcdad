package jsonbin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/navcast/internal/common"
	"github.com/bobmcallan/navcast/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient("master-key", "bin-1",
		WithBaseURL(srv.URL),
		WithLogger(common.NewSilentLogger()),
	)
}

func TestGetFunds(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/b/bin-1/latest", r.URL.Path)
		assert.Equal(t, "master-key", r.Header.Get("X-Master-Key"))
		w.Write([]byte(`{"record":[{"code":"110011","name":"易方达中小盘","cost":1.2,"shares":1000,"group":"默认"}]}`))
	})

	funds, err := c.GetFunds(context.Background())
	require.NoError(t, err)
	require.Len(t, funds, 1)
	assert.Equal(t, "110011", funds[0].Code)
	assert.Equal(t, 1000.0, funds[0].Shares)
}

func TestGetFunds_AuthFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"invalid key"}`, http.StatusUnauthorized)
	})

	_, err := c.GetFunds(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestPutFunds(t *testing.T) {
	var received []models.FundRecord
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/b/bin-1", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Write([]byte(`{}`))
	})

	err := c.PutFunds(context.Background(), []models.FundRecord{
		{Code: "110011", Name: "易方达中小盘", Group: "默认"},
	})
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, "110011", received[0].Code)
}

func TestPutFunds_NilBecomesEmptyList(t *testing.T) {
	var raw string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, 16)
		n, _ := r.Body.Read(buf)
		raw = string(buf[:n])
		w.Write([]byte(`{}`))
	})

	require.NoError(t, c.PutFunds(context.Background(), nil))
	assert.Equal(t, "[]", raw)
}
