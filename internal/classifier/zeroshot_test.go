package classifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var labels = []string{"Cardiology", "Orthopedics", "General Medicine", "Neurology", "Pediatrics"}

func TestZeroShotClient_Classify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer hf-key", r.Header.Get("Authorization"))

		var payload zeroShotRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "chest pain", payload.Inputs)
		assert.Equal(t, labels, payload.Parameters.CandidateLabels)

		_, _ = w.Write([]byte(`{"sequence":"chest pain","labels":["Cardiology","Neurology"],"scores":[0.87,0.13]}`))
	}))
	defer srv.Close()

	client, err := NewZeroShotClient(Config{URL: srv.URL, APIKey: "hf-key", Timeout: time.Second})
	require.NoError(t, err)

	res, err := client.Classify(context.Background(), "chest pain", labels)
	require.NoError(t, err)
	label, score := res.Top()
	assert.Equal(t, "Cardiology", label)
	assert.InDelta(t, 0.87, score, 1e-9)
}

func TestZeroShotClient_MissingKeySkipsRequest(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	client, err := NewZeroShotClient(Config{URL: srv.URL})
	require.NoError(t, err)

	_, err = client.Classify(context.Background(), "chest pain", labels)
	assert.ErrorIs(t, err, ErrMissingCredential)
	assert.False(t, called)
}

func TestZeroShotClient_Errors(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"status": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "model loading", http.StatusServiceUnavailable)
		},
		"error field": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"error":"Model is currently loading"}`))
		},
		"not json": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		},
		"empty labels": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"labels":[],"scores":[]}`))
		},
		"mismatched": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"labels":["Cardiology","Neurology"],"scores":[0.9]}`))
		},
	}

	for name, handler := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(handler)
			defer srv.Close()

			client, err := NewZeroShotClient(Config{URL: srv.URL, APIKey: "k"})
			require.NoError(t, err)

			_, err = client.Classify(context.Background(), "x", labels)
			assert.Error(t, err)
		})
	}
}

func TestZeroShotClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	client, err := NewZeroShotClient(Config{URL: srv.URL, APIKey: "k", Timeout: 50 * time.Millisecond})
	require.NoError(t, err)

	_, err = client.Classify(context.Background(), "x", labels)
	assert.Error(t, err)
}

func TestNewZeroShotClient_RequiresURL(t *testing.T) {
	_, err := NewZeroShotClient(Config{URL: " "})
	assert.Error(t, err)
}
