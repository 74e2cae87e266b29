package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAsk(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Message string `json:"message"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		json.NewEncoder(w).Encode(map[string]string{"reply": "echo: " + req.Message})
	}))
	defer upstream.Close()

	client := NewClient(upstream.URL)
	reply, err := client.Ask(context.Background(), "how do I stay on track?")
	assert.NoError(t, err)
	assert.Equal(t, "echo: how do I stay on track?", reply)
}

func TestAskEmptyMessage(t *testing.T) {
	// Blank input short-circuits; the URL being unset must not matter.
	client := NewClient("")

	for _, msg := range []string{"", "   ", "\n\t"} {
		reply, err := client.Ask(context.Background(), msg)
		assert.NoError(t, err)
		assert.Equal(t, EmptyPromptReply, reply)
	}
}

func TestAskUpstreamErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "non-200 status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("not json"))
			},
		},
		{
			name: "empty reply",
			handler: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]string{"reply": ""})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			upstream := httptest.NewServer(tt.handler)
			defer upstream.Close()

			client := NewClient(upstream.URL)
			_, err := client.Ask(context.Background(), "hello")
			assert.ErrorIs(t, err, ErrUpstream)
		})
	}
}

func TestAskNoBackendConfigured(t *testing.T) {
	client := NewClient("")
	_, err := client.Ask(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrUpstream)
}
