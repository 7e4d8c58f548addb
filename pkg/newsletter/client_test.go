package newsletter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"uk.co.dudmesh.pressroom/internal/model"
)

func TestSend(t *testing.T) {
	assert := assert.New(t)

	t.Run("Posts Queue Reference", func(t *testing.T) {
		var captured sendRequest
		var authHeader string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader = r.Header.Get("Authorization")
			assert.Nil(json.NewDecoder(r.Body).Decode(&captured))
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := New(server.URL, "fn-key")
		err := client.Send(context.Background(), "post-1", "queue-1")
		assert.Nil(err)
		assert.Equal("post-1", captured.PostID)
		assert.Equal("queue-1", captured.QueueID)
		assert.Equal("Bearer fn-key", authHeader)
	})

	t.Run("Upstream Failure Surfaces Body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "template missing", http.StatusBadGateway)
		}))
		defer server.Close()

		client := New(server.URL, "")
		err := client.Send(context.Background(), "post-1", "queue-1")
		assert.NotNil(err)
		assert.Contains(err.Error(), "502")
		assert.Contains(err.Error(), "template missing")
	})

	t.Run("Missing URL Is A Configuration Error", func(t *testing.T) {
		client := New("", "")
		err := client.Send(context.Background(), "post-1", "queue-1")
		assert.ErrorIs(err, model.ErrorSenderNotConfigured)
	})
}
