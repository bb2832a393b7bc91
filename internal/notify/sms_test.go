package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTwilioSenderSend(t *testing.T) {
	var gotPath, gotTo, gotFrom, gotBody string
	var gotUser, gotPass string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, gotPass, _ = r.BasicAuth()
		require.NoError(t, r.ParseForm())
		gotTo = r.PostFormValue("To")
		gotFrom = r.PostFormValue("From")
		gotBody = r.PostFormValue("Body")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"sid": "SM123"})
	}))
	defer srv.Close()

	s := NewTwilioSender("AC42", "secret", "+15550001111")
	s.BaseURL = srv.URL

	sid, err := s.Send(context.Background(), "+15552223333", "your lease is ready")
	require.NoError(t, err)
	assert.Equal(t, "SM123", sid)
	assert.Equal(t, "/2010-04-01/Accounts/AC42/Messages.json", gotPath)
	assert.Equal(t, "AC42", gotUser)
	assert.Equal(t, "secret", gotPass)
	assert.Equal(t, "+15552223333", gotTo)
	assert.Equal(t, "+15550001111", gotFrom)
	assert.Equal(t, "your lease is ready", gotBody)
}

func TestTwilioSenderAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{"message": "The 'To' number is not valid", "code": 21211})
	}))
	defer srv.Close()

	s := NewTwilioSender("AC42", "secret", "+15550001111")
	s.BaseURL = srv.URL

	_, err := s.Send(context.Background(), "not-a-number", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "21211")
}

func TestTwilioSenderOpaqueError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := NewTwilioSender("AC42", "secret", "+15550001111")
	s.BaseURL = srv.URL

	_, err := s.Send(context.Background(), "+15552223333", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 500")
}
