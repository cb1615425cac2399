package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ocrapi/internal/recognition"
	"ocrapi/internal/rib"
)

func TestNew(t *testing.T) {
	_, err := New("", time.Second)
	assert.Error(t, err)

	e, err := New("http://localhost:9090/recognize", 0)
	require.NoError(t, err)
	assert.Equal(t, 120*time.Second, e.client.Timeout)
}

func TestEngine_Recognize(t *testing.T) {
	ctx := context.Background()

	t.Run("forwards envelope and passes fields through", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "aGVsbG8=", body["filecontent"])
			assert.Equal(t, "jpg", body["fileextension"])
			assert.Equal(t, "invoice", body["documenttype"])

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"Total": "42.00", "Pages": 1, "Vendor": null}`))
		}))
		defer srv.Close()

		e, err := New(srv.URL, time.Second)
		require.NoError(t, err)

		fields, err := e.Recognize(ctx, []byte("hello"), "jpg", "invoice")
		require.NoError(t, err)
		assert.Equal(t, recognition.Fields{"Total": "42.00", "Pages": "1", "Vendor": ""}, fields)
	})

	t.Run("rib results are completed", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"IBAN": "FR7630004009090000134858517", "BIC": "BNPAFRPPXXX"}`))
		}))
		defer srv.Close()

		e, err := New(srv.URL, time.Second)
		require.NoError(t, err)

		fields, err := e.Recognize(ctx, []byte("x"), "pdf", "rib")
		require.NoError(t, err)
		assert.Equal(t, "30004_00909_00001348585_17", fields[rib.FieldRibResult])
		assert.Equal(t, "", fields[rib.FieldAddress])
		assert.Len(t, fields, len(rib.Keys))
	})

	failures := []struct {
		name    string
		handler http.HandlerFunc
		detail  string
	}{
		{
			name: "error message from engine",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnprocessableEntity)
				w.Write([]byte(`{"message": "bad image"}`))
			},
			detail: "remote engine responded 422: bad image",
		},
		{
			name: "plain text error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "engine overloaded", http.StatusServiceUnavailable)
			},
			detail: "remote engine responded 503: engine overloaded",
		},
		{
			name: "empty error body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			detail: "remote engine responded 500: no detail",
		},
		{
			name: "invalid json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`not json`))
			},
		},
	}
	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			e, err := New(srv.URL, time.Second)
			require.NoError(t, err)

			_, err = e.Recognize(ctx, []byte("x"), "png", "rib")
			var re *recognition.Error
			require.True(t, errors.As(err, &re), "expected *recognition.Error, got %v", err)
			if tt.detail != "" {
				assert.Equal(t, tt.detail, re.Detail)
			}
		})
	}

	t.Run("unreachable engine", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		e, err := New(url, time.Second)
		require.NoError(t, err)

		_, err = e.Recognize(ctx, []byte("x"), "png", "rib")
		var re *recognition.Error
		require.True(t, errors.As(err, &re))
		assert.Contains(t, re.Detail, "remote engine unreachable")
		assert.NotContains(t, re.Detail, url)
		assert.NotContains(t, re.Detail, strings.TrimPrefix(url, "http://"))
	})

	t.Run("cancelled context is returned as is", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		defer srv.Close()

		e, err := New(srv.URL, 5*time.Second)
		require.NoError(t, err)

		cctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer cancel()

		_, err = e.Recognize(cctx, []byte("x"), "png", "rib")
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}
