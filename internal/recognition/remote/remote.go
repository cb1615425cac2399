// Package remote implements a recognition.Engine that delegates to an HTTP recognition service.
//
// The service receives the same envelope the API accepts
// ({"filecontent", "fileextension", "documenttype"}) and answers with a flat JSON object
// of extracted fields, or a non-2xx status with {"message": "..."}.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"ocrapi/internal/envelope"
	"ocrapi/internal/recognition"
	"ocrapi/internal/rib"
)

const maxErrorBody = 4 << 10

// Engine calls a remote recognition service. It is safe for concurrent use.
type Engine struct {
	url    string
	client *http.Client
}

var _ recognition.Engine = (*Engine)(nil)

// New creates a remote engine posting to endpoint.
func New(endpoint string, timeout time.Duration) (*Engine, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("remote engine url is required")
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Engine{
		url: endpoint,
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}, nil
}

type errorResponse struct {
	Message string `json:"message"`
}

// Recognize posts the document to the remote service.
func (e *Engine) Recognize(ctx context.Context, content []byte, fileExtension, documentType string) (recognition.Fields, error) {
	payload, err := json.Marshal(envelope.Body(content, fileExtension, documentType))
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, recognition.Errorf("remote engine unreachable: %w", transportCause(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, recognition.Errorf("remote engine responded %d: %s", resp.StatusCode, errorDetail(resp.Body))
	}

	var raw map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, recognition.Errorf("remote engine returned invalid json: %w", err)
	}

	fields := make(recognition.Fields, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case nil:
			fields[k] = ""
		case string:
			fields[k] = val
		default:
			fields[k] = fmt.Sprint(val)
		}
	}

	if strings.EqualFold(documentType, recognition.DocumentTypeRIB) {
		return rib.Complete(fields), nil
	}
	return fields, nil
}

// transportCause drops the URL and dialed address from err, since the detail may reach clients.
func transportCause(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		err = uerr.Err
	}
	var oerr *net.OpError
	if errors.As(err, &oerr) && oerr.Err != nil {
		err = oerr.Err
	}
	return err
}

func errorDetail(r io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil && !errors.Is(err, io.EOF) {
		return "unreadable response"
	}
	var er errorResponse
	if json.Unmarshal(b, &er) == nil && er.Message != "" {
		return er.Message
	}
	if s := strings.TrimSpace(string(b)); s != "" {
		return s
	}
	return "no detail"
}
