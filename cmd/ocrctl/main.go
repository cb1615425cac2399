// Command ocrctl submits documents to the OCR API, several at a time.
//
//	ocrctl --url http://localhost:8080 --type rib scan1.jpg scan2.pdf
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"golang.org/x/sync/errgroup"

	"ocrapi/internal/client"
	"ocrapi/internal/envelope"
)

// result is one JSON line written to stdout per submitted file.
type result struct {
	File    string            `json:"file"`
	Status  int               `json:"status"`
	Fields  map[string]string `json:"fields,omitempty"`
	Error   string            `json:"error,omitempty"`
	Elapsed string            `json:"elapsed"`
}

func main() {
	fs := ff.NewFlagSet("ocrctl")
	var (
		baseURL     = fs.StringLong("url", "http://localhost:8080", "OCR API base URL")
		docType     = fs.StringLong("type", "rib", "Document type sent as documenttype")
		lang        = fs.StringLong("lang", "", "Accept-Language for error messages")
		concurrency = fs.IntLong("concurrency", 4, "Maximum concurrent submissions")
		timeout     = fs.DurationLong("timeout", 2*time.Minute, "Per-request timeout")
		ping        = fs.BoolLong("ping", "Only call the liveness probe")
	)

	if err := ff.Parse(fs, os.Args[1:], ff.WithEnvVarPrefix("OCRCTL")); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := client.New(*baseURL, *timeout, client.WithLanguage(*lang))

	if *ping {
		msg, err := c.Test(ctx)
		if err != nil {
			slog.Error("ping failed", "error", err)
			os.Exit(1)
		}
		fmt.Println(msg)
		return
	}

	files := fs.GetArgs()
	if len(files) == 0 {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintln(os.Stderr, "error: no files given")
		os.Exit(1)
	}

	failed, err := submitAll(ctx, c, files, *docType, *concurrency, json.NewEncoder(os.Stdout))
	if err != nil {
		slog.Error("submit failed", "error", err)
		os.Exit(1)
	}
	if failed > 0 {
		os.Exit(2)
	}
}

// submitAll sends every file and writes one result line each. It returns the number of
// files the API rejected; the error is reserved for local failures such as unreadable files.
func submitAll(ctx context.Context, c *client.Client, files []string, docType string, concurrency int, enc *json.Encoder) (int, error) {
	g, ctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}

	var (
		mu     sync.Mutex
		failed int
	)
	for _, path := range files {
		g.Go(func() error {
			content, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}

			start := time.Now()
			fields, err := c.Recognize(ctx, content, envelope.NormalizeExtension(filepath.Ext(path)), docType)
			res := result{File: path, Status: 200, Fields: fields, Elapsed: time.Since(start).Round(time.Millisecond).String()}
			if err != nil {
				var apiErr *client.APIError
				if !errors.As(err, &apiErr) {
					return fmt.Errorf("submit %s: %w", path, err)
				}
				res.Status = apiErr.StatusCode
				res.Error = apiErr.Message
			}

			mu.Lock()
			defer mu.Unlock()
			if res.Error != "" {
				failed++
			}
			return enc.Encode(res)
		})
	}

	err := g.Wait()
	return failed, err
}
