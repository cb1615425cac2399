// Package gemini implements a recognition.Engine on top of Google Gemini vision models.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"google.golang.org/api/option"

	"ocrapi/internal/recognition"
	"ocrapi/internal/recognition/imaging"
	"ocrapi/internal/rib"
)

var schema = jsonschema.MustCompileString("rib-output.json", outputSchema)

// generator is the subset of *genai.GenerativeModel used by the engine.
type generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// Engine recognizes RIB documents with a Gemini model.
// The model is configured once in New and only read afterwards, so one Engine
// serves concurrent requests.
type Engine struct {
	client *genai.Client
	model  generator
}

var _ recognition.Engine = (*Engine)(nil)

// New creates a Gemini-backed engine.
func New(ctx context.Context, apiKey, modelName string) (*Engine, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if modelName == "" {
		modelName = "gemini-2.5-pro"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0)
	model.ResponseMIMEType = "application/json"

	return &Engine{client: client, model: model}, nil
}

func newWithGenerator(g generator) *Engine {
	return &Engine{model: g}
}

// Close releases the underlying client.
func (e *Engine) Close() error {
	if e.client == nil {
		return nil
	}
	return e.client.Close()
}

// Recognize extracts RIB fields from content.
func (e *Engine) Recognize(ctx context.Context, content []byte, fileExtension, documentType string) (recognition.Fields, error) {
	if !strings.EqualFold(documentType, recognition.DocumentTypeRIB) {
		return nil, recognition.Errorf("document type %q: %w", documentType, recognition.ErrUnsupportedDocumentType)
	}

	img, err := imaging.Prepare(content, fileExtension)
	if err != nil {
		return nil, recognition.AsError(err)
	}

	resp, err := e.model.GenerateContent(ctx,
		genai.ImageData(img.Format, img.Data),
		genai.Text(ribPrompt),
	)
	if err != nil {
		return nil, recognition.Errorf("gemini: %w", err)
	}

	text := responseText(resp)
	if text == "" {
		return nil, recognition.Errorf("gemini returned no content")
	}

	out, err := parseOutput(text)
	if err != nil {
		return nil, recognition.Errorf("gemini output: %w", err)
	}
	return out.fields(), nil
}

type ribOutput struct {
	IBAN          *string `json:"iban"`
	BIC           *string `json:"bic"`
	BankCode      *string `json:"bank_code"`
	BranchCode    *string `json:"branch_code"`
	AccountNumber *string `json:"account_number"`
	RibKey        *string `json:"rib_key"`
	HolderAddress *string `json:"holder_address"`
}

func (o ribOutput) fields() recognition.Fields {
	return rib.Complete(map[string]string{
		rib.FieldIBAN:          deref(o.IBAN),
		rib.FieldBIC:           deref(o.BIC),
		rib.FieldBankCode:      deref(o.BankCode),
		rib.FieldBranchCode:    deref(o.BranchCode),
		rib.FieldAccountNumber: deref(o.AccountNumber),
		rib.FieldRibKey:        deref(o.RibKey),
		rib.FieldAddress:       deref(o.HolderAddress),
	})
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return strings.TrimSpace(b.String())
}

// parseOutput extracts the JSON object from the model text and validates its shape.
func parseOutput(text string) (ribOutput, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end < start {
		return ribOutput{}, fmt.Errorf("no JSON object found")
	}
	raw := []byte(text[start : end+1])

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return ribOutput{}, fmt.Errorf("unmarshaling json: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return ribOutput{}, fmt.Errorf("json does not match schema: %w", err)
	}

	var out ribOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return ribOutput{}, fmt.Errorf("unmarshaling json: %w", err)
	}
	return out, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
