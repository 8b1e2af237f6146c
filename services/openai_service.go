package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ye11ow-banana/main-be/config"
	"github.com/ye11ow-banana/main-be/logger"
)

// OpenAIService talks to the OpenAI Responses API with strict JSON-schema
// output. It makes exactly one request per call.
type OpenAIService struct {
	log        *logger.Logger
	httpClient *http.Client
	baseURL    string
	apiKey     string
	identities []config.Identity

	items     *outputSchema
	nutrition *outputSchema
}

func NewOpenAIService(log *logger.Logger, cfg config.OpenAIConfig, identities []config.Identity) (*OpenAIService, error) {
	if len(identities) == 0 {
		return nil, errors.New("at least one identity is required")
	}
	users := make([]string, 0, len(identities))
	for _, id := range identities {
		users = append(users, id.Name)
	}
	items, err := compileSchema("items", itemsSchema(users))
	if err != nil {
		return nil, err
	}
	nutrition, err := compileSchema("unknown_to_nutrition", nutritionSchema())
	if err != nil {
		return nil, err
	}
	return &OpenAIService{
		log:        log,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		identities: identities,
		items:      items,
		nutrition:  nutrition,
	}, nil
}

type contentPart struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

type inputMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type responsesRequest struct {
	Model string         `json:"model"`
	Input []inputMessage `json:"input"`
	Text struct {
		Format map[string]any `json:"format"`
	} `json:"text"`
}

type responsesResponse struct {
	Output []struct {
		Type    string `json:"type"`
		Role    string `json:"role,omitempty"`
		Content []struct {
			Type    string `json:"type"`
			Text    string `json:"text,omitempty"`
			Refusal string `json:"refusal,omitempty"`
		} `json:"content,omitempty"`
	} `json:"output"`
}

type openAIHTTPError struct {
	StatusCode int
	Body       string
}

func (e *openAIHTTPError) Error() string {
	return fmt.Sprintf("openai http %d: %s", e.StatusCode, e.Body)
}

func (s *OpenAIService) ImageToItems(ctx context.Context, image []byte, mime, model string) (*ExtractionResult, error) {
	dataURL := "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(image)
	parts := []contentPart{
		{Type: "input_text", Text: imagePrompt(s.identities)},
		{Type: "input_image", ImageURL: dataURL},
	}
	var out ExtractionResult
	if err := s.generate(ctx, model, "image_to_items", s.items, parts, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *OpenAIService) TextToItems(ctx context.Context, text, model string) (*ExtractionResult, error) {
	parts := []contentPart{{Type: "input_text", Text: textPrompt(s.identities, text)}}
	var out ExtractionResult
	if err := s.generate(ctx, model, "text_to_items", s.items, parts, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *OpenAIService) UnknownToNutrition(ctx context.Context, rawNames []string, model string) ([]SynthesizedProduct, error) {
	parts := []contentPart{{Type: "input_text", Text: nutritionPrompt(rawNames)}}
	var out struct {
		Products []SynthesizedProduct `json:"products"`
	}
	if err := s.generate(ctx, model, "unknown_to_nutrition", s.nutrition, parts, &out); err != nil {
		return nil, err
	}
	return out.Products, nil
}

func (s *OpenAIService) generate(ctx context.Context, model, name string, schema *outputSchema, parts []contentPart, out any) error {
	req := responsesRequest{
		Model: model,
		Input: []inputMessage{{Role: "user", Content: parts}},
	}
	req.Text.Format = map[string]any{
		"type":   "json_schema",
		"name":   name,
		"schema": schema.doc,
		"strict": true,
	}

	var resp responsesResponse
	if err := s.post(ctx, "/v1/responses", &req, &resp); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	text, refusal := extractOutputText(resp)
	if refusal != "" {
		return &OracleSchemaViolation{Operation: name, Err: fmt.Errorf("model refused: %s", refusal)}
	}
	if strings.TrimSpace(text) == "" {
		return &OracleSchemaViolation{Operation: name, Err: errors.New("no output_text in response")}
	}
	if err := schema.decode(text, out); err != nil {
		s.log.Warn("oracle output rejected", "operation", name, "model", model, "error", err)
		return err
	}
	return nil
}

func (s *OpenAIService) post(ctx context.Context, path string, body, out any) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	raw, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &openAIHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("openai decode error: %w", err)
	}
	return nil
}

func extractOutputText(resp responsesResponse) (text, refusal string) {
	var b strings.Builder
	for _, item := range resp.Output {
		if item.Type != "message" {
			continue
		}
		for _, c := range item.Content {
			switch c.Type {
			case "output_text":
				b.WriteString(c.Text)
			case "refusal":
				refusal = c.Refusal
			}
		}
	}
	return b.String(), refusal
}
