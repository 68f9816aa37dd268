package genai

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/GoogleCloudPlatform/db-view-builder/internal/logging"
	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// LLMClient suggests view names with a generative model.
type LLMClient interface {
	SuggestViewName(ctx context.Context, tables, columns []string) (string, error)
	IsAPIKeyValid(ctx context.Context) error
	Close() error
}

// Config holds configuration for the GenAI client.
type Config struct {
	APIKey string
	Model  string
	Logger *zap.SugaredLogger
}

const defaultModel = "gemini-1.5-flash-latest"

type geminiClient struct {
	client *genai.Client
	cfg    Config
}

// NewClient creates a Gemini client. A missing API key is an error.
func NewClient(ctx context.Context, cfg Config) (LLMClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("cannot create Gemini client: API key is missing")
	}
	cfg.Logger = logging.OrNop(cfg.Logger)
	if cfg.Model == "" {
		cfg.Model = defaultModel
		cfg.Logger.Debugf("Gemini model not specified, defaulting to %s", cfg.Model)
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &geminiClient{client: client, cfg: cfg}, nil
}

func (c *geminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// IsAPIKeyValid lists one model to confirm the key is accepted.
func (c *geminiClient) IsAPIKeyValid(ctx context.Context) error {
	if c.client == nil {
		return fmt.Errorf("gemini client not initialized")
	}
	if _, err := c.client.ListModels(ctx).Next(); err != nil {
		switch status.Code(err) {
		case codes.Unauthenticated, codes.PermissionDenied:
			return fmt.Errorf("gemini API key rejected: %w", err)
		}
		return fmt.Errorf("could not verify gemini API key: %w", err)
	}
	return nil
}

// SuggestViewName asks the model for a short snake_case name. The answer is
// sanitized; an empty result means the model had no usable suggestion.
func (c *geminiClient) SuggestViewName(ctx context.Context, tables, columns []string) (string, error) {
	if c.client == nil {
		return "", fmt.Errorf("gemini client not initialized")
	}
	if len(tables) == 0 || len(columns) == 0 {
		return "", nil
	}

	prompt := fmt.Sprintf(`
	Your task is to name a SQL view.

	**View Definition:**
	- Source Tables: [%s]
	- Selected Columns: [%s]

	**Instructions:**
	1. Propose ONE short, descriptive name in snake_case (lowercase letters, digits and underscores only, max 40 characters).
	2. Do not include a schema prefix, quotes or explanations.
	3. Output ONLY the name within <result></result> tags.
	`, strings.Join(tables, ", "), strings.Join(columns, ", "))

	model := c.client.GenerativeModel(c.cfg.Model)
	model.SetTemperature(0.2)
	model.SetMaxOutputTokens(40)
	model.SetTopP(0.9)
	model.SetTopK(40)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("Gemini API call failed: %w", err)
	}

	raw, err := extractTextBetweenTags(resp, "<result>", "</result>")
	if err != nil {
		c.cfg.Logger.Warnf("Could not extract view name from Gemini response: %v", err)
		return "", nil
	}

	name := SanitizeName(raw)
	c.cfg.Logger.Infof("Gemini suggested view name %q using model %s.", name, c.cfg.Model)
	return name, nil
}

var nonIdentifierRun = regexp.MustCompile(`[^a-z0-9_]+`)

// maxSuggestedLength leaves room for a numeric suffix within the identifier bound.
const maxSuggestedLength = 40

// SanitizeName lower-cases s and folds it into letters, digits and
// underscores. A leading digit gets a "v_" prefix. The result may be empty.
func SanitizeName(s string) string {
	name := strings.ToLower(strings.TrimSpace(s))
	name = nonIdentifierRun.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")
	if name == "" {
		return ""
	}
	if name[0] >= '0' && name[0] <= '9' {
		name = "v_" + name
	}
	if len(name) > maxSuggestedLength {
		name = strings.TrimRight(name[:maxSuggestedLength], "_")
	}
	return name
}

// responseText joins the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}
	cand := resp.Candidates[0]
	if cand.Content == nil || len(cand.Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned an empty candidate (finish reason %s)", cand.FinishReason)
	}
	var b strings.Builder
	for _, part := range cand.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("gemini response has no text part")
	}
	return b.String(), nil
}

// extractTextBetweenTags returns the trimmed text between the first startTag
// and the following endTag.
func extractTextBetweenTags(resp *genai.GenerateContentResponse, startTag, endTag string) (string, error) {
	text, err := responseText(resp)
	if err != nil {
		return "", err
	}
	_, rest, ok := strings.Cut(text, startTag)
	if !ok {
		return "", fmt.Errorf("tag %s not found in response", startTag)
	}
	inner, _, ok := strings.Cut(rest, endTag)
	if !ok {
		return "", fmt.Errorf("tag %s not found in response", endTag)
	}
	return strings.TrimSpace(inner), nil
}
