package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"mspro-labs/bean-atlas/internal/models"
)

// ErrNoExtraction signals that the model could not produce a structured
// read of the page. It is a valid terminal state, not a fault.
var ErrNoExtraction = errors.New("ai: no extraction available")

// Client wraps the GenAI client with the two capabilities the pipeline
// needs: structured page extraction and note embeddings.
type Client struct {
	genaiClient *genai.Client
	extractor   *genai.GenerativeModel
	embedding   *genai.EmbeddingModel
}

// NewClient creates a connected AI client.
func NewClient(ctx context.Context) (*Client, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	c, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create AI client: %w", err)
	}

	extractor := c.GenerativeModel("gemini-1.5-flash")
	extractor.ResponseMIMEType = "application/json"

	return &Client{
		genaiClient: c,
		extractor:   extractor,
		embedding:   c.EmbeddingModel("text-embedding-004"),
	}, nil
}

// Close terminates the connection.
func (c *Client) Close() {
	if c.genaiClient != nil {
		c.genaiClient.Close()
	}
}

const extractionPrompt = `You are reading the HTML of a specialty coffee product page (%s).
Return a JSON object with these keys, omitting any key the page does not clearly state:
{"country": "", "region": "", "producer": "", "process": "", "protocol": "", "variety": "", "notes": []}
"protocol" means a certification or program such as Organic or Fairtrade.
"notes" is the list of tasting notes, one note per entry.
Do not guess; if nothing can be extracted return {}.

HTML:
%s`

// Extract asks the model for a structured read of a product page. It
// returns ErrNoExtraction when the model produced nothing usable, so a
// miss is always distinguishable from a populated result.
func (c *Client) Extract(ctx context.Context, url, html string) (*models.ExtractedDetails, error) {
	res, err := c.extractor.GenerateContent(ctx, genai.Text(fmt.Sprintf(extractionPrompt, url, html)))
	if err != nil {
		return nil, fmt.Errorf("extraction call for %s: %w", url, err)
	}

	raw := responseText(res)
	if raw == "" {
		return nil, ErrNoExtraction
	}
	var details models.ExtractedDetails
	if err := json.Unmarshal([]byte(raw), &details); err != nil {
		return nil, fmt.Errorf("malformed extraction for %s: %w", url, err)
	}
	if details.Empty() {
		return nil, ErrNoExtraction
	}
	return &details, nil
}

func responseText(res *genai.GenerateContentResponse) string {
	if res == nil {
		return ""
	}
	var sb strings.Builder
	for _, cand := range res.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
	}
	return strings.TrimSpace(sb.String())
}
