package gcp

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"github.com/tenderworks/documentsummaryflow/internal/models"
)

// --- Summarizer prompt templates, selected by mode ---
const (
	SummaryPromptDefault   = "Summarize the following text concisely:"
	SummaryPromptExecutive = "Create an executive summary of the following text:"
	SummaryPromptBullets   = "Summarize the following text as bullet points highlighting key takeaways:"
	SummaryPromptDetailed  = "Create a detailed summary of the following text preserving key information and insights:"
)

const SummarizerSystemPrompt = "You are a document summarization assistant. You produce faithful, well-structured summaries of the text you are given. Never add information that is not present in the source text."

// --- Tender extraction prompts ---
const TenderExtractSystemPrompt = "You are a procurement document analyst. You extract structured data from tender documents written in any language. You must output your response as a single valid JSON object and nothing else."
const TenderExtractPrompt = `The following text was extracted from a tender (public procurement) document. The document may not be in English.

Extract the key elements of the tender into a JSON object with exactly these keys:
- "tender_title": the title or subject of the tender.
- "issuing_authority": the organization issuing the tender.
- "reference_number": the tender's reference or file number, if present.
- "submission_deadline": the deadline for submitting bids, as written in the document.
- "estimated_value": the estimated contract value or budget, including currency, if present.
- "eligibility_requirements": an array of strings, one per stated requirement for bidders.
- "scope_of_work": a short description of the goods, works, or services being procured.

Use null for any element that is not present in the document. Keep extracted values in the document's original language. The output MUST be a single valid JSON object with no text before or after it.

Document text:`

// PromptForMode returns the instruction template for a summary mode.
// An unrecognized mode falls back to the default template.
func PromptForMode(mode string) string {
	switch mode {
	case models.ModeExecutive:
		return SummaryPromptExecutive
	case models.ModeBullets:
		return SummaryPromptBullets
	case models.ModeDetailed:
		return SummaryPromptDetailed
	case models.ModeStructuredExtract:
		return TenderExtractPrompt
	default:
		return SummaryPromptDefault
	}
}

// maxOutputTokens bounds the response length budget of a single
// inference call.
const maxOutputTokens int32 = 4096

// VertexClient holds the pre-configured generative models for the
// pipeline: a free-text summarizer and a JSON-constrained tender
// extractor.
type VertexClient struct {
	SummaryModel *genai.GenerativeModel
	TenderModel  *genai.GenerativeModel
	baseClient   *genai.Client
}

// NewVertexClient creates a new client holding both models.
func NewVertexClient(ctx context.Context, projectID, region, modelID string) (*VertexClient, error) {
	if projectID == "" || region == "" {
		return nil, fmt.Errorf("NewVertexClient: projectID and region cannot be empty")
	}
	if modelID == "" {
		modelID = "gemini-1.5-pro"
	}

	baseClient, err := genai.NewClient(ctx, projectID, region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	summaryModel := baseClient.GenerativeModel(modelID)
	summaryModel.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(SummarizerSystemPrompt)},
	}
	summaryModel.GenerationConfig = genai.GenerationConfig{
		MaxOutputTokens: genai.Ptr[int32](maxOutputTokens),
	}

	tenderModel := baseClient.GenerativeModel(modelID)
	tenderModel.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(TenderExtractSystemPrompt)},
	}
	tenderModel.GenerationConfig = genai.GenerationConfig{
		// Force JSON output for the structured-extract mode.
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](0.0),
		MaxOutputTokens:  genai.Ptr[int32](maxOutputTokens),
	}

	return &VertexClient{
		SummaryModel: summaryModel,
		TenderModel:  tenderModel,
		baseClient:   baseClient,
	}, nil
}

// GenerateText issues a single inference call for the given mode and
// returns the response's primary text content. It performs no retries
// and no caching; transport and API errors are surfaced verbatim.
func (c *VertexClient) GenerateText(ctx context.Context, mode, prompt string) (string, error) {
	model := c.SummaryModel
	if mode == models.ModeStructuredExtract {
		model = c.TenderModel
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content from gemini: %w", err)
	}

	text := extractText(resp)
	if text == "" {
		return "", models.NewStageError(models.StatusInternal, "gemini response contained no text content")
	}
	return text, nil
}

func (c *VertexClient) Close() error {
	if c.baseClient != nil {
		return c.baseClient.Close()
	}
	return nil
}

// extractText robustly pulls the text parts out of a model response and
// strips any code fences the model wrapped around them.
func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return ""
	}

	var builder strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			builder.WriteString(string(txt))
		}
	}

	content := strings.TrimSpace(builder.String())
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
