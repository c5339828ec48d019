package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/tenderworks/documentsummaryflow/internal/models"
	"github.com/tenderworks/documentsummaryflow/internal/services"
)

var (
	summarizerInstance *services.SummarizerFunction
	extractorInstance  *services.ExtractorFunction
	once               sync.Once
	initErr            error
)

func init() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	functions.HTTP("HandleSummarize", handleSummarize)
}

// main is required by the Go Functions Framework.
func main() {}

// summarizerPayload accepts both invocation shapes: direct text
// ({content, mode}) and the PDF-chained variant carrying the extractor's
// node envelope plus a mode.
type summarizerPayload struct {
	Content string               `json:"content"`
	Mode    string               `json:"mode"`
	Node    models.ExtractorNode `json:"node"`
}

func handleSummarize(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		ctx := context.Background()
		summarizerInstance, initErr = services.NewSummarizer(ctx)
		if initErr == nil {
			extractorInstance, initErr = services.NewExtractor(ctx)
		}
	})
	if initErr != nil {
		slog.Error("Summarizer initialization failed", "error", initErr)
		http.Error(w, "Internal Server Error: failed to initialize service", http.StatusInternalServerError)
		return
	}

	var payload summarizerPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		slog.Error("Could not decode request body", "error", err)
		http.Error(w, "Bad Request: could not parse JSON", http.StatusBadRequest)
		return
	}

	content := payload.Content
	if content == "" && len(payload.Node.Inputs) > 0 {
		// Chained variant: extract first, then summarize.
		extractResp := extractorInstance.Process(r.Context(), &models.ExtractorRequest{Node: payload.Node})
		if extractResp.StatusCode != models.StatusOK {
			writeJSON(w, extractResp.StatusCode, &models.SummarizerResponse{
				StatusCode: extractResp.StatusCode,
				Body:       models.SummarizerBody{Error: extractResp.Body.Error},
			})
			return
		}
		content = extractResp.Body.PDFText
	}

	resp := summarizerInstance.Process(r.Context(), &models.SummarizerRequest{Content: content, Mode: payload.Mode})
	writeJSON(w, resp.StatusCode, resp)
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to write response", "error", err)
	}
}
