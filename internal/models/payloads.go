package models

// These structs define the JSON payloads exchanged between the workflow
// and the worker functions, and the artifacts written to the result bucket.

// Summary modes accepted by the summarizer stage. An unrecognized mode
// falls back to ModeDefault.
const (
	ModeDefault           = "default"
	ModeExecutive         = "executive"
	ModeBullets           = "bullets"
	ModeDetailed          = "detailed"
	ModeStructuredExtract = "structured-extract"
)

// HTTP-style status codes reused as result codes across stage boundaries.
const (
	StatusOK            = 200
	StatusInvalidInput  = 400
	StatusNotFound      = 404
	StatusUnprocessable = 422
	StatusInternal      = 500
)

// SourceObjectRef identifies one input document in the input bucket.
// Immutable once read from a notification.
type SourceObjectRef struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

// FlowInput is the argument passed to one flow execution.
type FlowInput struct {
	SourceObjectKey string `json:"source_object_key"`
	ProjectName     string `json:"project_name"`
	InputBucket     string `json:"input_bucket"`
	DestObjectKey   string `json:"dest_object_key"`
}

// DeriveDestObjectKey returns the destination key for a source object.
// The derivation is deterministic so that re-processing the same source
// object always targets the same destination (last write wins).
func DeriveDestObjectKey(sourceObjectKey string) string {
	return sourceObjectKey + ".json"
}

// NewFlowInput builds the flow argument for one source object.
func NewFlowInput(ref SourceObjectRef, projectName string) FlowInput {
	return FlowInput{
		SourceObjectKey: ref.Key,
		ProjectName:     projectName,
		InputBucket:     ref.Bucket,
		DestObjectKey:   DeriveDestObjectKey(ref.Key),
	}
}

// ExtractorRequest is the input for the text-extractor function, shaped
// the way the workflow engine wraps node arguments.
type ExtractorRequest struct {
	Node ExtractorNode `json:"node"`
}

type ExtractorNode struct {
	Inputs []ExtractorInput `json:"inputs"`
}

type ExtractorInput struct {
	Value ExtractArgs `json:"value"`
}

// ExtractArgs are the actual extraction arguments carried inside the
// node envelope.
type ExtractArgs struct {
	SourceObjectKey string `json:"source_object_key"`
	InputBucket     string `json:"input_bucket"`
}

// Args unwraps the node envelope and validates the required fields.
func (r *ExtractorRequest) Args() (ExtractArgs, error) {
	if len(r.Node.Inputs) == 0 {
		return ExtractArgs{}, NewStageError(StatusInvalidInput, "request is missing node inputs")
	}
	args := r.Node.Inputs[0].Value
	if args.SourceObjectKey == "" || args.InputBucket == "" {
		return ExtractArgs{}, NewStageError(StatusInvalidInput, "source_object_key and input_bucket are required")
	}
	return args, nil
}

// ExtractorResponse is the output of the text-extractor function.
type ExtractorResponse struct {
	StatusCode int           `json:"statusCode"`
	Body       ExtractorBody `json:"body"`
}

type ExtractorBody struct {
	Message   string `json:"message,omitempty"`
	InputPDF  string `json:"input_pdf,omitempty"`
	ObjectKey string `json:"object_key,omitempty"`
	PDFText   string `json:"pdf_text,omitempty"`
	Error     string `json:"error,omitempty"`
}

// SummarizerRequest is the direct input for the summarizer function.
type SummarizerRequest struct {
	Content string `json:"content"`
	Mode    string `json:"mode"`
}

// SummarizerResponse is the output of the summarizer function.
type SummarizerResponse struct {
	StatusCode int            `json:"statusCode"`
	Body       SummarizerBody `json:"body"`
}

type SummarizerBody struct {
	Summary     string `json:"summary,omitempty"`
	SummaryType string `json:"summary_type,omitempty"`
	Error       string `json:"error,omitempty"`
}

// EnrichmentResult is the terminal artifact written to the result
// bucket at the derived destination key.
type EnrichmentResult struct {
	Summary     string `json:"summary"`
	SummaryType string `json:"summary_type"`
}

// FlowRunnerRequest is the input for the flow-runner function. The
// enrichment mode is flow configuration, not part of the per-document
// input.
type FlowRunnerRequest struct {
	Input FlowInput `json:"input"`
}

// FlowRunnerResponse reports the terminal state of one flow execution.
type FlowRunnerResponse struct {
	ExecutionID string `json:"execution_id"`
	Status      string `json:"status"`
	Error       string `json:"error,omitempty"`
}
