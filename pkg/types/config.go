package types

import "time"

// WindowingConfig controls how long documents are split into overlapping
// windows before per-window extraction.
type WindowingConfig struct {
	// Size is the window length in characters (default 1000).
	Size int `json:"size" yaml:"size"`

	// Overlap is how many characters consecutive windows share (default 100).
	// Must be non-negative and strictly less than Size.
	Overlap int `json:"overlap" yaml:"overlap"`
}

// BackendConfig holds settings for the text-generation backend.
type BackendConfig struct {
	// BaseURL is the API root of an OpenAI-compatible service
	// (e.g. "https://api.openai.com/v1").
	BaseURL string `json:"base_url" yaml:"base_url"`

	// APIKey authenticates requests. Usually loaded from .secrets/.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Model is the default model identifier.
	Model string `json:"model" yaml:"model"`

	// Temperature is the default sampling temperature (default 0.2).
	Temperature float64 `json:"temperature" yaml:"temperature"`

	// MaxTokens caps the response size; 0 leaves the cap unset.
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`

	// Timeout is the HTTP request timeout (default 2m).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// AnalysisConfig holds settings for the analysis pipeline.
type AnalysisConfig struct {
	Windowing WindowingConfig `json:"windowing" yaml:"windowing"`

	// WholeDocThreshold is the character count under which a document is
	// analyzed in one call instead of windowed (default 15000).
	WholeDocThreshold int `json:"whole_doc_threshold" yaml:"whole_doc_threshold"`

	// MaxListItems caps merged requirement-style lists (default 12).
	MaxListItems int `json:"max_list_items" yaml:"max_list_items"`

	// MaxDocumentSpecs caps the merged required-documents list (default 20).
	MaxDocumentSpecs int `json:"max_document_specs" yaml:"max_document_specs"`

	// Concurrency bounds parallel window calls; 1 (the default) keeps the
	// calls sequential, which plays best with backend rate limits.
	Concurrency int `json:"concurrency" yaml:"concurrency"`

	// MaxAttempts is the per-call attempt budget for transient backend
	// failures (default 3).
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts"`

	// Finalize enables the optional cleanup pass that asks the backend to
	// tidy the merged record.
	Finalize bool `json:"finalize" yaml:"finalize"`

	// FullTextModel overrides the backend model for single-shot
	// whole-document analysis. Empty uses the default model.
	FullTextModel string `json:"full_text_model,omitempty" yaml:"full_text_model,omitempty"`
}

// KnowledgeBaseConfig locates the static capability knowledge base.
type KnowledgeBaseConfig struct {
	// Path is the JSON knowledge-base file. A missing or malformed file
	// degrades to the unaugmented prompt; it never fails the pipeline.
	Path string `json:"path" yaml:"path"`
}

// PublishConfig holds settings for the workspace publisher.
type PublishConfig struct {
	// BaseURL is the workspace API root (default "https://api.notion.com").
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Token authenticates workspace requests. Usually loaded from .secrets/.
	Token string `json:"token,omitempty" yaml:"token,omitempty"`

	// DatabaseID is the workspace database pages are created under.
	DatabaseID string `json:"database_id" yaml:"database_id"`

	// StateDir holds the sqlite queue/history database (default "state").
	StateDir string `json:"state_dir" yaml:"state_dir"`

	// MaxAttempts is the per-job publish attempt budget (default 3).
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts"`

	// PollInterval is how often the publish worker looks for pending jobs
	// (default 2s).
	PollInterval time.Duration `json:"poll_interval" yaml:"poll_interval"`
}

// ServerConfig holds settings for the HTTP surface.
type ServerConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `json:"addr" yaml:"addr"`

	// UploadDir receives uploaded files before extraction (default "uploads").
	UploadDir string `json:"upload_dir" yaml:"upload_dir"`

	// ResultsDir holds analysis result JSON files (default "results").
	ResultsDir string `json:"results_dir" yaml:"results_dir"`

	// MaxUploadBytes caps upload size; 0 means unlimited.
	MaxUploadBytes int64 `json:"max_upload_bytes" yaml:"max_upload_bytes"`
}

// LoggingConfig controls the process logger.
type LoggingConfig struct {
	// Level is debug, info, warn, or error (default info).
	Level string `json:"level" yaml:"level"`

	// JSON selects machine-readable output instead of console encoding.
	JSON bool `json:"json" yaml:"json"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Backend       BackendConfig       `json:"backend" yaml:"backend"`
	Analysis      AnalysisConfig      `json:"analysis" yaml:"analysis"`
	KnowledgeBase KnowledgeBaseConfig `json:"knowledge_base" yaml:"knowledge_base"`
	Publish       PublishConfig       `json:"publish" yaml:"publish"`
	Server        ServerConfig        `json:"server" yaml:"server"`
	Logging       LoggingConfig       `json:"logging" yaml:"logging"`
}
