// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests. PubChem
	// asks heavy users to include a contact address here.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// FetchConfig holds settings for the record retrieval stage.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// RequestDelay is the pause between consecutive PubChem requests
	// (default 1s; PubChem allows at most 5 requests per second).
	RequestDelay time.Duration `json:"request_delay" yaml:"request_delay"`

	// DataDir is the base data directory (contains records/, metadata/).
	DataDir string `json:"data_dir" yaml:"data_dir"`
}

// ExtractionConfig holds settings for the property extraction stage.
type ExtractionConfig struct {
	// DataDir is the base data directory (contains records/, extracted/).
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// Properties names the target properties to extract. Empty means all
	// known properties.
	Properties []string `json:"properties,omitempty" yaml:"properties,omitempty"`

	// AliasFile optionally points to a YAML file overriding or extending
	// the built-in heading alias tables. The alias tables are domain
	// data, versioned independently of the engine.
	AliasFile string `json:"alias_file,omitempty" yaml:"alias_file,omitempty"`

	// MaxDepth bounds section-tree traversal. Zero uses the default.
	MaxDepth int `json:"max_depth,omitempty" yaml:"max_depth,omitempty"`
}

// StoreConfig holds settings for the property store stage.
type StoreConfig struct {
	// DataDir is the base data directory (contains extracted/, metadata/, index/).
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// ReportFormat selects the report output format.
type ReportFormat string

const (
	ReportCSV   ReportFormat = "csv"
	ReportJSON  ReportFormat = "json"
	ReportTable ReportFormat = "table"
)

// ReportConfig holds settings for the report stage.
type ReportConfig struct {
	// DataDir is the base data directory (contains extracted/, metadata/, reports/).
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// Format selects the output format: csv, json, or table.
	Format ReportFormat `json:"format" yaml:"format"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Fetch      FetchConfig      `json:"fetch" yaml:"fetch"`
	Extraction ExtractionConfig `json:"extraction" yaml:"extraction"`
	Store      StoreConfig      `json:"store" yaml:"store"`
	Report     ReportConfig     `json:"report" yaml:"report"`
}
