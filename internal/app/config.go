package app

import "errors"

// Config holds everything an App instance needs to run one invocation: the
// attribute the demo graph's OutputFormatReader pulls, an optional HCL
// resource manifest backing the config-file fetch resolver, and an optional
// one-shot URI to fetch through the dispatcher after the graph is built.
type Config struct {
	OutputFormat string

	ResourcesManifest string // path to an HCL resource manifest; "" disables file-backed fetches
	FetchURI          string // "" means skip the fetch demonstration entirely

	LogFormat string
	LogLevel  string
}

// NewConfig validates cfg and returns it, ready for App construction.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.OutputFormat == "" {
		return nil, errors.New("OutputFormat is a required configuration field and cannot be empty")
	}
	return &cfg, nil
}
