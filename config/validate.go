package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fwojciec/locrag"
)

// Validate checks the configuration and reports every problem at once as a
// single ECONFIG error.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Gemini.APIKey) == "" {
		errs = append(errs, errors.New("GEMINI_API_KEY is not set"))
	}
	if c.Gemini.Model == "" {
		errs = append(errs, errors.New("gemini.model is required"))
	}

	switch c.Registry.Type {
	case RegistryFile, RegistrySQLite:
	default:
		errs = append(errs, fmt.Errorf("registry.type %q is invalid (must be %s or %s)", c.Registry.Type, RegistryFile, RegistrySQLite))
	}

	if c.Upload.PollInterval <= 0 {
		errs = append(errs, errors.New("upload.poll_interval must be positive"))
	}
	if c.Upload.Timeout < c.Upload.PollInterval {
		errs = append(errs, errors.New("upload.timeout must not be shorter than upload.poll_interval"))
	}
	if c.Upload.MaxBytes <= 0 {
		errs = append(errs, errors.New("upload.max_bytes must be positive"))
	}

	if c.Retrieval.TopK < 0 {
		errs = append(errs, errors.New("retrieval.top_k must not be negative"))
	}
	if c.Answer.Temperature < 0 || c.Answer.Temperature > 2 {
		errs = append(errs, errors.New("answer.temperature must be between 0 and 2"))
	}
	if c.Answer.MaxContextTokens < 0 {
		errs = append(errs, errors.New("answer.max_context_tokens must not be negative"))
	}

	if c.Fetch.Timeout <= 0 || c.Fetch.RenderTimeout <= 0 {
		errs = append(errs, errors.New("fetch.timeout and fetch.render_timeout must be positive"))
	}
	if c.Fetch.MaxPageBytes <= 0 {
		errs = append(errs, errors.New("fetch.max_page_bytes must be positive"))
	}
	if c.Fetch.RequestsPerSecond <= 0 {
		errs = append(errs, errors.New("fetch.requests_per_second must be positive"))
	}
	if c.Fetch.Retries < 0 {
		errs = append(errs, errors.New("fetch.retries must not be negative"))
	}

	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Server.SessionTTL <= 0 {
		errs = append(errs, errors.New("server.session_ttl must be positive"))
	}
	if !strings.HasPrefix(c.Server.MetricsPath, "/") {
		errs = append(errs, fmt.Errorf("server.metrics_path %q must start with /", c.Server.MetricsPath))
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q is invalid", c.Log.Level))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q is invalid (must be text or json)", c.Log.Format))
	}

	if len(errs) == 0 {
		return nil
	}
	err := errors.Join(errs...)
	return &locrag.Error{Code: locrag.ECONFIG, Op: "validate config", Message: strings.ReplaceAll(err.Error(), "\n", "; "), Err: err}
}
