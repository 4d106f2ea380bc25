package contract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Format names a contract encoding.
type Format string

const (
	FormatAuto    Format = ""
	FormatXML     Format = "xml"
	FormatYAML    Format = "yaml"
	FormatJSON    Format = "json"
	FormatOpenAPI Format = "openapi"
)

// ParseFormat accepts the names used on the command line.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatAuto, FormatXML, FormatYAML, FormatJSON, FormatOpenAPI:
		return f, nil
	case "yml":
		return FormatYAML, nil
	case "swagger", "oas":
		return FormatOpenAPI, nil
	default:
		return "", fmt.Errorf("unknown contract format %q (allowed: xml, yaml, json, openapi)", s)
	}
}

// Settings configures loading and parsing.
type Settings struct {
	Format Format
	// IncludeInternal keeps spectrainternal requests, which are dropped by
	// default.
	IncludeInternal bool
	// PruneUnusedTypes drops types no request can reach.
	PruneUnusedTypes bool

	HTTPTimeout time.Duration
	MaxRetries  int
	BackoffBase time.Duration

	Logger *slog.Logger
}

// DefaultSettings returns recommended defaults.
func DefaultSettings() Settings {
	return Settings{
		HTTPTimeout: 10 * time.Second,
		MaxRetries:  3,
		BackoffBase: 200 * time.Millisecond,
	}
}

// Option mutates Settings.
type Option func(*Settings)

func WithFormat(f Format) Option { return func(s *Settings) { s.Format = f } }
func WithInternalRequests(include bool) Option { return func(s *Settings) { s.IncludeInternal = include } }
func WithPruneUnusedTypes(prune bool) Option { return func(s *Settings) { s.PruneUnusedTypes = prune } }
func WithHTTPTimeout(d time.Duration) Option { return func(s *Settings) { s.HTTPTimeout = d } }
func WithMaxRetries(n int) Option { return func(s *Settings) { s.MaxRetries = n } }
func WithBackoffBase(d time.Duration) Option { return func(s *Settings) { s.BackoffBase = d } }
func WithLogger(l *slog.Logger) Option { return func(s *Settings) { s.Logger = l } }

func resolveSettings(opts []Option) Settings {
	settings := DefaultSettings()
	for _, opt := range opts {
		opt(&settings)
	}
	if settings.Logger == nil {
		settings.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return settings
}

// Load reads a contract from a local path or an http/https URL and parses
// it. The format comes from WithFormat, then the file extension, then the
// content itself.
func Load(ctx context.Context, input string, opts ...Option) (*Spec, error) {
	if strings.TrimSpace(input) == "" {
		return nil, &Error{Code: IOError, Message: "contract: input is empty"}
	}
	settings := resolveSettings(opts)
	raw, location, err := readSource(ctx, input, settings)
	if err != nil {
		return nil, err
	}

	if settings.Format == FormatAuto {
		settings.Format = formatFromExtension(location)
	}
	settings.Logger.Debug("contract loaded", "location", location, "bytes", len(raw), "format", string(settings.Format))

	spec, err := parseBytes(ctx, raw, settings)
	if err != nil {
		return nil, withLocation(err, location)
	}
	return spec, nil
}

// readSource reads input from an http/https URL or a local path. The
// returned location is the URL or the absolute path.
func readSource(ctx context.Context, input string, settings Settings) ([]byte, string, error) {
	u, uerr := url.Parse(input)
	if uerr == nil && u.Scheme != "" && u.Host != "" {
		scheme := strings.ToLower(u.Scheme)
		if scheme != "http" && scheme != "https" {
			return nil, "", &Error{Code: IOError, Message: fmt.Sprintf("contract: unsupported URL scheme %q (only http/https allowed)", scheme), Location: input}
		}
		raw, err := fetchWithRetry(ctx, input, settings)
		if err != nil {
			return nil, "", &Error{Code: IOError, Message: fmt.Sprintf("fetch %s: %v", input, err), Location: input, Cause: err}
		}
		return raw, input, nil
	}
	location, err := filepath.Abs(input)
	if err != nil {
		return nil, "", &Error{Code: IOError, Message: fmt.Sprintf("resolve path: %v", err), Location: input, Cause: err}
	}
	raw, err := os.ReadFile(location)
	if err != nil {
		return nil, "", &Error{Code: IOError, Message: fmt.Sprintf("read file: %v", err), Location: location, Cause: err}
	}
	return raw, location, nil
}

// Parse decodes a contract from r. A read failure is an IOError; anything
// structurally wrong is a ParseError. No spec is returned on failure.
func Parse(r io.Reader, opts ...Option) (*Spec, error) {
	settings := resolveSettings(opts)
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, &Error{Code: IOError, Message: fmt.Sprintf("read contract: %v", err), Cause: err}
	}
	return parseBytes(context.Background(), raw, settings)
}

func parseBytes(ctx context.Context, raw []byte, settings Settings) (*Spec, error) {
	format := settings.Format
	if format == FormatAuto {
		format = sniffFormat(raw)
	}

	var (
		d   *draft
		err error
	)
	switch format {
	case FormatXML:
		d, err = decodeXML(raw)
	case FormatYAML, FormatJSON:
		d, err = decodeDocument(raw)
	case FormatOpenAPI:
		d, err = decodeOpenAPI(ctx, raw, settings.Logger)
	default:
		return nil, parseErrorf("", "unsupported contract format %q", format)
	}
	if err != nil {
		return nil, err
	}

	if !settings.IncludeInternal {
		d.dropInternal(settings.Logger)
	}
	if settings.PruneUnusedTypes {
		d.pruneTypes(settings.Logger)
	}
	return NewSpec(d.requests, d.types, d.typeMaps)
}

// draft is the decoders' shared output before validation.
type draft struct {
	requests []Request
	types    []Type
	typeMaps []TypeMapElement
}

func formatFromExtension(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xml":
		return FormatXML
	default:
		return FormatAuto
	}
}

// sniffFormat tells XML from YAML/JSON and spots OpenAPI/Swagger documents.
func sniffFormat(raw []byte) Format {
	trimmed := bytes.TrimSpace(bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf")))
	if len(trimmed) > 0 && trimmed[0] == '<' {
		return FormatXML
	}
	var head struct {
		OpenAPI string `yaml:"openapi"`
		Swagger string `yaml:"swagger"`
	}
	if err := yaml.Unmarshal(trimmed, &head); err == nil && (head.OpenAPI != "" || head.Swagger != "") {
		return FormatOpenAPI
	}
	if len(trimmed) > 0 && trimmed[0] == '{' {
		return FormatJSON
	}
	return FormatYAML
}

func fetchWithRetry(ctx context.Context, rawURL string, settings Settings) ([]byte, error) {
	client := &http.Client{Timeout: settings.HTTPTimeout}
	var lastErr error
	backoff := settings.BackoffBase
	if backoff <= 0 {
		backoff = 200 * time.Millisecond
	}
	attempts := settings.MaxRetries
	if attempts <= 0 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		body, retry, err := fetchOnce(ctx, client, rawURL)
		if err == nil {
			return body, nil
		}
		if !retry {
			return nil, err
		}
		lastErr = err
		settings.Logger.Debug("retrying contract fetch", "url", rawURL, "attempt", i+1, "err", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	if lastErr == nil {
		lastErr = errors.New("fetch failed")
	}
	return nil, lastErr
}

// fetchOnce closes the response body on every path.
func fetchOnce(ctx context.Context, client *http.Client, rawURL string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, false, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 300 {
		body, err := io.ReadAll(resp.Body)
		return body, false, err
	}
	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return nil, true, fmt.Errorf("transient http error %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return nil, false, fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
}
