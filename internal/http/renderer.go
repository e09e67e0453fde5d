package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
)

// Template names rendered by the handlers.
const (
	tmplPage      = "layout"
	tmplStatus    = "status"
	tmplExpiry    = "expiry"
	tmplControls  = "controls"
	tmplNotice    = "notice"
	tmplRefreshed = "refreshed"
)

// TemplateRenderer renders HTML templates for UI responses.
type TemplateRenderer struct {
	fsys    fs.FS
	devMode bool
	logger  *slog.Logger

	mu sync.Mutex
	t  *template.Template
}

// TemplateRendererConfig holds configuration for creating a TemplateRenderer.
type TemplateRendererConfig struct {
	TemplateFS fs.FS        // Filesystem containing *.tmpl (required)
	DevMode    bool         // Re-parse templates on every render
	Logger     *slog.Logger // Logger for template errors (optional)
}

// NewTemplateRenderer parses the templates once to fail fast on syntax errors.
func NewTemplateRenderer(cfg TemplateRendererConfig) (*TemplateRenderer, error) {
	if cfg.TemplateFS == nil {
		return nil, errors.New("TemplateFS is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	r := &TemplateRenderer{fsys: cfg.TemplateFS, devMode: cfg.DevMode, logger: logger}
	t, err := r.parse()
	if err != nil {
		logger.Error("template parsing failed",
			slog.Any("error", err),
			slog.String("phase", "initialization"),
		)
		return nil, err
	}
	r.t = t
	return r, nil
}

func (r *TemplateRenderer) parse() (*template.Template, error) {
	return template.New("root").Funcs(templateFuncs()).ParseFS(r.fsys, "*.tmpl", "partials/*.tmpl")
}

func (r *TemplateRenderer) templates() (*template.Template, error) {
	if !r.devMode {
		return r.t, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	t, err := r.parse()
	if err != nil {
		return nil, err
	}
	r.t = t
	return t, nil
}

// Render executes the named template into w with the given status code.
func (r *TemplateRenderer) Render(w http.ResponseWriter, status int, name string, data any) error {
	t, err := r.templates()
	if err != nil {
		r.logTemplateError(name, err)
		return err
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		r.logTemplateError(name, err)
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		r.logger.Error("failed to write rendered template",
			slog.String("template", name),
			slog.Any("error", err),
		)
		return err
	}
	return nil
}

func (r *TemplateRenderer) logTemplateError(name string, err error) {
	r.logger.Error("template execution failed",
		slog.String("template", name),
		slog.Any("error", err),
	)
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		// toJSON renders v for a <script type="application/json"> block.
		"toJSON": func(v any) (template.JS, error) {
			b, err := json.Marshal(v)
			if err != nil {
				return "", err
			}
			return template.JS(b), nil
		},
	}
}
