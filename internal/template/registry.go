package template

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"gopkg.in/yaml.v3"
)

// Registry owns the in-memory template set, keyed by lowercased issuer name.
// The set is an immutable snapshot swapped atomically on Reload, so Lookup
// and iteration are lock-free and safe under a concurrent Reload.
type Registry struct {
	dir    string
	logger *slog.Logger

	snap     atomic.Pointer[snapshot]
	reloadMu sync.Mutex
}

type snapshot struct {
	byIssuer map[string]*Template
	issuers  []string // sorted lowercased keys; pins deterministic iteration
}

// NewRegistry loads every template document in dir. A missing directory is
// not fatal: the registry starts empty and a later Reload can pick templates
// up once the directory exists.
func NewRegistry(dir string, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{dir: dir, logger: logger}
	r.snap.Store(r.load())
	return r
}

// Reload rebuilds the template set from disk and swaps it in wholesale.
// Concurrent readers keep seeing the previous snapshot until the swap.
func (r *Registry) Reload() {
	r.reloadMu.Lock()
	defer r.reloadMu.Unlock()
	r.snap.Store(r.load())
}

func (r *Registry) load() *snapshot {
	snap := &snapshot{byIssuer: make(map[string]*Template)}

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			r.logger.Warn("registry.load.dir_missing", "dir", r.dir)
		} else {
			r.logger.Warn("registry.load.dir_error", "dir", r.dir, "error", err)
		}
		return snap
	}

	for _, entry := range entries {
		if entry.IsDir() || !isTemplateFile(entry.Name()) {
			continue
		}
		path := filepath.Join(r.dir, entry.Name())
		tpl, err := loadFile(path)
		if err != nil {
			r.logger.Warn("registry.load.skipped", "path", path, "error", err)
			continue
		}
		if tpl == nil {
			// No issuer key: not a template document for us, skip quietly.
			r.logger.Debug("registry.load.no_issuer", "path", path)
			continue
		}
		key := strings.ToLower(tpl.Issuer)
		if prev, ok := snap.byIssuer[key]; ok {
			r.logger.Warn("registry.load.duplicate_issuer", "issuer", prev.Issuer, "path", path)
			continue
		}
		snap.byIssuer[key] = tpl
	}

	snap.issuers = make([]string, 0, len(snap.byIssuer))
	for key := range snap.byIssuer {
		snap.issuers = append(snap.issuers, key)
	}
	sort.Strings(snap.issuers)

	r.logger.Info("registry.load.ok", "dir", r.dir, "templates", len(snap.issuers))
	return snap
}

// loadFile parses and validates one document. A document without an issuer
// key returns (nil, nil); a document that fails to parse, validate, or
// compile returns an error so the caller can log and skip it.
func loadFile(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	var tpl Template
	if err := yaml.Unmarshal(data, &tpl); err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}
	if tpl.Issuer == "" {
		return nil, nil
	}
	if err := tpl.Validate(); err != nil {
		return nil, err
	}
	if err := tpl.Compile(); err != nil {
		return nil, fmt.Errorf("compile template: %w", err)
	}
	return &tpl, nil
}

func isTemplateFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

// Lookup returns the template registered under a lowercased issuer key.
func (r *Registry) Lookup(issuerKey string) (*Template, bool) {
	tpl, ok := r.snap.Load().byIssuer[issuerKey]
	return tpl, ok
}

// Issuers returns the sorted lowercased issuer keys of the current snapshot.
func (r *Registry) Issuers() []string {
	snap := r.snap.Load()
	out := make([]string, len(snap.issuers))
	copy(out, snap.issuers)
	return out
}

// Templates returns the current snapshot's templates in issuer-sorted order.
func (r *Registry) Templates() []*Template {
	snap := r.snap.Load()
	out := make([]*Template, 0, len(snap.issuers))
	for _, key := range snap.issuers {
		out = append(out, snap.byIssuer[key])
	}
	return out
}

// Len reports how many templates the current snapshot holds.
func (r *Registry) Len() int {
	return len(r.snap.Load().issuers)
}

// Dir returns the directory the registry reads from.
func (r *Registry) Dir() string {
	return r.dir
}

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

// Save validates tpl and writes it into the registry directory as
// <issuer-slug>.yaml, creating the directory if needed. The in-memory set is
// unchanged until the next Reload.
func (r *Registry) Save(tpl *Template) (string, error) {
	if err := tpl.Validate(); err != nil {
		return "", err
	}
	if err := tpl.Compile(); err != nil {
		return "", fmt.Errorf("validate template: %w", err)
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", fmt.Errorf("create template dir: %w", err)
	}
	data, err := yaml.Marshal(tpl)
	if err != nil {
		return "", fmt.Errorf("encode template: %w", err)
	}
	slug := strings.Trim(slugRe.ReplaceAllString(strings.ToLower(tpl.Issuer), "_"), "_")
	if slug == "" {
		slug = "template"
	}
	path := filepath.Join(r.dir, slug+".yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write template: %w", err)
	}
	r.logger.Info("registry.save.ok", "issuer", tpl.Issuer, "path", path)
	return path, nil
}
