package ingest

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/poiesic/recall/core"
)

// skipDirs are directory names never descended into: VCS internals,
// dependency trees, and build output.
var skipDirs = map[string]struct{}{
	".git":         {},
	".svn":         {},
	".hg":          {},
	".idea":        {},
	".vscode":      {},
	"node_modules": {},
	"vendor":       {},
	"target":       {},
	"build":        {},
	"dist":         {},
	"__pycache__":  {},
}

// fileKind maps a file extension to indexing metadata.
type fileKind struct {
	contentType core.ContentType
	language    string
}

var kindByExtension = map[string]fileKind{
	".go":       {core.ContentTypeCode, "go"},
	".py":       {core.ContentTypeCode, "python"},
	".js":       {core.ContentTypeCode, "javascript"},
	".ts":       {core.ContentTypeCode, "typescript"},
	".rs":       {core.ContentTypeCode, "rust"},
	".java":     {core.ContentTypeCode, "java"},
	".c":        {core.ContentTypeCode, "c"},
	".h":        {core.ContentTypeCode, "c"},
	".cpp":      {core.ContentTypeCode, "cpp"},
	".rb":       {core.ContentTypeCode, "ruby"},
	".sh":       {core.ContentTypeCode, "shell"},
	".md":       {core.ContentTypeMarkdown, ""},
	".markdown": {core.ContentTypeMarkdown, ""},
	".rst":      {core.ContentTypeDocumentation, ""},
	".txt":      {core.ContentTypeText, ""},
	".yaml":     {core.ContentTypeConfig, "yaml"},
	".yml":      {core.ContentTypeConfig, "yaml"},
	".json":     {core.ContentTypeConfig, "json"},
	".toml":     {core.ContentTypeConfig, "toml"},
	".ini":      {core.ContentTypeConfig, "ini"},
}

// Scanner collects indexable documents from a filesystem tree.
type Scanner struct {
	logger *slog.Logger
}

// ScannerOption configures a Scanner.
type ScannerOption func(*Scanner)

// WithScannerLogger sets a custom logger.
// Default is slog.Default().
func WithScannerLogger(logger *slog.Logger) ScannerOption {
	return func(s *Scanner) {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
	}
}

// NewScanner creates a scanner.
func NewScanner(opts ...ScannerOption) *Scanner {
	s := &Scanner{logger: slog.Default().With("component", "scanner")}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScanDirectory walks root and returns a document per indexable file.
// Unknown extensions, hidden files, unreadable files, and files that
// are not valid UTF-8 are skipped. Only a broken walk aborts the scan.
func (s *Scanner) ScanDirectory(root string) ([]*core.Document, error) {
	var documents []*core.Document

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		name := d.Name()
		if d.IsDir() {
			if path == root {
				return nil
			}
			if _, skip := skipDirs[name]; skip {
				return filepath.SkipDir
			}
			if strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(name, ".") {
			return nil
		}

		doc, ok := s.scanFile(root, path)
		if ok {
			documents = append(documents, doc)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return documents, nil
}

// ScanFile reads one file into a document. The second return value is
// false when the file is not indexable.
func (s *Scanner) ScanFile(path string) (*core.Document, bool) {
	return s.scanFile(filepath.Dir(path), path)
}

func (s *Scanner) scanFile(root, path string) (*core.Document, bool) {
	kind, ok := kindByExtension[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, false
	}

	content, err := os.ReadFile(path)
	if err != nil {
		s.logger.Debug("skipping unreadable file", "path", path, "err", err)
		return nil, false
	}
	if len(content) == 0 || !utf8.Valid(content) {
		s.logger.Debug("skipping non-text file", "path", path)
		return nil, false
	}

	id := path
	if rel, err := filepath.Rel(root, path); err == nil {
		id = filepath.ToSlash(rel)
	}

	base := filepath.Base(path)
	return &core.Document{
		ID:      id,
		Content: string(content),
		Metadata: core.Metadata{
			Source:      path,
			ContentType: kind.contentType,
			Language:    kind.language,
			Title:       strings.TrimSuffix(base, filepath.Ext(base)),
		},
	}, true
}
