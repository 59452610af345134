// FILE: lixenwraith/propbind/file_provider.go
package propbind

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// FileOptions configures the line-format providers.
type FileOptions struct {
	// CommentSign marks comment lines. Default: "#"
	CommentSign string

	// Logger receives load and save events. Default: no-op
	Logger *zap.Logger
}

// DefaultFileOptions returns the standard line-format options.
func DefaultFileOptions() FileOptions {
	return FileOptions{
		CommentSign: DefaultCommentSign,
		Logger:      zap.NewNop(),
	}
}

func (o FileOptions) normalized() FileOptions {
	if o.CommentSign == "" {
		o.CommentSign = DefaultCommentSign
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// FileProvider reads bindings from a line-format file. Blank lines, comments
// and lines without '=' are skipped.
type FileProvider struct {
	path string
	opts FileOptions
}

var _ Provider = (*FileProvider)(nil)

// NewFileProvider creates a read-only provider over the file at path.
func NewFileProvider(path string) (*FileProvider, error) {
	return NewFileProviderWithOptions(path, DefaultFileOptions())
}

// NewFileProviderWithOptions creates a read-only provider with custom options.
// The file must exist.
func NewFileProviderWithOptions(path string, opts FileOptions) (*FileProvider, error) {
	if err := checkFile(path); err != nil {
		return nil, err
	}
	return &FileProvider{path: path, opts: opts.normalized()}, nil
}

// Path returns the file the provider reads.
func (p *FileProvider) Path() string {
	return p.path
}

// Entries returns the bindings of the file in file order.
func (p *FileProvider) Entries(ctx context.Context) ([]*Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lines, err := readLines(p.path)
	if err != nil {
		return nil, err
	}

	entries := make([]*Entry, 0, len(lines))
	for i, line := range lines {
		entry, err := parseLine(line, p.opts.CommentSign)
		if errors.Is(err, errNoAssignment) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s:%d: %w", ErrMalformedLine, p.path, i+1, err)
		}
		if entry.Passthrough {
			continue
		}
		entry.Source = ""
		entries = append(entries, entry)
	}

	p.opts.Logger.Debug("Loaded property file",
		zap.String("path", p.path),
		zap.Int("lines", len(lines)),
		zap.Int("entries", len(entries)))
	return entries, nil
}

// EditableFileProvider keeps every physical line of a line-format file,
// including comments and blank lines, so that Save rewrites the file with
// only changed values updated.
type EditableFileProvider struct {
	path string
	opts FileOptions
}

var _ EditableProvider = (*EditableFileProvider)(nil)

// NewEditableFileProvider creates an editable provider over the file at path.
func NewEditableFileProvider(path string) (*EditableFileProvider, error) {
	return NewEditableFileProviderWithOptions(path, DefaultFileOptions())
}

// NewEditableFileProviderWithOptions creates an editable provider with custom
// options. The file must exist.
func NewEditableFileProviderWithOptions(path string, opts FileOptions) (*EditableFileProvider, error) {
	if err := checkFile(path); err != nil {
		return nil, err
	}
	return &EditableFileProvider{path: path, opts: opts.normalized()}, nil
}

// Path returns the file the provider reads and writes.
func (p *EditableFileProvider) Path() string {
	return p.path
}

// Entries returns one entry per physical line. Comment and blank lines are
// passthrough entries. A line without '=' is an error.
func (p *EditableFileProvider) Entries(ctx context.Context) ([]*Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lines, err := readLines(p.path)
	if err != nil {
		return nil, err
	}

	entries := make([]*Entry, 0, len(lines))
	for i, line := range lines {
		entry, err := parseLine(line, p.opts.CommentSign)
		if err != nil {
			return nil, fmt.Errorf("%w: %s:%d: %w", ErrMalformedLine, p.path, i+1, err)
		}
		entries = append(entries, entry)
	}

	p.opts.Logger.Debug("Loaded editable property file",
		zap.String("path", p.path),
		zap.Int("lines", len(lines)))
	return entries, nil
}

// Save overwrites the file with one line per entry.
func (p *EditableFileProvider) Save(ctx context.Context, entries []*Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var buf bytes.Buffer
	for _, entry := range entries {
		buf.WriteString(formatLine(entry))
		buf.WriteString(lineBreak)
	}

	if err := atomicWriteFile(p.path, buf.Bytes()); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	p.opts.Logger.Debug("Saved property file",
		zap.String("path", p.path),
		zap.Int("lines", len(entries)))
	return nil
}
