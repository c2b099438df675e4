package inputdeck

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/vk/simunit/internal/ctxlog"
	"github.com/vk/simunit/internal/fsutil"
)

// Decoder turns the bytes of one deck file into a Deck.
type Decoder interface {
	Decode(ctx context.Context, filename string, src []byte) (*Deck, error)
}

// Loader discovers deck files and decodes each with the Decoder registered
// for its extension.
type Loader struct {
	decoders map[string]Decoder
}

// NewLoader creates a Loader that understands .hcl, .yaml, .yml, .toml and
// .cue files.
func NewLoader() *Loader {
	l := &Loader{decoders: make(map[string]Decoder)}
	l.Register(".hcl", HCLDecoder{})
	l.Register(".yaml", YAMLDecoder{})
	l.Register(".yml", YAMLDecoder{})
	l.Register(".toml", TOMLDecoder{})
	l.Register(".cue", CUEDecoder{})
	return l
}

// Register binds a decoder to a file extension such as ".json". It replaces
// any decoder already bound to that extension.
func (l *Loader) Register(ext string, d Decoder) {
	l.decoders[strings.ToLower(ext)] = d
}

// Extensions returns the registered extensions in lexical order.
func (l *Loader) Extensions() []string {
	exts := make([]string, 0, len(l.decoders))
	for ext := range l.decoders {
		exts = append(exts, ext)
	}
	slices.Sort(exts)
	return exts
}

// Load reads every deck file found under paths and merges them into one
// Deck. Directories are searched recursively. Files are merged in the order
// the paths were given, with later values overriding earlier ones.
func (l *Loader) Load(ctx context.Context, paths ...string) (*Deck, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Deck loader started.", "path_count", len(paths))

	files, err := l.findAll(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered deck files.", "count", len(files))

	deck := New()
	for _, file := range files {
		src, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read deck file %s: %w", file, err)
		}
		part, err := l.Decode(ctx, file, src)
		if err != nil {
			return nil, err
		}
		deck.Merge(part)
	}

	logger.Debug("Deck loading complete.", "files", len(files), "blocks", len(deck.Blocks()), "values", deck.Len())
	return deck, nil
}

// Decode decodes src with the decoder registered for filename's extension.
func (l *Loader) Decode(ctx context.Context, filename string, src []byte) (*Deck, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	d, ok := l.decoders[ext]
	if !ok {
		return nil, fmt.Errorf("unsupported deck file %s: extension %q is not one of %s", filename, ext, strings.Join(l.Extensions(), ", "))
	}
	return d.Decode(ctx, filename, src)
}

// findAll expands paths into a flat, de-duplicated list of deck files.
func (l *Loader) findAll(paths []string) ([]string, error) {
	var all []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		all = append(all, p)
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing deck path %s: %w", path, err)
		}

		if !info.IsDir() {
			add(path)
			continue
		}

		files, err := fsutil.FindFilesByExtension(path, l.Extensions()...)
		if err != nil {
			return nil, fmt.Errorf("error walking deck path %s: %w", path, err)
		}
		for _, f := range files {
			add(f)
		}
	}
	return all, nil
}
