package inputdeck

import (
	"context"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/pelletier/go-toml/v2"
	"github.com/vk/simunit/internal/ctxlog"
	"gopkg.in/yaml.v3"
)

// YAMLDecoder decodes decks written as a mapping of blocks to mappings.
type YAMLDecoder struct{}

// Decode implements Decoder.
func (YAMLDecoder) Decode(ctx context.Context, filename string, src []byte) (*Deck, error) {
	var table map[string]any
	if err := yaml.Unmarshal(src, &table); err != nil {
		return nil, fmt.Errorf("failed to parse YAML file %s: %w", filename, err)
	}
	return decodeTable(ctx, "YAML", filename, table)
}

// TOMLDecoder decodes decks written as TOML tables.
type TOMLDecoder struct{}

// Decode implements Decoder.
func (TOMLDecoder) Decode(ctx context.Context, filename string, src []byte) (*Deck, error) {
	var table map[string]any
	if err := toml.Unmarshal(src, &table); err != nil {
		return nil, fmt.Errorf("failed to parse TOML file %s: %w", filename, err)
	}
	return decodeTable(ctx, "TOML", filename, table)
}

// CUEDecoder decodes decks written in CUE. The file must evaluate to a
// concrete struct of structs; constraints and defaults are resolved by CUE
// before the values reach the deck.
type CUEDecoder struct{}

// Decode implements Decoder.
func (CUEDecoder) Decode(ctx context.Context, filename string, src []byte) (*Deck, error) {
	value := cuecontext.New().CompileBytes(src, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return nil, fmt.Errorf("failed to compile CUE file %s: %w", filename, err)
	}
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("CUE file %s is not concrete: %w", filename, err)
	}

	var table map[string]any
	if err := value.Decode(&table); err != nil {
		return nil, fmt.Errorf("failed to decode CUE file %s: %w", filename, err)
	}
	return decodeTable(ctx, "CUE", filename, table)
}

func decodeTable(ctx context.Context, format, filename string, table map[string]any) (*Deck, error) {
	deck, err := fromTable(table)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s file %s: %w", format, filename, err)
	}
	ctxlog.FromContext(ctx).Debug("Decoded deck.", "format", format, "file", filename, "blocks", len(deck.Blocks()))
	return deck, nil
}
