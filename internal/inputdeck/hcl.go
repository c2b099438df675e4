package inputdeck

import (
	"context"
	"fmt"
	"slices"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/simunit/internal/ctxlog"
)

// labeledBlockType is the block type used when a block name is not a valid
// HCL identifier: `block "parthenon/time" { ... }`.
const labeledBlockType = "block"

// HCLDecoder decodes native HCL syntax decks.
type HCLDecoder struct{}

// Decode parses src and translates every top-level block into a deck block.
func (HCLDecoder) Decode(ctx context.Context, filename string, src []byte) (*Deck, error) {
	logger := ctxlog.FromContext(ctx)

	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}

	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, fmt.Errorf("failed to parse HCL file %s: unexpected body type %T", filename, file.Body)
	}

	for _, attr := range body.Attributes {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Unexpected top-level attribute",
			Detail:   fmt.Sprintf("Attribute %q must be placed inside a block.", attr.Name),
			Subject:  attr.SrcRange.Ptr(),
		})
	}

	deck := New()
	seen := make(map[string]*hclsyntax.Block)
	for _, block := range body.Blocks {
		name, blockDiags := blockName(block)
		diags = append(diags, blockDiags...)
		if blockDiags.HasErrors() {
			continue
		}
		if prev, dup := seen[name]; dup {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Duplicate \"" + name + "\" block",
				Detail:   fmt.Sprintf("Block %q was already defined at %s.", name, prev.DefRange()),
				Subject:  block.DefRange().Ptr(),
			})
			continue
		}
		seen[name] = block

		for _, nested := range block.Body.Blocks {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Unsupported nested block",
				Detail:   fmt.Sprintf("Block %q may only contain attributes.", name),
				Subject:  nested.DefRange().Ptr(),
			})
		}

		for _, attr := range sourceOrder(block.Body.Attributes) {
			val, valDiags := attr.Expr.Value(nil)
			diags = append(diags, valDiags...)
			if valDiags.HasErrors() {
				continue
			}
			deck.Set(name, attr.Name, val)
		}
	}

	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}

	logger.Debug("Decoded HCL deck.", "file", filename, "blocks", len(seen))
	return deck, nil
}

func blockName(block *hclsyntax.Block) (string, hcl.Diagnostics) {
	switch {
	case block.Type == labeledBlockType && len(block.Labels) == 1:
		return block.Labels[0], nil
	case block.Type != labeledBlockType && len(block.Labels) == 0:
		return block.Type, nil
	default:
		return "", hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Invalid block header",
			Detail:   fmt.Sprintf("Use either `name { ... }` or `%s \"name\" { ... }`.", labeledBlockType),
			Subject:  block.DefRange().Ptr(),
		}}
	}
}

// sourceOrder returns the attributes sorted by their position in the file.
func sourceOrder(attrs hclsyntax.Attributes) []*hclsyntax.Attribute {
	out := make([]*hclsyntax.Attribute, 0, len(attrs))
	for _, a := range attrs {
		out = append(out, a)
	}
	slices.SortFunc(out, func(a, b *hclsyntax.Attribute) int {
		return a.SrcRange.Start.Byte - b.SrcRange.Start.Byte
	})
	return out
}
