// Package docs generates the runtime parameter reference from a populated
// parameter registry.
package docs

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/vk/simunit/internal/params"
	"github.com/vk/simunit/internal/unit"
)

const header = "| Parameter | Type | Default | Allowed | Description |\n" +
	"| --------- | ---- | ------- | ------- | ----------- |\n"

// WriteMarkdown writes infos as one markdown table. Blocks are sorted by
// name and introduced by a **<block\>** row; parameters keep their
// registration order within a block.
func WriteMarkdown(w io.Writer, infos []params.Info) error {
	byBlock := make(map[string][]params.Info)
	for _, info := range infos {
		byBlock[info.Block] = append(byBlock[info.Block], info)
	}

	var b strings.Builder
	b.WriteString(header)
	for _, block := range slices.Sorted(maps.Keys(byBlock)) {
		fmt.Fprintf(&b, "**<%s\\>**\n", block)
		for _, info := range byBlock[block] {
			b.WriteString(info.Row())
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// Markdown returns the table for infos.
func Markdown(infos []params.Info) string {
	var b strings.Builder
	_ = WriteMarkdown(&b, infos)
	return b.String()
}

// ForUnit keeps the parameters declared in u's blocks.
func ForUnit(u *unit.Unit, infos []params.Info) []params.Info {
	owned := make(map[string]bool)
	for _, b := range u.Data().Blocks() {
		owned[b.Name()] = true
	}
	var out []params.Info
	for _, info := range infos {
		if owned[info.Block] {
			out = append(out, info)
		}
	}
	return out
}

// RenderOptions controls terminal rendering.
type RenderOptions struct {
	// Style is a glamour standard style; empty picks one from the terminal.
	Style string
	// Width wraps the output when positive.
	Width int
}

// PlainStyle renders without ANSI escapes.
const PlainStyle = styles.NoTTYStyle

// Render formats markdown for a terminal.
func Render(markdown string, opts RenderOptions) (string, error) {
	var rendererOpts []glamour.TermRendererOption
	if opts.Style == "" {
		rendererOpts = append(rendererOpts, glamour.WithAutoStyle())
	} else {
		rendererOpts = append(rendererOpts, glamour.WithStandardStyle(opts.Style))
	}
	if opts.Width > 0 {
		rendererOpts = append(rendererOpts, glamour.WithWordWrap(opts.Width))
	}

	renderer, err := glamour.NewTermRenderer(rendererOpts...)
	if err != nil {
		return "", fmt.Errorf("creating markdown renderer: %w", err)
	}
	return renderer.Render(markdown)
}
