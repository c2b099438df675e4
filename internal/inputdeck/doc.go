// Package inputdeck is the external input source of the parameter registry.
//
// A Deck is a two level table: named blocks holding key/value pairs, with
// every value stored as a cty.Value. Decks are decoded from HCL, YAML, TOML
// or CUE files; the format is chosen by file extension. Every format maps to
// the same shape:
//
//	hydro {
//	  reconstruction = "plm"
//	  cfl            = 0.8
//	}
//
//	block "parthenon/time" {
//	  tlim = 1.0
//	}
//
// The labeled `block "<name>"` form exists for names that are not valid HCL
// identifiers. When several files are loaded, later files override earlier
// ones key by key.
package inputdeck
