// Package params implements the runtime parameter registry: a typed,
// validated, namespaced key/value store backed by an input deck.
//
// Parameters are identified by (block, key) and hold one of four scalar
// types. Values come from the deck when present and from the declared
// default otherwise; the default is written back to the deck so that a
// dumped deck always shows every parameter in effect. String values are
// lower-cased so rule matching and option mapping are case-insensitive.
//
// Every parameter may carry rules. A parameter with at least one rule must
// satisfy one of them when it is added and on every later validation.
package params
