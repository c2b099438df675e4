package params

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/vk/simunit/internal/errs"
	"github.com/vk/simunit/internal/inputdeck"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Registry stores parameters keyed by (block, key). It is safe for
// concurrent use, although parameters are normally added during a single
// threaded setup phase.
type Registry struct {
	mu     sync.RWMutex
	deck   *inputdeck.Deck
	params map[string]entry
	order  []string
}

// New creates a Registry reading from deck. A nil deck is replaced by an
// empty one, so every parameter takes its default.
func New(deck *inputdeck.Deck) *Registry {
	if deck == nil {
		deck = inputdeck.New()
	}
	return &Registry{
		deck:   deck,
		params: make(map[string]entry),
	}
}

func id(block, key string) string { return block + "/" + key }

// Deck returns the input deck backing the registry.
func (r *Registry) Deck() *inputdeck.Deck { return r.deck }

// Has reports whether block/key is registered.
func (r *Registry) Has(block, key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.params[id(block, key)]
	return ok
}

// Len returns the number of registered parameters.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Lookup returns the description of a registered parameter.
func (r *Registry) Lookup(block, key string) (Info, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.params[id(block, key)]
	if !ok {
		return Info{}, false
	}
	return e.info(), true
}

// Parameters returns every parameter in registration order.
func (r *Registry) Parameters() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Info, 0, len(r.order))
	for _, k := range r.order {
		out = append(out, r.params[k].info())
	}
	return out
}

// Value returns the current value of block/key as a Go value.
func (r *Registry) Value(block, key string) (any, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.params[id(block, key)]
	if !ok {
		return nil, fmt.Errorf("%w: <%s>/%s", errs.ErrUnknownParameter, block, key)
	}
	return e.value(), nil
}

// Add registers a parameter. The value is read from the deck if present,
// otherwise def is used and written to the deck. Strings are lower-cased.
// A value rejected by every rule fails with a *RuleError.
func Add[T Scalar](r *Registry, block, key string, def T, doc string, rules ...Rule[T]) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return add(r, block, key, def, doc, rules)
}

func add[T Scalar](r *Registry, block, key string, def T, doc string, rules []Rule[T]) error {
	p, err := prepare(r, block, key, def, doc, rules)
	if err != nil {
		return err
	}
	commit(r, p)
	return nil
}

// pending is a parameter that passed every check but is not yet in the
// registry. deckDefault is written to the deck on commit unless it is null.
type pending[T Scalar] struct {
	p           *param[T]
	deckDefault cty.Value
}

// prepare resolves and checks block/key without changing the registry or
// the deck.
func prepare[T Scalar](r *Registry, block, key string, def T, doc string, rules []Rule[T]) (pending[T], error) {
	k := id(block, key)
	if prev, ok := r.params[k]; ok {
		return pending[T]{}, fmt.Errorf("%w: %s runtime parameter <%s>/%s already exists", errs.ErrDuplicateParameter, prev.info().Type, block, key)
	}

	v, deckDefault, err := readDeck(r.deck, block, key, def)
	if err != nil {
		return pending[T]{}, err
	}

	p := &param[T]{
		meta: Info{
			Block:       block,
			Key:         key,
			Type:        typeOf[T](),
			Default:     formatDefault(def),
			Allowed:     allowedList(rules),
			Description: doc,
		},
		val:   v,
		def:   def,
		rules: slices.Clone(rules),
	}
	if err := p.check(v); err != nil {
		return pending[T]{}, err
	}
	return pending[T]{p: p, deckDefault: deckDefault}, nil
}

func commit[T Scalar](r *Registry, pd pending[T]) {
	info := pd.p.info()
	if !pd.deckDefault.IsNull() {
		r.deck.Set(info.Block, info.Key, pd.deckDefault)
	}
	k := id(info.Block, info.Key)
	r.params[k] = pd.p
	r.order = append(r.order, k)
}

// AddN registers n parameters of the same shape named key0 ... key{n-1}.
// Either every key is added or, on error, none is.
func AddN[T Scalar](r *Registry, block, key string, n int, def T, doc string, rules ...Rule[T]) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]pending[T], 0, n)
	for i := range n {
		pd, err := prepare(r, block, key+strconv.Itoa(i), def, doc, rules)
		if err != nil {
			return err
		}
		all = append(all, pd)
	}
	for _, pd := range all {
		commit(r, pd)
	}
	return nil
}

// Get returns the value of block/key.
func Get[T Scalar](r *Registry, block, key string) (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, err := lookup[T](r, block, key)
	if err != nil {
		var zero T
		return zero, err
	}
	return p.val, nil
}

// GetOrAdd adds the parameter if it is not registered yet and returns its value.
func GetOrAdd[T Scalar](r *Registry, block, key string, def T, doc string, rules ...Rule[T]) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.params[id(block, key)]; !ok {
		if err := add(r, block, key, def, doc, rules); err != nil {
			var zero T
			return zero, err
		}
	}
	p, err := lookup[T](r, block, key)
	if err != nil {
		var zero T
		return zero, err
	}
	return p.val, nil
}

// Set writes value to the deck and, if block/key is registered, to the
// parameter itself. It does not run the rules: it serves programmatic
// overrides, not user input.
func Set[T Scalar](r *Registry, block, key string, value T) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := any(value).(string); ok {
		value = any(strings.ToLower(s)).(T)
	}
	if _, registered := r.params[id(block, key)]; registered {
		p, err := lookup[T](r, block, key)
		if err != nil {
			return err
		}
		p.val = value
	}
	cv, err := gocty.ToCtyValue(value, ctyType[T]())
	if err != nil {
		return fmt.Errorf("<%s>/%s: %w", block, key, err)
	}
	r.deck.Set(block, key, cv)
	return nil
}

// Validate checks value against the rules of block/key without storing it.
func Validate[T Scalar](r *Registry, block, key string, value T) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, err := lookup[T](r, block, key)
	if err != nil {
		return err
	}
	if s, ok := any(value).(string); ok {
		value = any(strings.ToLower(s)).(T)
	}
	return p.check(value)
}

func lookup[T Scalar](r *Registry, block, key string) (*param[T], error) {
	e, ok := r.params[id(block, key)]
	if !ok {
		return nil, fmt.Errorf("%w: %s runtime parameter <%s>/%s doesn't exist", errs.ErrUnknownParameter, typeOf[T](), block, key)
	}
	p, ok := e.(*param[T])
	if !ok {
		return nil, fmt.Errorf("%w: <%s>/%s is %s, not %s", errs.ErrTypeMismatch, block, key, e.info().Type, typeOf[T]())
	}
	return p, nil
}

func ctyType[T Scalar]() cty.Type {
	switch typeOf[T]() {
	case TypeBoolean:
		return cty.Bool
	case TypeInteger, TypeReal:
		return cty.Number
	default:
		return cty.String
	}
}

// readDeck returns the deck value of block/key converted to T. When the
// key is absent it returns def together with its deck representation,
// which the caller writes once the parameter is accepted.
func readDeck[T Scalar](deck *inputdeck.Deck, block, key string, def T) (T, cty.Value, error) {
	var out T
	deckDefault := cty.NilVal
	raw, ok := deck.Lookup(block, key)
	if !ok || raw.IsNull() {
		cv, err := gocty.ToCtyValue(def, ctyType[T]())
		if err != nil {
			return out, cty.NilVal, fmt.Errorf("<%s>/%s: %w", block, key, err)
		}
		deckDefault = cv
		out = def
	} else {
		cv, err := convert.Convert(raw, ctyType[T]())
		if err != nil {
			return out, cty.NilVal, fmt.Errorf("%w: <%s>/%s = %s cannot be read as %s: %v", errs.ErrTypeMismatch, block, key, raw.GoString(), typeOf[T](), err)
		}
		if err := gocty.FromCtyValue(cv, &out); err != nil {
			return out, cty.NilVal, fmt.Errorf("%w: <%s>/%s cannot be read as %s: %v", errs.ErrTypeMismatch, block, key, typeOf[T](), err)
		}
	}
	if s, ok := any(out).(string); ok {
		out = any(strings.ToLower(s)).(T)
	}
	return out, deckDefault, nil
}
