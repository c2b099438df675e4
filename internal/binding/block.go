package binding

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/vk/simunit/internal/errs"
	"github.com/vk/simunit/internal/options"
	"github.com/vk/simunit/internal/packagestore"
	"github.com/vk/simunit/internal/params"
	"github.com/vk/simunit/internal/runconfig"
)

// Block is a unit's named group of parameters. A Block is not safe for
// concurrent use; it is driven by the single-threaded setup phase and by
// serialized updates afterwards.
type Block struct {
	name  string
	state State
	parms map[string]*parm
	order []string

	registry *params.Registry
	config   *runconfig.Config
	store    packagestore.Store
}

// parm is one declared parameter. The closures capture its static type so
// the block itself stays type-erased.
type parm struct {
	key   string
	mut   packagestore.Mutability
	value any
	// mapping is set for option parameters: label -> axis value.
	mapping map[string]options.Value

	register func(b *Block, p *parm) error
	// normalize type-checks a candidate value and runs the rules, returning
	// the value to store.
	normalize func(b *Block, v any) (any, error)
	// write stores an accepted value in the registry.
	write func(b *Block, v any) error
}

// NewBlock creates an empty block in the Declaring state.
func NewBlock(name string) *Block {
	return &Block{name: name, parms: make(map[string]*parm)}
}

// Name returns the block name used as the registry block and store prefix.
func (b *Block) Name() string { return b.name }

// State returns the lifecycle state of the block.
func (b *Block) State() State { return b.state }

// Keys returns the parameter keys in declaration order.
func (b *Block) Keys() []string { return slices.Clone(b.order) }

// Mutability returns the declared mutability of key.
func (b *Block) Mutability(key string) (packagestore.Mutability, error) {
	p, err := b.lookup(key)
	if err != nil {
		return 0, err
	}
	return p.mut, nil
}

// AddParm declares a scalar parameter. Rules follow params.Add; an empty
// rule list accepts every value.
func AddParm[T params.Scalar](b *Block, key string, def T, doc string, mut packagestore.Mutability, rules ...params.Rule[T]) error {
	p := &parm{
		key:   key,
		mut:   mut,
		value: def,
		register: func(b *Block, p *parm) error {
			v, err := params.GetOrAdd(b.registry, b.name, key, def, doc, rules...)
			if err != nil {
				return err
			}
			p.value = v
			return nil
		},
		normalize: func(b *Block, v any) (any, error) {
			tv, ok := v.(T)
			if !ok {
				return nil, fmt.Errorf("%w: <%s>/%s expects %T, got %T", errs.ErrTypeMismatch, b.name, key, def, v)
			}
			if s, ok := any(tv).(string); ok {
				tv = any(strings.ToLower(s)).(T)
			}
			if err := params.Validate(b.registry, b.name, key, tv); err != nil {
				return nil, err
			}
			return tv, nil
		},
		write: func(b *Block, v any) error {
			return params.Set(b.registry, b.name, key, v.(T))
		},
	}
	return b.declare(p)
}

// AddOption declares a string parameter mapped onto an option axis. The
// accepted labels are the keys of mapping. On Setup the label read from the
// registry is mapped and added to the run configuration; UpdateParm later
// updates the configuration too. Option parameters are Mutable.
func AddOption(b *Block, key, def, doc string, mapping map[string]options.Value) error {
	if len(mapping) == 0 {
		return fmt.Errorf("block %s: option %s declared without a mapping", b.name, key)
	}
	norm := make(map[string]options.Value, len(mapping))
	for label, v := range mapping {
		norm[strings.ToLower(label)] = v
	}
	labels := slices.Sorted(maps.Keys(norm))
	rules := params.OneOf(labels...)

	p := &parm{
		key:     key,
		mut:     packagestore.Mutable,
		value:   strings.ToLower(def),
		mapping: norm,
		register: func(b *Block, p *parm) error {
			label, err := params.GetOrAdd(b.registry, b.name, key, def, doc, rules...)
			if err != nil {
				return err
			}
			p.value = label
			if b.config == nil {
				return nil
			}
			return b.config.Add(norm[label])
		},
		normalize: func(b *Block, v any) (any, error) {
			label, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("%w: option <%s>/%s must be set with a string, got %T", errs.ErrTypeMismatch, b.name, key, v)
			}
			label = strings.ToLower(label)
			if err := params.Validate(b.registry, b.name, key, label); err != nil {
				return nil, err
			}
			return label, nil
		},
		write: func(b *Block, v any) error {
			label := v.(string)
			if b.config != nil {
				if err := b.config.Update(norm[label]); err != nil {
					return err
				}
			}
			return params.Set(b.registry, b.name, key, label)
		},
	}
	return b.declare(p)
}

// declare records p and catches it up with the block's current state.
func (b *Block) declare(p *parm) error {
	if _, ok := b.parms[p.key]; ok {
		return fmt.Errorf("%w: <%s>/%s declared twice", errs.ErrDuplicateParameter, b.name, p.key)
	}
	if b.state >= Bound {
		if err := p.register(b, p); err != nil {
			return err
		}
	}
	if b.state >= Initialized {
		if err := b.store.AddParam(context.Background(), packagestore.Key(b.name, p.key), p.value, p.mut); err != nil {
			return err
		}
	}
	b.parms[p.key] = p
	b.order = append(b.order, p.key)
	return nil
}

// Setup registers every pending parameter with registry and, for options,
// config. config may be nil when no option parameters are declared.
func (b *Block) Setup(registry *params.Registry, config *runconfig.Config) error {
	if b.state != Declaring {
		return fmt.Errorf("%w: block %s is already %s", errs.ErrSealed, b.name, b.state)
	}
	if registry == nil {
		return fmt.Errorf("block %s: setup needs a registry", b.name)
	}
	b.registry = registry
	b.config = config

	for _, key := range b.order {
		p := b.parms[key]
		if err := p.register(b, p); err != nil {
			return fmt.Errorf("block %s: %w", b.name, err)
		}
	}
	b.state = Bound
	return nil
}

// Initialize pushes every resolved value into store under "block/key".
func (b *Block) Initialize(ctx context.Context, store packagestore.Store) error {
	if b.state != Bound {
		if b.state == Declaring {
			return &StateError{Block: b.name, Op: "Initialize", State: b.state, Want: Bound}
		}
		return fmt.Errorf("%w: block %s is already %s", errs.ErrSealed, b.name, b.state)
	}
	if store == nil {
		return fmt.Errorf("block %s: initialize needs a package store", b.name)
	}

	for _, key := range b.order {
		p := b.parms[key]
		if err := store.AddParam(ctx, packagestore.Key(b.name, key), p.value, p.mut); err != nil {
			return fmt.Errorf("block %s: %w", b.name, err)
		}
	}
	b.store = store
	b.state = Initialized
	return nil
}

// Value returns the current value of key once the block is bound.
func (b *Block) Value(key string) (any, error) {
	if b.state < Bound {
		return nil, &StateError{Block: b.name, Op: "Get " + key, State: b.state, Want: Bound}
	}
	p, err := b.lookup(key)
	if err != nil {
		return nil, err
	}
	return p.value, nil
}

// Get returns the value of key as a T once the block is bound.
func Get[T params.Scalar](b *Block, key string) (T, error) {
	var zero T
	v, err := b.Value(key)
	if err != nil {
		return zero, err
	}
	tv, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: <%s>/%s holds %T, not %T", errs.ErrTypeMismatch, b.name, key, v, zero)
	}
	return tv, nil
}

// Option returns the axis value selected by an option parameter.
func (b *Block) Option(key string) (options.Value, error) {
	v, err := b.Value(key)
	if err != nil {
		return options.Value{}, err
	}
	p := b.parms[key]
	if p.mapping == nil {
		return options.Value{}, fmt.Errorf("%w: <%s>/%s is not an option parameter", errs.ErrTypeMismatch, b.name, key)
	}
	return p.mapping[v.(string)], nil
}

// UpdateParm changes the value of key after initialization. Immutable
// parameters fail with errs.ErrImmutableParameterUpdate and rule failures
// with errs.ErrRuleViolation. On success the value is written to the
// registry, the package store and, for options, the run configuration.
func (b *Block) UpdateParm(ctx context.Context, key string, value any) error {
	if b.state < Initialized {
		return &StateError{Block: b.name, Op: "UpdateParm " + key, State: b.state, Want: Initialized}
	}
	p, err := b.lookup(key)
	if err != nil {
		return err
	}
	if p.mut == packagestore.Immutable {
		return fmt.Errorf("%w: parameter %s/%s is immutable", errs.ErrImmutableParameterUpdate, b.name, key)
	}

	v, err := p.normalize(b, value)
	if err != nil {
		return err
	}
	if err := p.write(b, v); err != nil {
		return err
	}
	if err := b.store.UpdateParam(ctx, packagestore.Key(b.name, key), v); err != nil {
		return err
	}
	p.value = v
	return nil
}

func (b *Block) lookup(key string) (*parm, error) {
	p, ok := b.parms[key]
	if !ok {
		return nil, fmt.Errorf("%w: <%s>/%s is not declared", errs.ErrUnknownParameter, b.name, key)
	}
	return p, nil
}
