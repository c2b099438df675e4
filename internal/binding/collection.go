package binding

import (
	"context"
	"slices"

	"github.com/vk/simunit/internal/packagestore"
	"github.com/vk/simunit/internal/params"
	"github.com/vk/simunit/internal/runconfig"
)

// Collection owns the blocks of one unit. Blocks created after the
// collection was set up are caught up immediately, so late declarations
// behave like early ones.
type Collection struct {
	blocks map[string]*Block
	order  []string

	registry *params.Registry
	config   *runconfig.Config
	store    packagestore.Store
}

// NewCollection creates an empty collection.
func NewCollection() *Collection {
	return &Collection{blocks: make(map[string]*Block)}
}

// Block returns the block called name, creating it on first use.
func (c *Collection) Block(name string) (*Block, error) {
	if b, ok := c.blocks[name]; ok {
		return b, nil
	}
	b := NewBlock(name)
	if c.registry != nil {
		if err := b.Setup(c.registry, c.config); err != nil {
			return nil, err
		}
	}
	if c.store != nil {
		if err := b.Initialize(context.Background(), c.store); err != nil {
			return nil, err
		}
	}
	c.blocks[name] = b
	c.order = append(c.order, name)
	return b, nil
}

// Lookup returns an existing block.
func (c *Collection) Lookup(name string) (*Block, bool) {
	b, ok := c.blocks[name]
	return b, ok
}

// Blocks returns every block in creation order.
func (c *Collection) Blocks() []*Block {
	out := make([]*Block, 0, len(c.order))
	for _, name := range slices.Clone(c.order) {
		out = append(out, c.blocks[name])
	}
	return out
}

// Setup binds every block to registry and config.
func (c *Collection) Setup(registry *params.Registry, config *runconfig.Config) error {
	for _, name := range c.order {
		if err := c.blocks[name].Setup(registry, config); err != nil {
			return err
		}
	}
	c.registry = registry
	c.config = config
	return nil
}

// Initialize pushes every block into store.
func (c *Collection) Initialize(ctx context.Context, store packagestore.Store) error {
	for _, name := range c.order {
		if err := c.blocks[name].Initialize(ctx, store); err != nil {
			return err
		}
	}
	c.store = store
	return nil
}
