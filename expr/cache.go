package expr

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Cache memoizes parsed formulas by their exact text. Parsed ASTs are pure,
// so a cached tree can be evaluated concurrently against different contexts.
//
// The cache has an explicit lifecycle: create one per renderer (or per
// process) and pass it where needed. Parse failures are not cached.
type Cache struct {
	mu    sync.RWMutex
	trees map[string]Node
}

// NewCache creates an empty formula cache.
func NewCache() *Cache {
	return &Cache{trees: make(map[string]Node)}
}

// Parse returns the cached AST for the formula, parsing and storing it on
// first use.
func (c *Cache) Parse(source string) (Node, error) {
	c.mu.RLock()
	node, ok := c.trees[source]
	c.mu.RUnlock()
	if ok {
		return node, nil
	}

	node, err := Parse(source)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.trees[source] = node
	c.mu.Unlock()

	return node, nil
}

// Evaluate evaluates a formula against the context, reusing the cached AST.
func (c *Cache) Evaluate(source string, ctx Context) (decimal.Decimal, error) {
	node, err := c.Parse(source)
	if err != nil {
		return decimal.Zero, err
	}
	return EvaluateTree(node, source, ctx)
}

// Len returns the number of cached formulas.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.trees)
}
