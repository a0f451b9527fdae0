package report

import (
	"strconv"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/finstmt/finstmt/expr"
)

// depGraph is the directed dependency graph induced by order references among
// calculated rows. Variables resolve before any row renders, so only
// row-to-row edges matter for evaluation order.
type depGraph struct {
	orders []int         // calculated-row orders, ascending
	edges  map[int][]int // order -> calculated-row orders it depends on
}

// parseOrderKey converts an "@<digits>" dependency key back to its order.
func parseOrderKey(dep string) (int, bool) {
	if !strings.HasPrefix(dep, "@") {
		return 0, false
	}
	order, err := strconv.Atoi(dep[1:])
	if err != nil {
		return 0, false
	}
	return order, true
}

// buildDepGraph extracts order-reference edges from every calculated row's
// expression. The definition must already be structurally valid.
func buildDepGraph(def *Definition, cache *expr.Cache) (*depGraph, error) {
	calculated := make(map[int]bool)
	for _, item := range def.Layout {
		if item.Type == LayoutCalculated {
			calculated[item.Order] = true
		}
	}

	g := &depGraph{edges: make(map[int][]int, len(calculated))}

	for _, item := range def.Layout {
		if item.Type != LayoutCalculated {
			continue
		}
		g.orders = append(g.orders, item.Order)

		// Parse through the shared cache so the renderer reuses the trees.
		if _, err := cache.Parse(item.Expression); err != nil {
			return nil, newExpressionError(def.ReportID, item.Order, item.Expression, err)
		}

		deps, err := expr.Dependencies(item.Expression)
		if err != nil {
			return nil, newExpressionError(def.ReportID, item.Order, item.Expression, err)
		}

		for _, dep := range deps {
			if target, ok := parseOrderKey(dep); ok && calculated[target] {
				g.edges[item.Order] = append(g.edges[item.Order], target)
			}
		}
	}

	slices.Sort(g.orders)
	for order := range g.edges {
		slices.Sort(g.edges[order])
	}

	return g, nil
}

// topoOrder returns the calculated-row orders in dependency order
// (dependencies first). On a cycle it returns the offending chain instead,
// closed back onto its first element.
func (g *depGraph) topoOrder() (sorted []int, cycle []int) {
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)

	state := make(map[int]int, len(g.orders))
	sorted = make([]int, 0, len(g.orders))

	var path []int
	var visit func(order int) []int

	visit = func(order int) []int {
		switch state[order] {
		case done:
			return nil
		case visiting:
			// Close the chain back onto the repeated node.
			start := slices.Index(path, order)
			return append(slices.Clone(path[start:]), order)
		}

		state[order] = visiting
		path = append(path, order)

		for _, dep := range g.edges[order] {
			if chain := visit(dep); chain != nil {
				return chain
			}
		}

		path = path[:len(path)-1]
		state[order] = done
		sorted = append(sorted, order)
		return nil
	}

	for _, order := range g.orders {
		if chain := visit(order); chain != nil {
			return nil, chain
		}
	}

	return sorted, nil
}
