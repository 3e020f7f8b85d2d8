package optim

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/san-kum/celestia/internal/config"
	"github.com/san-kum/celestia/internal/metrics"
	"github.com/san-kum/celestia/internal/scenario"
	"github.com/san-kum/celestia/internal/sim"
)

// Setters maps the tunable config knobs a grid may sweep.
var Setters = map[string]func(*config.Config, float64){
	"g":                func(c *config.Config, v float64) { c.Physics.G = v },
	"impactor_speed":   func(c *config.Config, v float64) { c.Cinematic.ImpactorSpeed = v },
	"merge_delay":      func(c *config.Config, v float64) { c.Physics.MergeDelay = v },
	"collision_factor": func(c *config.Config, v float64) { c.Physics.CollisionFactor = v },
	"fixed_dt":         func(c *config.Config, v float64) { c.Physics.FixedDt = v },
	"duration":         func(c *config.Config, v float64) { c.Duration = v },
}

// Point is one evaluated grid cell.
type Point struct {
	Params map[string]float64
	Value  float64
	Result *sim.Result
}

func (p Point) String() string {
	keys := make([]string, 0, len(p.Params))
	for k := range p.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%g", k, p.Params[k])
	}
	return strings.Join(parts, " ")
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	log        *log.Logger
}

func NewGridSearch(params []string, ranges [][]float64, logger *log.Logger) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("%d params but %d ranges", len(params), len(ranges))
	}
	for i, p := range params {
		if _, ok := Setters[p]; !ok {
			return nil, fmt.Errorf("unknown sweep parameter %q", p)
		}
		if len(ranges[i]) == 0 {
			return nil, fmt.Errorf("empty range for %q", p)
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges, log: logger}, nil
}

// Search runs desc once per grid cell on a copy of base and returns every
// evaluated point plus the one minimizing metricName. Cells whose config is
// invalid or whose run fails are skipped; a cancelled context stops the
// search.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, desc *scenario.Descriptor, metricName string) ([]Point, Point, error) {
	var points []Point
	best := Point{Value: math.Inf(1)}

	err := g.searchRecursive(ctx, 0, make(map[string]float64), func(params map[string]float64) error {
		cfg := *base
		for k, v := range params {
			Setters[k](&cfg, v)
		}
		if err := cfg.Validate(); err != nil {
			g.debug("skip cell", "params", params, "err", err)
			return nil
		}
		session, err := sim.NewSession(&cfg, g.log)
		if err != nil {
			return nil
		}
		runner := sim.NewRunner(session)
		for _, m := range metrics.Standard() {
			runner.AddMetric(m)
		}
		result, err := runner.Run(ctx, desc)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			g.debug("run failed", "params", params, "err", err)
			return nil
		}
		val, ok := result.Metrics[metricName]
		if !ok {
			return fmt.Errorf("unknown metric %q", metricName)
		}
		p := Point{Params: params, Value: val, Result: result}
		points = append(points, p)
		if val < best.Value {
			best = p
		}
		return nil
	})
	if err != nil {
		return points, best, err
	}
	if len(points) == 0 {
		return nil, best, fmt.Errorf("no grid cell produced a result")
	}
	return points, best, nil
}

func (g *GridSearch) debug(msg string, kv ...any) {
	if g.log != nil {
		g.log.Debug(msg, kv...)
	}
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	eval func(map[string]float64) error,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth == len(g.paramNames) {
		return eval(current)
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val
		if err := g.searchRecursive(ctx, depth+1, newParams, eval); err != nil {
			return err
		}
	}
	return nil
}

// ParseParam splits "name=v1,v2,v3" into a name and its values.
func ParseParam(s string) (string, []float64, error) {
	name, list, ok := strings.Cut(s, "=")
	if !ok || name == "" || list == "" {
		return "", nil, fmt.Errorf("sweep parameter %q: want name=v1,v2", s)
	}
	var vals []float64
	for _, f := range strings.Split(list, ",") {
		var v float64
		if _, err := fmt.Sscanf(strings.TrimSpace(f), "%g", &v); err != nil {
			return "", nil, fmt.Errorf("sweep parameter %q: %w", s, err)
		}
		vals = append(vals, v)
	}
	return name, vals, nil
}
