// Package merge classifies source layers into the fixed output layer stack.
//
// An ordered, declarative rule set maps an a-priori-unknown set of named
// layers onto the output layer names declared in the configuration. Rule
// order is significant: for each layer the engine tests its own name
// against the layer rules, then walks its group path innermost to
// outermost testing the group rules, and the first match assigns the
// layer to that rule's output bucket. Layers matching no rule are dropped
// from the output — deliberately not an error — but are reported in the
// result so callers can surface a warning.
//
// Classification is pure and deterministic: identical (layers, config)
// input always yields identical bucket assignments and composite order.
package merge

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"path"

	"github.com/namesheet/namesplit/pkg/config"
	"github.com/namesheet/namesplit/pkg/source"
)

// Result holds the bucket assignments for one document.
type Result struct {
	// Buckets maps output layer name to its assigned layers, in document
	// order (topmost first). Only names from the configured layer stack
	// appear as keys.
	Buckets map[string][]source.LayerRecord

	// Unmatched lists eligible layers that no rule claimed. These are
	// silently excluded from the output.
	Unmatched []source.LayerRecord

	// Warnings describes rules that matched nothing and layers that were
	// dropped, for surfacing in job results.
	Warnings []string
}

// Apply classifies layers according to cfg, bucketing them under the
// output layer names in stack.
//
// Invisible layers are skipped unless cfg.IncludeHiddenLayers. When both
// rule lists are empty every eligible layer is assigned to the first
// stack entry; this is what makes a flat raster input (one synthetic
// layer, no rules) land in the primary output layer.
//
// A rule whose output layer is not in stack still claims its layers, but
// they end up in no composite; a warning records this.
func Apply(layers []source.LayerRecord, cfg config.MergeConfig, stack []string) *Result {
	res := &Result{Buckets: make(map[string][]source.LayerRecord, len(stack))}

	inStack := make(map[string]bool, len(stack))
	for _, name := range stack {
		inStack[name] = true
	}

	noRules := len(cfg.GroupRules) == 0 && len(cfg.LayerRules) == 0
	if noRules && len(stack) == 0 {
		return res
	}

	ruleHits := make(map[string]int) // rule label -> match count
	for _, l := range layers {
		if !l.Visible && !cfg.IncludeHiddenLayers {
			continue
		}

		var target string
		switch {
		case noRules:
			target = stack[0]
		default:
			rule, label := match(l, cfg)
			if rule == nil {
				res.Unmatched = append(res.Unmatched, l)
				continue
			}
			ruleHits[label]++
			target = rule.OutputLayer
		}

		if !inStack[target] {
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("layer %q assigned to %q which is not in output.layer_stack", l.Name, target))
		}
		res.Buckets[target] = append(res.Buckets[target], l)
	}

	if !noRules {
		for i, r := range cfg.GroupRules {
			if ruleHits[groupLabel(i)] == 0 {
				res.Warnings = append(res.Warnings, fmt.Sprintf("merge.group_rules: no match for %q", r.Pattern))
			}
		}
		for i, r := range cfg.LayerRules {
			if ruleHits[layerLabel(i)] == 0 {
				res.Warnings = append(res.Warnings, fmt.Sprintf("merge.layer_rules: no match for %q", r.Pattern))
			}
		}
	}
	for _, l := range res.Unmatched {
		res.Warnings = append(res.Warnings, fmt.Sprintf("layer %q matched no rule and was dropped", l.Name))
	}

	return res
}

func groupLabel(i int) string { return fmt.Sprintf("g%d", i) }
func layerLabel(i int) string { return fmt.Sprintf("l%d", i) }

// match finds the first rule claiming l: layer rules against the layer's
// own name first, then group rules against each ancestor group from
// innermost to outermost.
func match(l source.LayerRecord, cfg config.MergeConfig) (*config.Rule, string) {
	for i := range cfg.LayerRules {
		if matchPattern(cfg.LayerRules[i].Pattern, l.Name) {
			return &cfg.LayerRules[i], layerLabel(i)
		}
	}
	for g := len(l.GroupPath) - 1; g >= 0; g-- {
		for i := range cfg.GroupRules {
			if matchPattern(cfg.GroupRules[i].Pattern, l.GroupPath[g]) {
				return &cfg.GroupRules[i], groupLabel(i)
			}
		}
	}
	return nil, ""
}

// matchPattern tests name against a path.Match glob. Patterns are
// validated at config load, so a malformed pattern cannot reach here; a
// pattern without metacharacters degrades to an exact comparison.
func matchPattern(pattern, name string) bool {
	ok, err := path.Match(pattern, name)
	return err == nil && ok
}

// Composite renders one full-canvas RGBA image per stack entry from the
// bucket assignments. Buckets hold layers topmost first, so compositing
// walks each bucket back to front with straight alpha-over blending,
// honoring per-layer offsets and opacity. A stack entry with an empty
// bucket yields a fully transparent canvas.
func Composite(res *Result, stack []string, width, height int) map[string]*image.RGBA {
	out := make(map[string]*image.RGBA, len(stack))
	for _, name := range stack {
		canvas := image.NewRGBA(image.Rect(0, 0, width, height))
		bucket := res.Buckets[name]
		for i := len(bucket) - 1; i >= 0; i-- {
			drawLayer(canvas, bucket[i])
		}
		out[name] = canvas
	}
	return out
}

func drawLayer(canvas *image.RGBA, l source.LayerRecord) {
	if l.Image == nil {
		return
	}
	b := l.Image.Bounds()
	dst := image.Rect(l.Offset.X, l.Offset.Y, l.Offset.X+b.Dx(), l.Offset.Y+b.Dy())

	if l.Opacity >= 1.0 {
		draw.Draw(canvas, dst, l.Image, b.Min, draw.Over)
		return
	}
	if l.Opacity <= 0 {
		return
	}
	alpha := uint8(l.Opacity*255 + 0.5)
	mask := image.NewUniform(color.Alpha{A: alpha})
	draw.DrawMask(canvas, dst, l.Image, b.Min, mask, image.Point{}, draw.Over)
}
