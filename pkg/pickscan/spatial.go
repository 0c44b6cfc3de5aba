package pickscan

import (
	"math"
	"sort"
)

// DefaultClickRadius is the selection radius in pixels around the click.
const DefaultClickRadius = 100.0

// nearbyElements flattens blocks -> lines -> elements and keeps every element
// whose bounding-box center lies within radius of the click (closed bound: a
// center exactly at the radius is kept). Order follows the input nesting; no
// distance ordering is applied here.
func nearbyElements(blocks []TextBlock, click ClickContext, radius float64) []nearbyElement {
	var out []nearbyElement
	for _, b := range blocks {
		for _, l := range b.Lines {
			for _, el := range l.Elements {
				cx, cy := el.center()
				d := math.Hypot(cx-float64(click.Position.X), cy-float64(click.Position.Y))
				if d <= radius {
					out = append(out, nearbyElement{TextElement: el, Distance: d})
				}
			}
		}
	}
	return out
}

// sortByDistance orders elements nearest-first. Stable so that equally
// distant elements keep their discovery order.
func sortByDistance(els []nearbyElement) {
	sort.SliceStable(els, func(i, j int) bool {
		return els[i].Distance < els[j].Distance
	})
}
