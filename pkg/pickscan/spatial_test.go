package pickscan

import (
	"image"
	"testing"
)

func el(text string, left, top, w, h int) TextElement {
	return TextElement{Text: text, Box: image.Rect(left, top, left+w, top+h)}
}

func singleBlock(els ...TextElement) []TextBlock {
	return []TextBlock{{Lines: []TextLine{{Elements: els}}}}
}

func clickAt(x, y int) ClickContext {
	return ClickContext{Position: image.Pt(x, y), ImageSize: image.Pt(1080, 1920)}
}

func TestRadiusBoundaryInclusive(t *testing.T) {
	// Center at (100, 0): exactly the radius away from the origin.
	blocks := singleBlock(el("edge", 90, -10, 20, 20))
	near := nearbyElements(blocks, clickAt(0, 0), 100)
	if len(near) != 1 {
		t.Fatalf("element at exactly radius distance must be included, got %d", len(near))
	}
	if near[0].Distance != 100 {
		t.Fatalf("expected distance 100 got %v", near[0].Distance)
	}

	// One pixel further: excluded.
	blocks = singleBlock(el("beyond", 91, -10, 20, 20))
	near = nearbyElements(blocks, clickAt(0, 0), 100)
	if len(near) != 0 {
		t.Fatalf("element beyond radius must be excluded, got %d", len(near))
	}
}

func TestNearbyKeepsDiscoveryOrder(t *testing.T) {
	blocks := []TextBlock{
		{Lines: []TextLine{
			{Elements: []TextElement{el("a", 0, 0, 10, 10), el("b", 20, 0, 10, 10)}},
			{Elements: []TextElement{el("c", 0, 20, 10, 10)}},
		}},
		{Lines: []TextLine{{Elements: []TextElement{el("d", 20, 20, 10, 10)}}}},
	}
	near := nearbyElements(blocks, clickAt(15, 15), 100)
	want := []string{"a", "b", "c", "d"}
	if len(near) != len(want) {
		t.Fatalf("expected %d elements got %d", len(want), len(near))
	}
	for i, w := range want {
		if near[i].Text != w {
			t.Fatalf("position %d: expected %q got %q", i, w, near[i].Text)
		}
	}
}

func TestNearbyEmptyInput(t *testing.T) {
	if near := nearbyElements(nil, clickAt(10, 10), 100); len(near) != 0 {
		t.Fatalf("nil input should select nothing, got %d", len(near))
	}
	blocks := singleBlock(el("far", 5000, 5000, 10, 10))
	if near := nearbyElements(blocks, clickAt(10, 10), 100); len(near) != 0 {
		t.Fatalf("distant element should select nothing, got %d", len(near))
	}
}

func TestSortByDistanceStable(t *testing.T) {
	els := []nearbyElement{
		{TextElement: TextElement{Text: "tie1"}, Distance: 50},
		{TextElement: TextElement{Text: "near"}, Distance: 10},
		{TextElement: TextElement{Text: "tie2"}, Distance: 50},
	}
	sortByDistance(els)
	if els[0].Text != "near" || els[1].Text != "tie1" || els[2].Text != "tie2" {
		t.Fatalf("unexpected order: %q %q %q", els[0].Text, els[1].Text, els[2].Text)
	}
}
