package dom

import (
	"regexp"
	"strings"

	"browser-automation/internal/domain/entity"
	"browser-automation/internal/domain/geometry"
)

// Locator is one concrete way of reaching an element: a selector to query or
// a point to press.
type Locator struct {
	Strategy string
	Selector string
	Point    geometry.Point
}

// ByPoint reports whether the locator targets coordinates.
func (l Locator) ByPoint() bool {
	return l.Selector == ""
}

// Strategy derives a locator from a snapshot element, or reports that it
// does not apply.
type Strategy interface {
	Name() string
	Locate(el *entity.ElementNode) (Locator, bool)
}

// DefaultStrategies is evaluated top-down: id, then name, then coordinates.
var DefaultStrategies = []Strategy{IDStrategy{}, NameStrategy{}, CoordinateStrategy{}}

var plainIdent = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

type IDStrategy struct{}

func (IDStrategy) Name() string { return "id" }

func (IDStrategy) Locate(el *entity.ElementNode) (Locator, bool) {
	id := el.Attr("id")
	if id == "" {
		return Locator{}, false
	}
	if plainIdent.MatchString(id) {
		return Locator{Strategy: "id", Selector: "#" + id}, true
	}
	return Locator{Strategy: "id", Selector: attrSelector("id", id)}, true
}

type NameStrategy struct{}

func (NameStrategy) Name() string { return "name" }

func (NameStrategy) Locate(el *entity.ElementNode) (Locator, bool) {
	name := el.Attr("name")
	if name == "" {
		return Locator{}, false
	}
	return Locator{Strategy: "name", Selector: attrSelector("name", name)}, true
}

type CoordinateStrategy struct{}

func (CoordinateStrategy) Name() string { return "coordinates" }

func (CoordinateStrategy) Locate(el *entity.ElementNode) (Locator, bool) {
	p, ok := ClickPoint(el)
	if !ok {
		return Locator{}, false
	}
	return Locator{Strategy: "coordinates", Point: p}, true
}

// ClickPoint is where pointer input lands for el. Input events are dispatched
// in top-level viewport space, so the viewport rect wins when it is known;
// Capture has already shifted it by the offset of the enclosing frames.
func ClickPoint(el *entity.ElementNode) (geometry.Point, bool) {
	if el.ViewportCoordinates != nil && !el.ViewportCoordinates.Empty() {
		return el.ViewportCoordinates.Center(), true
	}
	if el.PageCoordinates != nil && !el.PageCoordinates.Empty() {
		return el.PageCoordinates.Center(), true
	}
	return geometry.Point{}, false
}

func attrSelector(name, value string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(value)
	return `[` + name + `="` + escaped + `"]`
}
