package connector

// Rect is an anchor's on-screen box.
type Rect struct {
	X, Y          int
	Width, Height int
}

// AnchorResolver answers which anchors are currently rendered and where.
type AnchorResolver interface {
	Exists(id string) bool
	RectOf(id string) (Rect, bool)
}

type Plug string

const (
	PlugBehind Plug = "behind"
	PlugSquare Plug = "square"
	PlugArrow  Plug = "arrow"
)

// Style describes how a connector is drawn.
type Style struct {
	Color       string
	Size        int
	Dashed      bool
	StartPlug   Plug
	EndPlug     Plug
	MiddleLabel string
}

// ExactStyle is used when both endpoints resolved to their own anchors.
func ExactStyle() Style {
	return Style{Color: "black", Size: 1, StartPlug: PlugSquare, EndPlug: PlugSquare, MiddleLabel: "Delete"}
}

// ApproximateStyle is used when an endpoint was replaced by an ancestor.
func ApproximateStyle() Style {
	return Style{Color: "black", Size: 1, Dashed: true, StartPlug: PlugSquare, EndPlug: PlugSquare}
}

// Line is one drawn connector.
type Line interface {
	// Remove erases the line; it must not be used afterwards.
	Remove()
	// Position recomputes geometry after scroll or resize.
	Position()
}

// Renderer draws connectors between anchors.
type Renderer interface {
	Draw(from, to string, style Style) (Line, error)
}
