package tui

import (
	"strings"
	"sync"
)

// Some fonts render box drawing and triangles badly; the ascii set is the
// fallback for those terminals.

type glyphSet int

const (
	glyphSetUnicode glyphSet = iota
	glyphSetASCII
)

var (
	glyphsMu      sync.RWMutex
	currentGlyphs = glyphSetUnicode
)

func applyGlyphPreference(name string) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "ascii":
		setGlyphs(glyphSetASCII)
	default:
		setGlyphs(glyphSetUnicode)
	}
}

func setGlyphs(gs glyphSet) {
	glyphsMu.Lock()
	currentGlyphs = gs
	glyphsMu.Unlock()
}

func glyphs() glyphSet {
	glyphsMu.RLock()
	defer glyphsMu.RUnlock()
	return currentGlyphs
}

func glyphTwistyCollapsed() string {
	if glyphs() == glyphSetASCII {
		return ">"
	}
	return "▸"
}

func glyphTwistyExpanded() string {
	if glyphs() == glyphSetASCII {
		return "v"
	}
	return "▾"
}

func glyphChecked() string {
	if glyphs() == glyphSetASCII {
		return "[x]"
	}
	return "☑"
}

func glyphPartial() string {
	if glyphs() == glyphSetASCII {
		return "[-]"
	}
	return "◩"
}

func glyphUnchecked() string {
	if glyphs() == glyphSetASCII {
		return "[ ]"
	}
	return "☐"
}

func glyphConcat() string {
	if glyphs() == glyphSetASCII {
		return "+"
	}
	return "⊕"
}

func glyphAnchor() string {
	if glyphs() == glyphSetASCII {
		return "o"
	}
	return "●"
}

// Stroke glyphs for the connector gutter.
type strokeSet struct {
	h, v, hDashed, vDashed     string
	cornerDown, cornerUp       string
	cornerDownEnd, cornerUpEnd string
	plugSquare, plugArrow      string
}

func strokes() strokeSet {
	if glyphs() == glyphSetASCII {
		return strokeSet{
			h: "-", v: "|", hDashed: ".", vDashed: ":",
			cornerDown: "+", cornerUp: "+", cornerDownEnd: "+", cornerUpEnd: "+",
			plugSquare: "#", plugArrow: ">",
		}
	}
	return strokeSet{
		h: "─", v: "│", hDashed: "┄", vDashed: "┆",
		cornerDown: "┐", cornerUp: "┘", cornerDownEnd: "└", cornerUpEnd: "┌",
		plugSquare: "■", plugArrow: "▶",
	}
}
