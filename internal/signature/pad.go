// Package signature turns a freehand pointer path into an embeddable PNG data URL.
package signature

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
)

const (
	// DefaultWidth and DefaultHeight size the drawing surface.
	DefaultWidth  = 400
	DefaultHeight = 140

	lineWidth = 2.5

	dataURLPrefix = "data:image/png;base64,"
)

var (
	// ErrInactive is returned when strokes are sent to a pad that already holds a value.
	ErrInactive = errors.New("signature already captured")
	// ErrEmpty is returned when the strokes never formed a path.
	ErrEmpty = errors.New("signature is empty")
)

// Point is a surface coordinate in pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pad is a single-value drawing surface. It is active only while no value is stored;
// the first finished non-empty path is rendered and stored, which deactivates it.
type Pad struct {
	width, height int
	value         string
	drawing       bool
	path          []Point
}

// NewPad returns an active pad of the given size.
func NewPad(width, height int) *Pad {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return &Pad{width: width, height: height}
}

// Load restores a stored value; a non-empty value deactivates the pad.
func (p *Pad) Load(value string) {
	p.value = value
	p.drawing = false
	p.path = nil
}

// Active reports whether the pad accepts pointer input.
func (p *Pad) Active() bool {
	return p.value == ""
}

// Value is the stored data URL, empty when none.
func (p *Pad) Value() string {
	return p.value
}

// PointerDown starts a new path.
func (p *Pad) PointerDown(pt Point) {
	if !p.Active() {
		return
	}
	p.drawing = true
	p.path = []Point{p.clamp(pt)}
}

// PointerMove extends the current path.
func (p *Pad) PointerMove(pt Point) {
	if !p.drawing {
		return
	}
	p.path = append(p.path, p.clamp(pt))
}

// PointerUp finishes the current path.
func (p *Pad) PointerUp() {
	p.finish()
}

// PointerLeave finishes the current path, as leaving the surface does.
func (p *Pad) PointerLeave() {
	p.finish()
}

// Clear removes the stored value and re-arms the pad.
func (p *Pad) Clear() {
	p.value = ""
	p.drawing = false
	p.path = nil
}

// Replay feeds each stroke through down/move/up. Strokes after the first
// finished path are ignored because the pad is no longer active.
func (p *Pad) Replay(strokes [][]Point) error {
	if !p.Active() {
		return ErrInactive
	}
	for _, stroke := range strokes {
		if len(stroke) == 0 {
			continue
		}
		p.PointerDown(stroke[0])
		for _, pt := range stroke[1:] {
			p.PointerMove(pt)
		}
		p.PointerUp()
	}
	if p.value == "" {
		return ErrEmpty
	}
	return nil
}

func (p *Pad) finish() {
	if !p.drawing {
		return
	}
	p.drawing = false
	path := p.path
	p.path = nil
	if len(path) < 2 {
		return
	}
	value, err := Render(p.width, p.height, path)
	if err != nil {
		return
	}
	p.value = value
}

func (p *Pad) clamp(pt Point) Point {
	return Point{
		X: math.Max(0, math.Min(pt.X, float64(p.width-1))),
		Y: math.Max(0, math.Min(pt.Y, float64(p.height-1))),
	}
}

// Render draws path as a black round-capped line on a transparent surface and
// returns it as a PNG data URL.
func Render(width, height int, path []Point) (string, error) {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	ink := color.NRGBA{A: 0xff}
	radius := lineWidth / 2

	for i := 1; i < len(path); i++ {
		a, b := path[i-1], path[i]
		dist := math.Hypot(b.X-a.X, b.Y-a.Y)
		steps := int(math.Ceil(dist/0.5)) + 1
		for s := 0; s <= steps; s++ {
			t := float64(s) / float64(steps)
			dot(img, a.X+(b.X-a.X)*t, a.Y+(b.Y-a.Y)*t, radius, ink)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return dataURLPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func dot(img *image.NRGBA, cx, cy, r float64, c color.NRGBA) {
	bounds := img.Bounds()
	minX, maxX := int(math.Floor(cx-r)), int(math.Ceil(cx+r))
	minY, maxY := int(math.Floor(cy-r)), int(math.Ceil(cy+r))
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			if !(image.Point{X: x, Y: y}).In(bounds) {
				continue
			}
			if math.Hypot(float64(x)+0.5-cx, float64(y)+0.5-cy) <= r {
				img.SetNRGBA(x, y, c)
			}
		}
	}
}

// Decode returns the image held in a data URL produced by Render.
func Decode(value string) (image.Image, error) {
	if len(value) <= len(dataURLPrefix) || value[:len(dataURLPrefix)] != dataURLPrefix {
		return nil, errors.New("not a PNG data URL")
	}
	raw, err := base64.StdEncoding.DecodeString(value[len(dataURLPrefix):])
	if err != nil {
		return nil, err
	}
	return png.Decode(bytes.NewReader(raw))
}
