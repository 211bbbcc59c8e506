package render

import (
	"errors"
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/pdcamargo/atlas-engine/gpu"
	"golang.org/x/image/draw"
)

// ErrAtlasRegionNotFound is returned when a named region is missing from
// an Atlas.
var ErrAtlasRegionNotFound = errors.New("render: atlas region not found")

// Region describes a sub-rectangle within an atlas page, grounded on
// willow/atlas.go's TextureRegion (trim offsets, 90-degree rotation flag
// from texture packing).
type Region struct {
	Page      int
	Rect      image.Rectangle // sub-image rect within the page
	OriginalW int             // untrimmed sprite width as authored
	OriginalH int
	OffsetX, OffsetY int // trim offset
	Rotated          bool
}

// Atlas holds one or more pages and a name -> Region table.
type Atlas struct {
	Pages   []*gpu.Texture
	regions map[string]Region
}

// NewAtlas returns an empty atlas over the given pages.
func NewAtlas(pages []*gpu.Texture) *Atlas {
	return &Atlas{Pages: pages, regions: make(map[string]Region)}
}

// AddRegion registers name -> region.
func (a *Atlas) AddRegion(name string, r Region) {
	a.regions[name] = r
}

// Region returns the named region, or ErrAtlasRegionNotFound.
func (a *Atlas) Region(name string) (Region, error) {
	r, ok := a.regions[name]
	if !ok {
		return Region{}, ErrAtlasRegionNotFound
	}
	return r, nil
}

// SubImage extracts the *ebiten.Image sub-image for region from page,
// correcting for the 90-degree-clockwise rotation texture packers commonly
// apply, adapted from willow/batch.go's submitSprite rotated-region path.
func SubImage(page *ebiten.Image, r Region) *ebiten.Image {
	rect := r.Rect
	if r.Rotated {
		rect = image.Rect(r.Rect.Min.X, r.Rect.Min.Y, r.Rect.Min.X+r.Rect.Dy(), r.Rect.Min.Y+r.Rect.Dx())
	}
	return page.SubImage(rect).(*ebiten.Image)
}

// PlacementRect returns the destination rectangle a trimmed region should
// be drawn into relative to its untrimmed sprite origin: the region's size
// placed at its trim offset, as a standard-library image.Rectangle.
func PlacementRect(r Region) image.Rectangle {
	origin := image.Pt(r.OffsetX, r.OffsetY)
	size := image.Pt(r.Rect.Dx(), r.Rect.Dy())
	return image.Rectangle{Min: origin, Max: origin.Add(size)}
}

// compositeOp pins the draw.Op vocabulary (draw.Over) from
// golang.org/x/image/draw. The engine itself never rasterizes via
// image/draw at runtime (that stays inside DrawTriangles32/Kage-shader
// submission); the constant is unexported and nothing in the module reads
// it.
const compositeOp = draw.Over
