package mapview

import (
	"math"

	"github.com/paulmach/orb/maptile"
)

// maxTileReach limits the tile set to this many screen sizes from the view
// center. Corners of a tilted view approach the horizon and would otherwise
// unproject arbitrarily far away.
const maxTileReach = 4

// Tiles returns the grid tiles covering the view at the current grid zoom,
// row by row from the north-west corner.
//
// Columns wrap around the antimeridian; rows outside the world are dropped.
// On a tilted view, tiles farther than maxTileReach screen sizes from the
// center are left out.
// This is the tile set a renderer requests after a grid update.
//
// Example:
//
//	tiles, _ := view.Tiles()
//	for _, t := range tiles {
//	    fmt.Printf("%d/%d/%d covers %v\n", t.Z, t.X, t.Y, t.Bound())
//	}
func (c *Controller) Tiles() (maptile.Tiles, error) {
	if c.disposed {
		return nil, ErrDisposed
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range [4]PixelPoint{
		{X: 0, Y: 0},
		{X: c.width, Y: 0},
		{X: c.width, Y: c.height},
		{X: 0, Y: c.height},
	} {
		w := c.worldPixel(p.X, p.Y)
		minX, maxX = math.Min(minX, w.X), math.Max(maxX, w.X)
		minY, maxY = math.Min(minY, w.Y), math.Max(maxY, w.Y)
	}

	reach := maxTileReach * math.Max(c.width, c.height) / c.scale
	minX, maxX = math.Max(minX, c.centerWorld.X-reach), math.Min(maxX, c.centerWorld.X+reach)
	minY, maxY = math.Max(minY, c.centerWorld.Y-reach), math.Min(maxY, c.centerWorld.Y+reach)

	n := int64(1) << uint(c.gridZoom)
	x0 := int64(math.Floor(minX / c.tileSize))
	x1 := int64(math.Ceil(maxX/c.tileSize)) - 1
	y0 := int64(math.Max(0, math.Floor(minY/c.tileSize)))
	y1 := int64(math.Min(float64(n), math.Ceil(maxY/c.tileSize))) - 1

	if x1 < x0 {
		x1 = x0
	}
	if x1-x0+1 >= n {
		x0, x1 = 0, n-1
	}
	if y1 < y0 {
		return maptile.Tiles{}, nil
	}

	z := maptile.Zoom(c.gridZoom)
	tiles := make(maptile.Tiles, 0, (x1-x0+1)*(y1-y0+1))
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			wx := ((x % n) + n) % n
			tiles = append(tiles, maptile.New(uint32(wx), uint32(y), z))
		}
	}
	return tiles, nil
}
