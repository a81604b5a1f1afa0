package geo

// Degree margins applied around map views. One degree is roughly 111 km, so
// the centered box spans about 222 km and the fitted box adds ~55 km of
// breathing room around the outermost markers.
const (
	centerMarginDeg = 1.0
	fitMarginDeg    = 0.5
)

// BoundingBox is a west/south/east/north box in decimal degrees.
type BoundingBox struct {
	West  float64 `json:"west"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	North float64 `json:"north"`
}

// Marker is a single map marker with a display color tag.
type Marker struct {
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	ColorTag string  `json:"color_tag"`
}

// MapView is the renderer-facing output of a search: a bounding box plus the
// marker list. The core computes it but never renders.
type MapView struct {
	BBox    BoundingBox `json:"bbox"`
	Markers []Marker    `json:"markers"`
}

// CenteredBox returns a bounding box centered on c with a fixed one-degree
// margin on each side.
func CenteredBox(c Coordinate) BoundingBox {
	return BoundingBox{
		West:  c.Lon - centerMarginDeg,
		South: c.Lat - centerMarginDeg,
		East:  c.Lon + centerMarginDeg,
		North: c.Lat + centerMarginDeg,
	}
}

// FitBox returns a bounding box spanning all the given coordinates with a
// half-degree margin. Returns false when coords is empty.
func FitBox(coords []Coordinate) (BoundingBox, bool) {
	if len(coords) == 0 {
		return BoundingBox{}, false
	}
	minLat, maxLat := coords[0].Lat, coords[0].Lat
	minLon, maxLon := coords[0].Lon, coords[0].Lon
	for _, c := range coords[1:] {
		minLat = min(minLat, c.Lat)
		maxLat = max(maxLat, c.Lat)
		minLon = min(minLon, c.Lon)
		maxLon = max(maxLon, c.Lon)
	}
	return BoundingBox{
		West:  minLon - fitMarginDeg,
		South: minLat - fitMarginDeg,
		East:  maxLon + fitMarginDeg,
		North: maxLat + fitMarginDeg,
	}, true
}
