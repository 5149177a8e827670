package domain

// LatLon is a WGS-84 coordinate pair.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// DefaultMapZoom is the initial zoom level of the map block.
const DefaultMapZoom = 5

// Marker is one map pin. Label is used for both tooltip and popup.
// FilterLocation is the location criterion a click on the marker applies.
type Marker struct {
	Position       LatLon `json:"position"`
	Label          string `json:"label"`
	Place          string `json:"place,omitempty"`
	FilterLocation string `json:"filter_location,omitempty"`
}

// MapView is the geo-spatial block: one marker per record, centered on the mean coordinate.
type MapView struct {
	Center  LatLon   `json:"center"`
	Zoom    int      `json:"zoom"`
	Markers []Marker `json:"markers"`
}

// BuildMap places a marker for every record in v. An empty view has no
// markers and a zero center.
func BuildMap(v *FilteredView) MapView {
	mv := MapView{Zoom: DefaultMapZoom, Markers: make([]Marker, 0, v.Len())}
	if v.Empty() {
		return mv
	}

	var sumLat, sumLon float64
	for i := range v.Records {
		r := &v.Records[i]
		sumLat += r.Latitude
		sumLon += r.Longitude
		mv.Markers = append(mv.Markers, Marker{
			Position:       LatLon{Lat: r.Latitude, Lon: r.Longitude},
			Label:          r.Location,
			Place:          r.Place,
			FilterLocation: r.Location,
		})
	}
	n := float64(v.Len())
	mv.Center = LatLon{Lat: sumLat / n, Lon: sumLon / n}
	return mv
}
