package templates

import "github.com/joeblew999/plat-photomap/internal/photomap"

// Popups renders marker popups from the popup-* fragments.
type Popups struct {
	R *Renderer
}

// Popup implements photomap.Renderer.
func (p Popups) Popup(v photomap.PopupView) (string, error) {
	if v.Paging {
		return p.R.Render("popup-multi", v)
	}
	return p.R.Render("popup-single", v)
}

// PopupContent implements photomap.Renderer.
func (p Popups) PopupContent(v photomap.PopupView) (string, error) {
	return p.R.Render("popup-multi-content", v)
}

// MarkerList renders the marker side panel.
func (p Popups) MarkerList(markers []photomap.MarkerState) (string, error) {
	return p.R.Render("marker-list", markers)
}
