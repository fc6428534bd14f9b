package form

import (
	"sync"

	"github.com/denysvitali/share-viewer/internal/models"
	"github.com/denysvitali/share-viewer/pkg/tree"
)

// Panels is the visible state of the widget regions.
type Panels struct {
	Loading   bool
	Error     bool
	ErrorText string
	Result    bool
}

// Response converts the panels into their JSON form.
func (p Panels) Response() models.PanelsResponse {
	return models.PanelsResponse{
		Loading:   p.Loading,
		Error:     p.Error,
		ErrorText: p.ErrorText,
		Result:    p.Result,
	}
}

// PanelView is a View that records panel state and renders results into a tree.Display.
type PanelView struct {
	mu      sync.Mutex
	panels  Panels
	display *tree.Display
}

// NewPanelView creates a view rendering into display. A nil display gets a fresh one.
func NewPanelView(display *tree.Display) *PanelView {
	if display == nil {
		display = tree.NewDisplay()
	}
	return &PanelView{display: display}
}

// ShowLoading shows the loading indicator and hides the error and result panels.
func (v *PanelView) ShowLoading() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.panels.Loading = true
	v.panels.Error = false
	v.panels.ErrorText = ""
	v.panels.Result = false
}

// HideLoading hides the loading indicator.
func (v *PanelView) HideLoading() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.panels.Loading = false
}

// ShowError shows the error panel with message.
func (v *PanelView) ShowError(message string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.panels.Error = true
	v.panels.ErrorText = message
}

// ShowResult renders entries and shows the result panel.
func (v *PanelView) ShowResult(entries []models.ListingEntry) {
	v.display.Render(entries)
	v.mu.Lock()
	defer v.mu.Unlock()
	v.panels.Result = true
}

// Panels returns a snapshot of the panel state.
func (v *PanelView) Panels() Panels {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.panels
}

// Display returns the display results are rendered into.
func (v *PanelView) Display() *tree.Display {
	return v.display
}
