package mapview

// ClickEvent is a click reported by the widget. TaxiID is empty for a bare-canvas click.
type ClickEvent struct {
	TaxiID string `json:"taxiId,omitempty"`
}

type ClickAction int

const (
	ClickIgnore ClickAction = iota
	ClickSelect
	ClickDeselect
)

func (a ClickAction) String() string {
	switch a {
	case ClickSelect:
		return "select"
	case ClickDeselect:
		return "deselect"
	default:
		return "ignore"
	}
}

// HandleClick decides what a click does to the selection. A canvas click that follows a marker
// click within the click window is the same gesture propagating and is ignored.
func (v *View) HandleClick(ev ClickEvent) ClickAction {
	now := v.opts.Now()
	if ev.TaxiID != "" {
		v.lastMarkerClick = now
		return ClickSelect
	}
	if !v.lastMarkerClick.IsZero() && now.Sub(v.lastMarkerClick) < v.opts.ClickWindow {
		return ClickIgnore
	}
	return ClickDeselect
}
