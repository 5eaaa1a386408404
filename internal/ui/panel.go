package ui

// Panel is the visibility of a modal panel.
type Panel int

const (
	Closed Panel = iota
	Open
)

// PanelAddCake is the query value that opens the add-cake panel.
const PanelAddCake = "add-cake"

// ParsePanel maps the ?panel= query value to a state for the named panel.
func ParsePanel(value, name string) Panel {
	if value == name {
		return Open
	}
	return Closed
}

func (p Panel) IsOpen() bool { return p == Open }

func (p Panel) String() string {
	if p == Open {
		return "open"
	}
	return "closed"
}
