package layout

import (
	"html/template"
	"io"
)

// Slot is the nested content a page hands to the layout. The layout writes
// it unmodified between the navbar and the footer.
type Slot interface {
	Render(w io.Writer) error
}

type SlotFunc func(w io.Writer) error

func (f SlotFunc) Render(w io.Writer) error { return f(w) }

// HTML wraps already-safe markup as a Slot.
func HTML(h template.HTML) Slot {
	return SlotFunc(func(w io.Writer) error {
		_, err := io.WriteString(w, string(h))
		return err
	})
}

// Template renders the named template of t with data as a Slot.
func Template(t *template.Template, name string, data any) Slot {
	return SlotFunc(func(w io.Writer) error {
		return t.ExecuteTemplate(w, name, data)
	})
}
