package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/truncate"

	"github.com/idilsaglam/itemdesk/internal/model"
	"github.com/idilsaglam/itemdesk/internal/ui"
)

const createdLayout = "2006-01-02 15:04"

// row adapts a cached Item to bubbles/list.Item
type row struct {
	item model.Item
}

func (r row) FilterValue() string { return r.item.Title }

func rowsOf(items []model.Item) []list.Item {
	out := make([]list.Item, 0, len(items))
	for _, it := range items {
		out = append(out, row{item: it})
	}
	return out
}

// rowState is what the delegate needs beyond the item itself. The model
// refreshes it before every list render.
type rowState struct {
	editingID int
	editing   bool
	saving    bool
	editTitle string
	editDesc  string
	pending   map[int]bool
	spinner   string
	width     int
}

// itemDelegate renders two lines per item; the row under edit is replaced
// by the edit inputs.
type itemDelegate struct {
	state *rowState
}

func (d itemDelegate) Height() int                               { return 2 }
func (d itemDelegate) Spacing() int                              { return 1 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	r, ok := item.(row)
	if !ok {
		return
	}
	fmt.Fprint(w, renderRow(r.item, *d.state, index == m.Index()))
}

// renderRow is a pure function of its inputs.
func renderRow(it model.Item, st rowState, selected bool) string {
	t := ui.Current()
	width := st.width
	if width <= 0 {
		width = 80
	}
	clip := func(s string, reserve int) string {
		w := width - reserve
		if w < 8 {
			w = 8
		}
		return truncate.StringWithTail(s, uint(w), "...")
	}

	prefix := "  "
	if selected {
		prefix = t.Selected.Render(t.SymCursor) + " "
	}

	if st.editing && st.editingID == it.ID {
		label := t.Accent.Render("edit")
		if st.saving {
			label = t.Pending.Render(st.spinner + " saving")
		}
		return prefix + label + " " + st.editTitle + "\n" +
			"       " + st.editDesc
	}

	id := t.Muted.Render(fmt.Sprintf("#%d", it.ID))
	title := clip(it.Title, 12)
	if st.pending[it.ID] {
		spin := st.spinner
		if spin == "" {
			spin = t.SymBusy
		}
		first := prefix + t.Pending.Render(spin) + " " + t.Muted.Render(title) + " " + id
		return first + "\n    " + t.Muted.Render("deleting...")
	}

	first := prefix + title + " " + id
	var meta []string
	if desc := strings.TrimSpace(it.Description); desc != "" {
		meta = append(meta, clip(firstLine(desc), 30))
	}
	if c := it.Created(); !c.IsZero() {
		meta = append(meta, t.Muted.Render("created "+c.Local().Format(createdLayout)))
	}
	return first + "\n    " + strings.Join(meta, "  ")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " ..."
	}
	return s
}
