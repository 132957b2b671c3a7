package tui

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/roeyazroel/launchpad-tui/internal/launchpad"
)

// bugTitleRe splits a bug task title like
//
//	Bug #2093869 in OpenStack Compute (nova): "live migration fails"
//
// into the bug number and the quoted summary.
var bugTitleRe = regexp.MustCompile(`#(\d+) in .+?:\s+"(.+)"`)

const tablePageSize = 10

// bugRow is one rendered table row.
type bugRow struct {
	id    uint
	date  string
	title string
}

// rowsFromTasks derives display rows from task entries.
func rowsFromTasks(tasks []launchpad.BugTask) []bugRow {
	rows := make([]bugRow, 0, len(tasks))
	for _, task := range tasks {
		row := bugRow{title: task.Title}
		if m := bugTitleRe.FindStringSubmatch(task.Title); m != nil {
			if id, err := strconv.ParseUint(m[1], 10, 32); err == nil {
				row.id = uint(id)
			}
			row.title = m[2]
		}
		if row.id == 0 {
			row.id = bugIDFromLink(task.BugLink)
		}
		if !task.DateCreated.IsZero() {
			row.date = task.DateCreated.Format("2006-01-02")
		}
		rows = append(rows, row)
	}
	return rows
}

// bugIDFromLink extracts the numeric id from the trailing segment of a
// bug_link URL, or 0 when there is none.
func bugIDFromLink(link string) uint {
	segment := link
	if idx := strings.LastIndexByte(link, '/'); idx >= 0 {
		segment = link[idx+1:]
	}
	id, err := strconv.ParseUint(segment, 10, 32)
	if err != nil {
		return 0
	}
	return uint(id)
}

// bugTable renders the bug task list and tracks the selection. Up and Down
// wrap around the ends; paging clamps.
type bugTable struct {
	view  *tview.Table
	tasks []launchpad.BugTask
	rows  []bugRow
}

func newBugTable() *bugTable {
	view := tview.NewTable()
	view.SetBorder(true)
	view.SetSelectable(true, false)
	view.SetFixed(1, 0)
	view.SetSelectedStyle(tcell.StyleDefault.
		Background(tcell.ColorLightCyan).
		Foreground(tcell.ColorBlack).
		Bold(true))

	for col, header := range []string{"Bug ID", "Date", "Title"} {
		cell := tview.NewTableCell(header).
			SetTextColor(tcell.ColorRed).
			SetSelectable(false)
		if col == 2 {
			cell.SetExpansion(1)
		}
		view.SetCell(0, col, cell)
	}

	return &bugTable{view: view}
}

// SetTasks replaces the table contents and selects the first row when one
// exists.
func (t *bugTable) SetTasks(tasks []launchpad.BugTask) {
	t.tasks = tasks
	t.rows = rowsFromTasks(tasks)

	for t.view.GetRowCount() > 1 {
		t.view.RemoveRow(t.view.GetRowCount() - 1)
	}
	for i, row := range t.rows {
		t.view.SetCell(i+1, 0, tview.NewTableCell(fmt.Sprintf("%d", row.id)))
		t.view.SetCell(i+1, 1, tview.NewTableCell(row.date))
		t.view.SetCell(i+1, 2, tview.NewTableCell(row.title).SetExpansion(1))
	}

	if len(t.rows) > 0 {
		t.view.Select(1, 0)
	}
}

// Count reports the number of task rows.
func (t *bugTable) Count() int {
	return len(t.rows)
}

// SelectedIndex reports the selected row index, or -1 when nothing is
// selected.
func (t *bugTable) SelectedIndex() int {
	row, _ := t.view.GetSelection()
	idx := row - 1
	if idx < 0 || idx >= len(t.rows) {
		return -1
	}
	return idx
}

// Selected returns the selected task, or nil when the table is empty.
func (t *bugTable) Selected() *launchpad.BugTask {
	idx := t.SelectedIndex()
	if idx < 0 {
		return nil
	}
	return &t.tasks[idx]
}

// SelectedRow returns the rendered row for the selection, or nil.
func (t *bugTable) SelectedRow() *bugRow {
	idx := t.SelectedIndex()
	if idx < 0 {
		return nil
	}
	return &t.rows[idx]
}

func (t *bugTable) selectIndex(idx int) {
	t.view.Select(idx+1, 0)
}

// Previous moves the selection up, wrapping to the last row at the top.
func (t *bugTable) Previous() {
	if len(t.rows) == 0 {
		return
	}
	idx := t.SelectedIndex()
	switch {
	case idx < 0:
		idx = 0
	case idx == 0:
		idx = len(t.rows) - 1
	default:
		idx--
	}
	t.selectIndex(idx)
}

// Next moves the selection down, wrapping to the first row at the bottom.
func (t *bugTable) Next() {
	if len(t.rows) == 0 {
		return
	}
	idx := t.SelectedIndex()
	switch {
	case idx < 0:
		idx = 0
	case idx >= len(t.rows)-1:
		idx = 0
	default:
		idx++
	}
	t.selectIndex(idx)
}

// PageUp moves the selection up by a page, stopping at the first row.
func (t *bugTable) PageUp() {
	if len(t.rows) == 0 {
		return
	}
	idx := t.SelectedIndex()
	if idx < 0 {
		idx = 0
	} else if idx > tablePageSize {
		idx -= tablePageSize
	} else {
		idx = 0
	}
	t.selectIndex(idx)
}

// PageDown moves the selection down by a page, stopping at the last row.
func (t *bugTable) PageDown() {
	if len(t.rows) == 0 {
		return
	}
	idx := t.SelectedIndex()
	if idx < 0 {
		idx = 0
	} else if idx+tablePageSize < len(t.rows) {
		idx += tablePageSize
	} else {
		idx = len(t.rows) - 1
	}
	t.selectIndex(idx)
}

// First selects the first row.
func (t *bugTable) First() {
	if len(t.rows) == 0 {
		return
	}
	t.selectIndex(0)
}

// Last selects the last row.
func (t *bugTable) Last() {
	if len(t.rows) == 0 {
		return
	}
	t.selectIndex(len(t.rows) - 1)
}
