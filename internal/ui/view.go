package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"tally/internal/config"
	"tally/internal/task"
)

const (
	deadlineFormat    = "Jan 02, 03:04 PM"
	descriptionCutoff = 15
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	doneStyle   = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	faintStyle  = lipgloss.NewStyle().Faint(true)
	clockStyle  = lipgloss.NewStyle().Bold(true)

	priorityStyles = map[task.Priority]lipgloss.Style{
		task.High:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		task.Medium: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		task.Low:    lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	}
)

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("My Todo List"))
	if m.pending > 0 {
		b.WriteString(" " + m.spinner.View())
	}
	b.WriteString("\n")
	b.WriteString(faintStyle.Render(m.renderFilterLine()))
	b.WriteString("\n\n")

	visible := m.tasks.Derived()
	if len(visible) == 0 {
		if len(m.tasks.Tasks()) == 0 {
			b.WriteString("No tasks yet. Press 'a' to add one.")
		} else {
			b.WriteString("No tasks match the current filter.")
		}
		b.WriteString("\n")
	} else {
		b.WriteString(m.renderTaskList(visible))
	}

	b.WriteString("\n---\n")

	switch {
	case m.form != nil:
		b.WriteString("Add task (tab/shift+tab to move, enter to save/next, esc to cancel)")
		b.WriteString("\n\n")
		b.WriteString(m.renderFormBox())
		b.WriteString("\n")
		b.WriteString("Field: " + m.form.currentLabel())
		b.WriteString("\n")
		b.WriteString(m.input.View())
	case m.mode == modeSearch:
		b.WriteString("Search: ")
		b.WriteString(m.input.View())
	case m.showDetail && len(visible) > 0:
		b.WriteString(m.renderDetailPanel(visible[clampCursor(m.cursor, len(visible))]))
	}

	b.WriteString("\n\n")
	b.WriteString(m.status)
	b.WriteString("\n")
	b.WriteString(faintStyle.Render(renderHelp(m.cfg.Keys)))

	return b.String()
}

func (m Model) renderFilterLine() string {
	cfg := m.tasks.Config()
	prio := "all"
	if cfg.PriorityFilter != nil {
		prio = cfg.PriorityFilter.String()
	}
	search := "(none)"
	if cfg.SearchQuery != "" {
		search = fmt.Sprintf("%q", cfg.SearchQuery)
	}
	return fmt.Sprintf("search: %s • priority: %s • sort: %s", search, prio, cfg.SortBy)
}

func (m Model) renderTaskList(visible []task.Task) string {
	var b strings.Builder
	for i, t := range visible {
		cursor := " "
		if m.cursor == i && m.mode == modeList && m.form == nil {
			cursor = ">"
		}

		checkbox := "[ ]"
		title := t.Title
		if t.IsCompleted {
			checkbox = "[x]"
			title = doneStyle.Render(title)
		}

		body := fmt.Sprintf("%s %s %s  %s  %s", cursor, checkbox, title,
			renderPriority(t.Priority), faintStyle.Render(t.Deadline.Local().Format(deadlineFormat)))
		if tm, ok := m.timers.Get(t.ID); ok && !t.IsCompleted {
			body += "  " + clockStyle.Render(tm.View())
		}
		b.WriteString(body)
		b.WriteString("\n")
		if t.Description != "" {
			b.WriteString("      " + faintStyle.Render(truncate(t.Description, descriptionCutoff)))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func renderPriority(p task.Priority) string {
	label := p.String() + " Priority"
	if style, ok := priorityStyles[p]; ok {
		return style.Render(label)
	}
	return label
}

func (m Model) renderFormBox() string {
	if m.form == nil {
		return ""
	}
	values := []string{
		m.form.title,
		m.form.description,
		m.form.deadline,
		m.form.priority,
	}
	var b strings.Builder
	for i, name := range formFields() {
		prefix := " "
		if i == m.form.index {
			prefix = ">"
		}
		val := values[i]
		if strings.TrimSpace(val) == "" {
			val = "(empty)"
		}
		b.WriteString(fmt.Sprintf("%s %-28s : %s\n", prefix, name, val))
	}
	return b.String()
}

func (m Model) renderDetailPanel(t task.Task) string {
	var b strings.Builder
	b.WriteString("Details\n")
	b.WriteString(fmt.Sprintf("Title       : %s\n", t.Title))
	b.WriteString(fmt.Sprintf("Description : %s\n", emptyPlaceholder(t.Description)))
	b.WriteString(fmt.Sprintf("Status      : %s\n", humanDone(t.IsCompleted)))
	b.WriteString(fmt.Sprintf("Priority    : %s\n", t.Priority))
	b.WriteString(fmt.Sprintf("Created     : %s\n", t.CreatedAt.Local().Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Deadline    : %s\n", t.Deadline.Local().Format("2006-01-02 15:04")))
	if tm, ok := m.timers.Get(t.ID); ok {
		d, h, mi, s := tm.Breakdown().Pad()
		b.WriteString(fmt.Sprintf("Remaining   : %s days %s hours %s min %s sec\n", d, h, mi, s))
	}
	return b.String()
}

func renderHelp(k config.Keymap) string {
	return fmt.Sprintf("%s/%s move • %s add • %s search • %s priority filter • %s/%s/%s/%s sort none/created/due/priority • %s toggle • %s delete • %s detail • %s refresh • %s quit",
		k.Up, k.Down, k.Add, k.Search, k.FilterPriority, k.SortNone, k.SortCreated, k.SortDue, k.SortPriority,
		keyLabel(k.Toggle), k.Delete, k.Detail, k.Refresh, k.Quit)
}

func keyLabel(k string) string {
	if k == " " {
		return "space"
	}
	return k
}

func emptyPlaceholder(v string) string {
	if strings.TrimSpace(v) == "" {
		return "(empty)"
	}
	return v
}
