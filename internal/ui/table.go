package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/curator/internal/catalog"
)

// contentHeight is the height left for panes after the header, the command
// bar and the footer.
func (m Model) contentHeight() int {
	return max(m.height-3, 3)
}

// paneWidths splits the screen between list and detail. Narrow terminals
// get the list only.
func (m Model) paneWidths() (list, detail int) {
	if m.width < LayoutCompactWidth {
		return m.width, 0
	}
	list = m.width * 60 / 100
	return list, m.width - list
}

// renderContent renders the course list and, when there is room, the
// detail pane beside it.
func (m Model) renderContent() string {
	styles := m.theme.Styles()
	height := m.contentHeight()

	if len(m.page.Entities) == 0 {
		msg := "No courses"
		if m.page.Filter.Search != "" || m.page.Filter.Equals(catalog.FieldStatus) != "" {
			msg = "No courses match the current filter"
		}
		return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center, styles.MutedText.Render(msg))
	}

	listWidth, detailWidth := m.paneWidths()
	list := m.renderTitledBox(m.listTitle(), m.renderList(listWidth-2), listWidth, height, true)
	if detailWidth == 0 {
		return list
	}
	detail := m.renderTitledBox("Details", m.detail.View(), detailWidth, height, false)
	return lipgloss.JoinHorizontal(lipgloss.Top, list, detail)
}

func (m Model) listTitle() string {
	pg := m.page.Pagination
	return fmt.Sprintf("Courses %d-%d of %d",
		min((pg.Page-1)*pg.PageSize+1, pg.Total),
		min(pg.Page*pg.PageSize, pg.Total),
		pg.Total)
}

// renderList renders the visible page as styled rows.
func (m Model) renderList(width int) string {
	lines := make([]string, 0, len(m.page.Entities))
	for i, c := range m.page.Entities {
		bgColor := m.theme.FocusBg
		switch {
		case i == m.cursor:
			bgColor = m.theme.SelectionBg
		case m.isSelected(c.ID):
			bgColor = m.theme.MarkedBg
		}
		bg := NewBgStyle(bgColor)
		lines = append(lines, bg.FillLine(m.formatRow(c, width, bg, i == m.cursor), width))
	}
	return strings.Join(lines, "\n")
}

// formatRow renders one course: marker, sync glyph, title, status, price
// and last update. Columns drop out as the pane narrows.
func (m Model) formatRow(c catalog.Course, width int, bg BgStyle, cursor bool) string {
	styles := m.theme.Styles()
	text, muted := styles.Text, styles.MutedText
	if cursor {
		sel := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.SelectionText))
		text, muted = sel, sel
	}

	mark := ternary(m.isSelected(c.ID), "●", " ")
	glyph, glyphStyle := " ", muted
	if _, failed := m.failure(c.ID); failed {
		glyph, glyphStyle = "!", styles.DangerText
	} else if m.isPending(c.ID) {
		glyph, glyphStyle = "~", styles.InfoText
	}

	status := string(c.Status)
	statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.colorForStatus(status)))
	if cursor {
		statusStyle = text
	}

	var right []string
	right = append(right, bg.Render(padRight(status, 9), statusStyle))
	fixed := 4 + 10
	if width >= LayoutPriceWidth {
		right = append(right, bg.Render(padRight(formatPrice(c.Price), 9), muted))
		fixed += 10
	}
	if width >= LayoutUpdatedWidth && !c.UpdatedAt.IsZero() {
		right = append(right, bg.Render(c.UpdatedAt.Format("2006-01-02"), muted))
		fixed += 11
	}

	titleWidth := max(width-fixed, 10)
	title := padRight(truncate(c.Title, titleWidth), titleWidth)

	return bg.Render(mark, styles.AccentText) + bg.Space() +
		bg.Render(glyph, glyphStyle) + bg.Space() +
		bg.Render(title, text) + bg.Space() +
		strings.Join(right, bg.Space())
}

// colorForStatus returns the theme color for a course status.
func (m Model) colorForStatus(status string) string {
	status = strings.ToLower(strings.TrimSpace(status))
	if color, ok := m.theme.StatusColors[status]; ok {
		return color
	}
	return m.theme.Text
}

// renderTitledBox renders content in a box with the title embedded in the
// top border: ┌─── Title ───┐
func (m Model) renderTitledBox(title, content string, width, height int, focused bool) string {
	borderColorStr, bgColorStr := m.theme.Border, m.theme.SurfaceAlt
	if focused {
		borderColorStr, bgColorStr = m.theme.BorderFocus, m.theme.FocusBg
	}
	bg := NewBgStyle(bgColorStr)
	borderStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(borderColorStr))
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.Text))

	innerWidth := max(width-2, 1)
	title = truncate(title, max(innerWidth-4, 1))
	titleLen := lipgloss.Width(title)
	leftPad := max((innerWidth-titleLen-2)/2, 0)
	rightPad := max(innerWidth-titleLen-2-leftPad, 0)

	top := bg.Render("┌", borderStyle) +
		bg.Render(strings.Repeat("─", leftPad), borderStyle) +
		bg.Render(" "+title+" ", titleStyle) +
		bg.Render(strings.Repeat("─", rightPad), borderStyle) +
		bg.Render("┐", borderStyle)
	bottom := bg.Render("└", borderStyle) +
		bg.Render(strings.Repeat("─", innerWidth), borderStyle) +
		bg.Render("┘", borderStyle)

	side := bg.Render("│", borderStyle)
	contentLines := strings.Split(content, "\n")
	lines := []string{top}
	for i := 0; i < height-2; i++ {
		var line string
		if i < len(contentLines) {
			line = contentLines[i]
		}
		lines = append(lines, side+bg.FillLine(line, innerWidth)+side)
	}
	lines = append(lines, bottom)
	return strings.Join(lines, "\n")
}

func (m *Model) resizeDetail() {
	_, w := m.paneWidths()
	m.detail.Width = max(w-4, 0)
	m.detail.Height = max(m.contentHeight()-2, 0)
	m.updateDetail()
}

// updateDetail rewrites the detail viewport for the row under the cursor.
func (m *Model) updateDetail() {
	c, ok := m.current()
	if !ok {
		m.detail.SetContent("")
		return
	}
	m.detail.SetContent(m.renderDetailContent(c))
	m.detail.GotoTop()
}

func (m Model) renderDetailContent(c catalog.Course) string {
	styles := m.theme.Styles()
	label := styles.MutedText.Width(12)
	width := max(m.detail.Width-12, 10)

	row := func(name, value string) string {
		if strings.TrimSpace(value) == "" {
			value = "-"
		}
		return label.Render(name) + styles.Text.Render(truncate(value, width))
	}

	lines := []string{
		styles.Text.Bold(true).Render(truncate(c.Title, m.detail.Width)),
		styles.StatusStyle(string(c.Status)).Render(titleCase(string(c.Status))),
		"",
		row("ID", c.ID),
		row("Slug", c.Slug),
		row("Category", c.Category),
		row("Level", c.Level),
		row("Difficulty", fmt.Sprintf("%d", c.Difficulty)),
		row("Instructor", c.Instructor),
		row("Price", formatPrice(c.Price)),
		row("Rating", fmt.Sprintf("%.1f", c.Rating)),
		row("Hours", formatNumber(c.EstimatedHours)),
		row("Tags", strings.Join(c.Tags, ", ")),
		row("Products", strings.Join(c.Products, ", ")),
	}
	if c.Enrollment.MaxEnrollments != nil {
		lines = append(lines, row("Max seats", fmt.Sprintf("%d", *c.Enrollment.MaxEnrollments)))
	}
	if c.Enrollment.Deadline != nil {
		lines = append(lines, row("Deadline", c.Enrollment.Deadline.Format(deadlineLayout)))
	}
	if !c.UpdatedAt.IsZero() {
		lines = append(lines, row("Updated", c.UpdatedAt.Format("2006-01-02 15:04")))
	}
	if f, ok := m.failure(c.ID); ok {
		lines = append(lines, "",
			styles.DangerText.Render(fmt.Sprintf("%s failed: %s", f.Op, truncate(describeError(f.Err), width))),
			styles.FaintText.Render("R retries the write"))
	} else if m.isPending(c.ID) {
		lines = append(lines, "", styles.InfoText.Render("saving..."))
	}
	if s := strings.TrimSpace(c.Summary); s != "" {
		lines = append(lines, "", lipgloss.NewStyle().Width(m.detail.Width).Foreground(lipgloss.Color(m.theme.Muted)).Render(s))
	}
	return strings.Join(lines, "\n")
}

// renderFormOverlay centers the editor form over the screen.
func (m Model) renderFormOverlay() string {
	if m.form == nil {
		return m.renderMain()
	}
	width := min(max(m.width-8, 40), 90)
	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		m.form.render(m.theme, width),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}
