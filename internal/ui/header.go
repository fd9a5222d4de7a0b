package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/curator/internal/collection"
)

// renderHeader renders the status bar: sync state, counts, and the error,
// stale and offline indicators.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	compact := m.width < LayoutCompactWidth
	p := m.page

	parts := []string{bg.Render("curator", styles.Logo)}
	parts = append(parts, m.syncBadge(styles, bg))

	parts = append(parts,
		bg.Render("Courses:", styles.MutedText)+bg.Space()+
			bg.Render(fmt.Sprintf("%d", p.Pagination.Total), styles.Text))

	if n := len(p.Pending); n > 0 {
		parts = append(parts, bg.Render(fmt.Sprintf("%d pending", n), styles.InfoText))
	}
	if n := len(p.Failures); n > 0 {
		parts = append(parts, bg.Render(fmt.Sprintf("%d failed", n), styles.DangerText))
	}
	if n := len(p.Selection); n > 0 {
		parts = append(parts, bg.Render(fmt.Sprintf("%d selected", n), styles.AccentText))
	}
	if p.Offline {
		parts = append(parts, bg.Render("OFFLINE", styles.DangerText))
	}
	if p.Stale {
		parts = append(parts, bg.Render("STALE", styles.WarningText.Bold(true))+bg.Space()+
			bg.Render("press r", styles.FaintText))
	}
	if p.Err != nil && !compact {
		parts = append(parts, bg.Render(truncate(describeError(p.Err), 60), styles.DangerText))
	}
	if !compact {
		parts = append(parts,
			bg.Render("loaded", styles.FaintText)+bg.Space()+
				bg.Render(formatAgo(p.LastLoaded, m.now()), styles.MutedText))
	}

	return styles.Header.Width(m.width).Render(bg.Join(parts, "  "))
}

func (m Model) syncBadge(styles Styles, bg BgStyle) string {
	switch m.page.SyncStatus {
	case collection.StatusSyncing:
		return bg.Render("● syncing", styles.InfoText)
	case collection.StatusSynced:
		return bg.Render("● synced", styles.SuccessText)
	case collection.StatusError:
		return bg.Render("● error", styles.DangerText)
	default:
		return bg.Render("● idle", styles.MutedText)
	}
}

// describeError names the error class before its message.
func describeError(err error) string {
	switch {
	case errors.Is(err, collection.ErrAuth):
		return "auth: " + err.Error()
	case errors.Is(err, collection.ErrValidation):
		return "rejected: " + err.Error()
	case errors.Is(err, collection.ErrNotFound):
		return "gone: " + err.Error()
	default:
		return err.Error()
	}
}

// renderCommandBar renders the filter summary and the most used keys.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	f := m.page.Filter
	colon := bg.Render(":", styles.FaintText)

	sortLabel := "id"
	if f.Sort.Key != "" {
		sortLabel = f.Sort.Key
	}
	status := f.Equals("status")
	if status == "" {
		status = collection.AllValues
	}

	segments := []string{
		bg.Render("s", styles.AccentText) + colon + bg.Render(sortLabel+" "+string(f.Sort.Dir), styles.MutedText),
		bg.Render("f", styles.AccentText) + colon + bg.Render(titleCase(status), styles.MutedText),
	}
	if f.Search != "" {
		segments = append(segments, bg.Render("/"+truncate(f.Search, 18), styles.AccentText))
	}

	type cmd struct{ key, desc string }
	commands := []cmd{
		{"n", "New"},
		{"e", "Edit"},
		{"d", "Delete"},
		{"space", "Select"},
		{"R", "Retry"},
		{"r", "Reload"},
		{"?", "More"},
	}
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}
	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).Render(strings.Join(segments, bg.Spaces(2)))
}

// renderFooter shows the search input, the delete prompt, or the last
// action message.
func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	pg := m.page.Pagination
	pageInfo := styles.MutedText.Render(fmt.Sprintf("page %d/%d · %d per page", pg.Page, pg.TotalPages, pg.PageSize))

	var left string
	switch {
	case m.mode == modeSearch:
		left = m.search.View()
	case m.mode == modeConfirmDelete:
		left = styles.WarningText.Bold(true).Render(
			fmt.Sprintf("Delete %d course(s)? y/n", len(m.deleteTargets)))
	case m.flash != "":
		left = styles.Text.Render(m.flash)
	}

	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(pageInfo), 1)
	return left + strings.Repeat(" ", gap) + pageInfo
}
