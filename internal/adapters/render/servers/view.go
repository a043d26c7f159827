package servers

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bnema/serverctl/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// Listing is everything the server view shows.
type Listing struct {
	Session *domain.Session
	Servers domain.ServerCollection
	Owners  map[domain.UserID]string
}

type RenderOptions struct {
	Now         time.Time
	RefreshedAt time.Time
}

func renderView(listing Listing, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("Servers"),
		s.header.Render(sessionLine(listing.Session)),
	}

	if !listing.Servers.Loaded() {
		lines = append(lines, s.warning.Render("Server list unavailable"))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	header := fmt.Sprintf("servers: %d", len(listing.Servers))
	if !opts.RefreshedAt.IsZero() {
		header += " " + s.faint.Render(fmt.Sprintf("(refreshed %s)", formatAge(opts.RefreshedAt, opts.Now)))
	}
	lines = append(lines, s.header.Render(header))

	if len(listing.Servers) == 0 {
		lines = append(lines, s.empty.Render("No servers."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, server := range listing.Servers {
		lines = append(lines, s.section.Render(renderServer(server, listing.Owners, opts, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func sessionLine(session *domain.Session) string {
	if session == nil {
		return "signed out"
	}

	return fmt.Sprintf("signed in as %s (#%d)", session.Username, session.ID)
}

func renderServer(server domain.ServerSummary, owners map[domain.UserID]string, opts RenderOptions, s styles) string {
	parts := []string{
		s.server.Render(serverTitle(server)),
		lipgloss.JoinHorizontal(
			lipgloss.Top,
			s.detail.Render("owner: "),
			s.owner.Render(ownerLabel(server.Owner, owners)),
		),
		s.detail.Render("created: " + formatCreated(server.CreatedAt, opts.Now)),
	}

	if description := strings.TrimSpace(server.Description); description != "" {
		parts = append(parts, s.faint.Render(description))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func serverTitle(server domain.ServerSummary) string {
	name := strings.TrimSpace(server.Name)
	if name == "" {
		name = "unnamed"
	}

	return fmt.Sprintf("%s (%d)", name, server.ID)
}

func ownerLabel(owner domain.UserID, owners map[domain.UserID]string) string {
	if name := strings.TrimSpace(owners[owner]); name != "" {
		return name
	}

	return fmt.Sprintf("#%d", owner)
}

// formatCreated shows RFC 3339 timestamps relative to now. Anything else the
// service sends is shown as is.
func formatCreated(raw string, now time.Time) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "unknown"
	}

	createdAt, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return raw
	}
	if now.IsZero() {
		return createdAt.Format("2006-01-02 15:04")
	}

	return fmt.Sprintf("%s (%s)", formatAge(createdAt, now), createdAt.Format("2006-01-02"))
}

func formatAge(at, now time.Time) string {
	if now.IsZero() {
		return "at " + at.Format("15:04")
	}

	elapsed := now.Sub(at)
	switch {
	case elapsed < time.Minute:
		return "just now"
	case elapsed < time.Hour:
		return plural(int(elapsed.Minutes()), "minute") + " ago"
	case elapsed < 24*time.Hour:
		return plural(int(elapsed.Hours()), "hour") + " ago"
	default:
		return plural(int(math.Floor(elapsed.Hours()/24)), "day") + " ago"
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}

	return fmt.Sprintf("%d %ss", n, unit)
}
