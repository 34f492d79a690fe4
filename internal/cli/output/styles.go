package output

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles holds the lipgloss styles used for text output.
type Styles struct {
	Header1 lipgloss.Style
	Header2 lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style

	StatusSuccess lipgloss.Style
	StatusFailed  lipgloss.Style
	StatusPending lipgloss.Style
}

// Palette.
var (
	colorPrimary = lipgloss.AdaptiveColor{Light: "#4F46E5", Dark: "#818CF8"}
	colorSuccess = lipgloss.AdaptiveColor{Light: "#047857", Dark: "#34D399"}
	colorError   = lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F87171"}
	colorWarning = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FBBF24"}
	colorInfo    = lipgloss.AdaptiveColor{Light: "#0369A1", Dark: "#38BDF8"}
	colorMuted   = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
)

// NewStyles builds the styles for a lipgloss renderer.
func NewStyles(r *lipgloss.Renderer) *Styles {
	badge := r.NewStyle().Bold(true).Padding(0, 1)

	return &Styles{
		Header1: r.NewStyle().Bold(true).Foreground(colorPrimary).MarginBottom(1),
		Header2: r.NewStyle().Bold(true).Underline(true),
		Bold:    r.NewStyle().Bold(true),
		Muted:   r.NewStyle().Foreground(colorMuted),
		Success: r.NewStyle().Foreground(colorSuccess),
		Error:   r.NewStyle().Foreground(colorError).Bold(true),
		Warning: r.NewStyle().Foreground(colorWarning),
		Info:    r.NewStyle().Foreground(colorInfo),

		StatusSuccess: badge.Foreground(colorSuccess),
		StatusFailed:  badge.Foreground(colorError),
		StatusPending: badge.Foreground(colorWarning),
	}
}

// Status returns the badge style for a status word.
func (s *Styles) Status(status string) lipgloss.Style {
	switch status {
	case "success", "connected", "confirmed":
		return s.StatusSuccess
	case "pending", "running", "submitting":
		return s.StatusPending
	default:
		return s.StatusFailed
	}
}
