package dashboard

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/navisouza/delivery-api/internal/domain"
)

var (
	brandStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C8A951")).Bold(true)
	subtleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	sectionStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C8A951")).Bold(true).Padding(1, 0, 0, 0)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#C0392B")).Padding(0, 1)
	noticeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50"))
	confirmStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#FF6B6B")).Padding(0, 1)
	cardStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#5A4A2A")).Padding(0, 1)
	selectedStyle = cardStyle.BorderForeground(lipgloss.Color("#F7B801"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#A0AEC0"))
	focusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801")).Bold(true)
)

var statusColors = map[domain.StatusName]lipgloss.Color{
	domain.StatusReceived:   lipgloss.Color("#5B8DEF"),
	domain.StatusConfirmed:  lipgloss.Color("#F39C12"),
	domain.StatusDispatched: lipgloss.Color("#9B59B6"),
	domain.StatusDelivered:  lipgloss.Color("#4CAF50"),
	domain.StatusCanceled:   lipgloss.Color("#E74C3C"),
}

func statusBadge(s domain.StatusName) string {
	color, ok := statusColors[s]
	if !ok {
		color = lipgloss.Color("#999999")
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(color).
		Padding(0, 1).
		Render(StatusLabel(s))
}
