package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"maia/internal/types"
)

const (
	headerHeight = 3
	footerHeight = 2
)

func (m Model) View() string {
	if !m.ready {
		return "\n  Iniciando MAIA..."
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.viewport.View(),
		m.renderStatus(),
		m.textarea.View(),
		m.renderFooter(),
	)
}

func (m Model) renderHeader() string {
	current := m.opts.Conversation.Mode()

	tabs := make([]string, 0, len(types.AgentModes))
	for i, mode := range types.AgentModes {
		label := fmt.Sprintf("F%d %s", i+1, mode.Label())
		if mode == current {
			tabs = append(tabs, m.styles.ActiveTab.Render(label))
		} else {
			tabs = append(tabs, m.styles.Tab.Render(label))
		}
	}

	title := m.styles.Header.Render("MAIA")
	line := lipgloss.JoinHorizontal(lipgloss.Center, append([]string{title, " "}, tabs...)...)

	sum := m.opts.Summary()
	kpis := m.styles.Muted.Render(fmt.Sprintf("Activos %d · Adversarios %d · Amenazas activas %d · Riesgo medio %d",
		sum.TotalAssets, sum.TotalAdversaries, sum.ActiveThreats, sum.AverageRisk))
	if cf := m.opts.Conversation.ContextFile(); cf != nil {
		kpis += "  " + m.styles.Badge.Render("📂 "+cf.Title)
	}

	return lipgloss.JoinVertical(lipgloss.Left, line, kpis, m.styles.RenderDivider(m.width))
}

func (m Model) renderStatus() string {
	switch {
	case m.waiting:
		return m.spinner.View() + m.styles.Muted.Render(" El asistente está pensando...")
	case m.opts.Conversation.Err() != "":
		return m.styles.Error.Render("⚠ " + m.opts.Conversation.Err())
	case m.flash != "":
		return m.styles.Info.Render(m.flash)
	default:
		return ""
	}
}

func (m Model) renderFooter() string {
	return m.styles.Footer.Render("Enter enviar · F1-F4 módulo · PgUp/PgDn desplazar · /help comandos · Esc salir")
}

func (m Model) renderTranscript(msgs []types.Message) string {
	var sb strings.Builder
	for _, msg := range msgs {
		switch {
		case msg.Kind == types.KindSystem:
			sb.WriteString(m.styles.SystemNote.Render(m.markdown(msg.Text)))
		case msg.Kind == types.KindError:
			sb.WriteString(m.styles.Error.Render(msg.Text))
		case msg.Role == types.RoleUser:
			sb.WriteString(m.styles.UserLabel.Render("Usted"))
			sb.WriteString("\n")
			sb.WriteString(m.styles.UserInput.Render(msg.Text))
		default:
			sb.WriteString(m.styles.ModelLabel.Render("MAIA"))
			sb.WriteString("\n")
			sb.WriteString(m.styles.AgentResponse.Render(m.markdown(msg.Text)))
		}
		sb.WriteString("\n\n")
	}
	return sb.String()
}

// markdown renders text with glamour, falling back to the raw text.
func (m Model) markdown(text string) string {
	if m.renderer == nil {
		return text
	}
	out, err := m.renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimSpace(out)
}
