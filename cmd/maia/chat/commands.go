package chat

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"maia/internal/types"
)

const helpText = `Comandos:
  /mode <register|modeling|mitigation|general>  Cambiar de módulo (F1-F4)
  /context <id>   Cargar un documento de la base de conocimiento
  /context        Retirar el documento cargado
  /save [título]  Archivar la conversación
  /clear          Empezar una conversación nueva
  /help           Mostrar esta ayuda
  /quit           Salir (también Esc o Ctrl+C)`

// handleCommand runs a /command typed in the input box.
func (m Model) handleCommand(input string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(input)
	name := strings.ToLower(parts[0])
	arg := strings.TrimSpace(strings.TrimPrefix(input, parts[0]))

	conv, ctx := m.opts.Conversation, m.ctx

	switch name {
	case "/quit", "/exit", "/q":
		return m, tea.Quit

	case "/help", "/?":
		m.flash = helpText
		return m, nil

	case "/mode":
		mode, ok := types.ParseAgentMode(arg)
		if !ok {
			m.flash = "Modo desconocido. Use: register, modeling, mitigation o general."
			return m, nil
		}
		return m, m.switchMode(mode)

	case "/context":
		if arg == "" {
			return m, func() tea.Msg {
				return contextDoneMsg{err: conv.SetContextFile(ctx, nil)}
			}
		}
		if m.opts.Library == nil {
			m.flash = "Base de conocimiento no disponible."
			return m, nil
		}
		cf, err := m.opts.Library.ContextFile(arg)
		if err != nil {
			m.flash = "Documento no encontrado: " + arg
			return m, nil
		}
		return m, func() tea.Msg {
			return contextDoneMsg{title: cf.Title, err: conv.SetContextFile(ctx, cf)}
		}

	case "/clear", "/new":
		return m, func() tea.Msg {
			return resetDoneMsg{err: conv.Reset(ctx)}
		}

	case "/save":
		if m.opts.Save == nil {
			m.flash = "Archivo no disponible."
			return m, nil
		}
		if !conv.HasConversation() {
			m.flash = "No hay conversación que guardar."
			return m, nil
		}
		save := m.opts.Save
		return m, func() tea.Msg {
			s := conv.Archive(arg)
			return savedMsg{title: s.Title, err: save(s)}
		}

	default:
		m.flash = "Comando desconocido: " + name + " (/help)"
		return m, nil
	}
}
