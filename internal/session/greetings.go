package session

import (
	"fmt"
	"strings"

	"maia/internal/types"
)

// greeting returns the locally synthesized opening message for a fresh
// conversation. An attached context file takes precedence over the mode.
func greeting(mode types.AgentMode, cf *types.ContextFile) string {
	if cf != nil {
		return fmt.Sprintf("📂 **Contexto Cargado:** %s\n\nHe leído el archivo. ¿Qué te gustaría saber o analizar sobre él?", cf.Title)
	}

	switch mode {
	case types.ModeRegister:
		return "📋 **Módulo de Registro**\nIniciando inventario de activos y perfilado de adversarios. Por favor, indique qué activos desea proteger."
	case types.ModeModeling:
		return "🛡️ **Módulo de Modelado**\nListo para analizar riesgos. Cruzaremos sus activos registrados con los adversarios para identificar amenazas potenciales."
	case types.ModeMitigation:
		return "✅ **Módulo de Mitigación**\nPreparado para desarrollar estrategias de defensa. Revisemos las amenazas identificadas para crear planes de acción."
	default:
		return "👋 **Asistente de Seguridad**\nSistema en línea. Puedo ayudarle a registrar información, analizar riesgos o generar planes de protección. ¿Cómo desea proceder?"
	}
}

// transferNote marks a mode change inside a kept transcript.
func transferNote(mode types.AgentMode) string {
	return fmt.Sprintf("🔄 *Sistema: Transfiriendo contexto al módulo %s...*", strings.ToUpper(string(mode)))
}
