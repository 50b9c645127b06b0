package store

import (
	"time"

	"maia/internal/types"
)

// DemoSnapshot returns the sample workspace used by `maia chat --demo`.
// Timestamps are relative to now.
func DemoSnapshot(now time.Time) types.Snapshot {
	malware := types.NewThreat(types.ThreatInput{
		Name:             "Filtración por Malware",
		Category:         "Seguridad Digital",
		RelatedAsset:     "Base de Datos de Beneficiarios",
		RelatedAdversary: "Inteligencia Estatal",
		Impact:           5,
		Probability:      4,
		Description:      "Infección mediante spear-phishing dirigido a administradores para exfiltrar la BD.",
	}, "threat_1", now.Add(-5*24*time.Hour))
	malware.Status = types.ThreatAnalyzing
	malware.Mitigations = []types.Mitigation{{
		ID:          "mit_1",
		Description: "Implementar llaves de seguridad física (YubiKey) para admins.",
		Strategy:    types.StrategyPrevention,
		Status:      types.MitigationInProgress,
	}}

	theft := types.NewThreat(types.ThreatInput{
		Name:             "Robo de equipo en campo",
		Category:         "Seguridad Física",
		RelatedAsset:     "Portátil de Dirección",
		RelatedAdversary: `Grupo "Los Vigilantes"`,
		Impact:           4,
		Probability:      3,
		Description:      "Asalto durante traslados en zonas de bajo control gubernamental.",
	}, "threat_2", now.Add(-2*24*time.Hour))

	return types.Snapshot{
		Assets: []types.Asset{
			{ID: "asset_1", Name: "Base de Datos de Beneficiarios", Type: types.AssetDigital, Value: 5,
				Description: "Servidor SQL encriptado con registros de 5000 personas vulnerables."},
			{ID: "asset_2", Name: "Portátil de Dirección", Type: types.AssetPhysical, Value: 4,
				Description: "MacBook Pro utilizada por la directora ejecutiva en viajes de campo."},
			{ID: "asset_3", Name: "Canal de Signal", Type: types.AssetDigital, Value: 3,
				Description: "Grupo de coordinación logística para emergencias."},
		},
		Adversaries: []types.Adversary{
			{ID: "adv_1", Name: `Grupo "Los Vigilantes"`, Type: types.AdversaryCriminal, Capability: 3,
				Motivation: "Extorsión y venta de datos personales al mercado negro."},
			{ID: "adv_2", Name: "Inteligencia Estatal", Type: types.AdversaryState, Capability: 5,
				Motivation: "Monitoreo de actividades de ONGs y disidencia política."},
		},
		Threats: []types.Threat{malware, theft},
	}
}

// DemoSession returns the sample archived conversation shipped with the demo.
func DemoSession(now time.Time) types.ChatSession {
	start := now.Add(-48 * time.Hour)
	return types.ChatSession{
		ID:        "chat_demo_1",
		Title:     "Análisis de Riesgo Físico",
		Date:      start,
		AgentMode: types.ModeModeling,
		Summary:   "Evaluación de rutas seguras para el equipo de campo.",
		Messages: []types.Message{
			{ID: "msg_1", Role: types.RoleModel, Timestamp: start, Kind: types.KindGreeting,
				Text: "🛡️ **Módulo de Modelado**\nListo para analizar riesgos. Cruzaremos sus activos registrados con los adversarios para identificar amenazas potenciales."},
			{ID: "msg_2", Role: types.RoleUser, Timestamp: start.Add(5 * time.Second), Kind: types.KindChat,
				Text: "Me preocupa que roben la laptop de la directora en el próximo viaje."},
			{ID: "msg_3", Role: types.RoleModel, Timestamp: start.Add(10 * time.Second), Kind: types.KindChat,
				Text: "Entendido. Basado en tus activos, refieres al activo **Portátil de Dirección**. \n\n¿Quién consideras que es el adversario más probable en esta ruta? ¿El **Grupo \"Los Vigilantes\"** o actores estatales?"},
		},
	}
}
