// Package threatmodel implements the tools the agents use to write the
// threat model: addAsset, addAdversary, addThreat, addMitigation and
// switchAgent.
package threatmodel

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"maia/internal/logging"
	"maia/internal/store"
	"maia/internal/tools"
	"maia/internal/types"
)

// Tool names as the model calls them.
const (
	ToolAddAsset      = "addAsset"
	ToolAddAdversary  = "addAdversary"
	ToolAddThreat     = "addThreat"
	ToolAddMitigation = "addMitigation"
	ToolSwitchAgent   = "switchAgent"
)

// ModeSwitcher receives hand-off requests from switchAgent.
type ModeSwitcher interface {
	RequestMode(mode types.AgentMode, reason string)
}

// ModeSwitcherFunc adapts a function to ModeSwitcher.
type ModeSwitcherFunc func(mode types.AgentMode, reason string)

// RequestMode calls f.
func (f ModeSwitcherFunc) RequestMode(mode types.AgentMode, reason string) { f(mode, reason) }

// handlers carries the dependencies shared by all tools.
type handlers struct {
	store    store.Domain
	switcher ModeSwitcher
	now      func() time.Time
	newID    func() string
}

// RegisterAll registers the threat-model tools with the registry.
func RegisterAll(reg *tools.Registry, st store.Domain, sw ModeSwitcher) error {
	h := &handlers{store: st, switcher: sw, now: time.Now, newID: uuid.NewString}

	for _, tool := range []*tools.Tool{
		h.addAssetTool(),
		h.addAdversaryTool(),
		h.addThreatTool(),
		h.addMitigationTool(),
		h.switchAgentTool(),
	} {
		if err := reg.Register(tool); err != nil {
			return fmt.Errorf("failed to register %s: %w", tool.Name, err)
		}
	}
	logging.Tools("Registered %d threat-model tools", 5)
	return nil
}

func enumOf[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

func (h *handlers) addAssetTool() *tools.Tool {
	return &tools.Tool{
		Name:        ToolAddAsset,
		Description: "Registrar un activo en la base de datos.",
		Category:    tools.CategoryRegister,
		Schema: tools.ToolSchema{
			Required: []string{"name", "type", "value"},
			Properties: map[string]tools.Property{
				"name":        {Type: "string", Description: "Nombre del activo"},
				"type":        {Type: "string", Description: "Tipo: Físico, Digital, Intangible, Humano", Enum: enumOf(types.AssetTypes)},
				"value":       {Type: "integer", Description: "Valor estratégico (1-5)."},
				"description": {Type: "string", Description: "Descripción breve"},
			},
		},
		Decode: tools.Decoder[AddAssetRequest](),
		Execute: tools.Typed(func(_ context.Context, req AddAssetRequest) (string, error) {
			h.store.AddAsset(types.Asset{
				ID:          h.newID(),
				Name:        req.Name,
				Type:        req.Type,
				Value:       req.Value,
				Description: req.Description,
			})
			return "Activo registrado.", nil
		}),
	}
}

func (h *handlers) addAdversaryTool() *tools.Tool {
	return &tools.Tool{
		Name:        ToolAddAdversary,
		Description: "Registrar un adversario en la base de datos.",
		Category:    tools.CategoryRegister,
		Schema: tools.ToolSchema{
			Required: []string{"name", "type", "capability"},
			Properties: map[string]tools.Property{
				"name":       {Type: "string", Description: "Nombre del adversario"},
				"type":       {Type: "string", Description: "Tipo", Enum: enumOf(types.AdversaryTypes)},
				"capability": {Type: "integer", Description: "Capacidad/Recursos (1-5)."},
				"motivation": {Type: "string", Description: "Motivación principal"},
			},
		},
		Decode: tools.Decoder[AddAdversaryRequest](),
		Execute: tools.Typed(func(_ context.Context, req AddAdversaryRequest) (string, error) {
			h.store.AddAdversary(types.Adversary{
				ID:         h.newID(),
				Name:       req.Name,
				Type:       req.Type,
				Capability: req.Capability,
				Motivation: req.Motivation,
			})
			return "Adversario registrado.", nil
		}),
	}
}

func (h *handlers) addThreatTool() *tools.Tool {
	return &tools.Tool{
		Name:        ToolAddThreat,
		Description: "Registrar una AMENAZA en el modelo.",
		Category:    tools.CategoryModeling,
		Schema: tools.ToolSchema{
			Required: []string{"name", "category", "relatedAsset", "relatedAdversary", "impact", "probability"},
			Properties: map[string]tools.Property{
				"name":             {Type: "string", Description: "Nombre corto del riesgo"},
				"category":         {Type: "string", Description: "Categoría (STRIDE, JURIST...)"},
				"relatedAsset":     {Type: "string", Description: "Nombre exacto del Activo afectado"},
				"relatedAdversary": {Type: "string", Description: "Nombre exacto del Adversario"},
				"impact":           {Type: "integer", Description: "Impacto (1-5)"},
				"probability":      {Type: "integer", Description: "Probabilidad (1-5)"},
				"riskLevel":        {Type: "string", Description: "Nivel calculado", Enum: enumOf(types.RiskLevels)},
				"description":      {Type: "string", Description: "Narrativa del escenario"},
			},
		},
		Decode: tools.Decoder[AddThreatRequest](),
		Execute: tools.Typed(func(_ context.Context, req AddThreatRequest) (string, error) {
			if req.RiskLevel != "" {
				logging.ToolsDebug("addThreat: ignoring model-supplied riskLevel %q", req.RiskLevel)
			}
			th := h.store.AddThreat(types.NewThreat(types.ThreatInput{
				Name:             req.Name,
				Category:         req.Category,
				RelatedAsset:     req.RelatedAsset,
				RelatedAdversary: req.RelatedAdversary,
				Impact:           req.Impact,
				Probability:      req.Probability,
				Description:      req.Description,
			}, h.newID(), h.now()))
			return fmt.Sprintf("Amenaza registrada. Riesgo calculado: %d (%s).", th.RiskScore, th.RiskLevel), nil
		}),
	}
}

func (h *handlers) addMitigationTool() *tools.Tool {
	return &tools.Tool{
		Name:        ToolAddMitigation,
		Description: "Añadir una medida de protección a una amenaza existente.",
		Category:    tools.CategoryMitigation,
		Schema: tools.ToolSchema{
			Required: []string{"threatName", "description", "strategy"},
			Properties: map[string]tools.Property{
				"threatName":  {Type: "string", Description: "El nombre exacto de la amenaza a mitigar"},
				"description": {Type: "string", Description: "Acción concreta a tomar"},
				"strategy":    {Type: "string", Description: "Tipo de estrategia.", Enum: enumOf(types.MitigationStrategies)},
			},
		},
		Decode: tools.Decoder[AddMitigationRequest](),
		Execute: tools.Typed(func(_ context.Context, req AddMitigationRequest) (string, error) {
			mit := types.NewMitigation(h.newID(), req.Description, req.Strategy)
			if err := h.store.AddMitigation(req.ThreatName, mit); err != nil {
				return "", err
			}
			return "Plan de mitigación registrado.", nil
		}),
	}
}

func (h *handlers) switchAgentTool() *tools.Tool {
	return &tools.Tool{
		Name:        ToolSwitchAgent,
		Description: "Transferir la sesión a otro agente especializado.",
		Category:    tools.CategoryRouting,
		Schema: tools.ToolSchema{
			Required: []string{"targetAgent", "reason"},
			Properties: map[string]tools.Property{
				"targetAgent": {Type: "string", Description: "El agente al cual transferir.", Enum: enumOf(types.AgentModes)},
				"reason":      {Type: "string", Description: "Razón de la transferencia para el usuario."},
			},
		},
		Decode: tools.Decoder[SwitchAgentRequest](),
		Execute: tools.Typed(func(_ context.Context, req SwitchAgentRequest) (string, error) {
			if h.switcher != nil {
				h.switcher.RequestMode(req.TargetAgent, req.Reason)
			}
			return fmt.Sprintf("Transferencia a %s iniciada. Razón: %s", req.TargetAgent, req.Reason), nil
		}),
	}
}
