package threatmodel

import "maia/internal/types"

// AddAssetRequest registers an asset.
type AddAssetRequest struct {
	Name        string          `json:"name" validate:"required"`
	Type        types.AssetType `json:"type" validate:"required,oneof=Físico Digital Intangible Humano"`
	Value       int             `json:"value" validate:"min=1,max=5"`
	Description string          `json:"description"`
}

func (AddAssetRequest) ToolName() string { return ToolAddAsset }

// AddAdversaryRequest registers an adversary.
type AddAdversaryRequest struct {
	Name       string              `json:"name" validate:"required"`
	Type       types.AdversaryType `json:"type" validate:"required,oneof=Estatal Criminal Interno Competencia Natural"`
	Capability int                 `json:"capability" validate:"min=1,max=5"`
	Motivation string              `json:"motivation"`
}

func (AddAdversaryRequest) ToolName() string { return ToolAddAdversary }

// AddThreatRequest registers a threat. RiskLevel is accepted for
// compatibility with models that send it, and ignored.
type AddThreatRequest struct {
	Name             string `json:"name" validate:"required"`
	Category         string `json:"category" validate:"required"`
	RelatedAsset     string `json:"relatedAsset" validate:"required"`
	RelatedAdversary string `json:"relatedAdversary" validate:"required"`
	Impact           int    `json:"impact" validate:"min=1,max=5"`
	Probability      int    `json:"probability" validate:"min=1,max=5"`
	RiskLevel        string `json:"riskLevel"`
	Description      string `json:"description"`
}

func (AddThreatRequest) ToolName() string { return ToolAddThreat }

// AddMitigationRequest attaches a mitigation to a threat by exact name.
type AddMitigationRequest struct {
	ThreatName  string                   `json:"threatName" validate:"required"`
	Description string                   `json:"description" validate:"required"`
	Strategy    types.MitigationStrategy `json:"strategy" validate:"required,oneof=Prevención Mitigación Transferencia Aceptación"`
}

func (AddMitigationRequest) ToolName() string { return ToolAddMitigation }

// SwitchAgentRequest asks for a hand-off to another agent mode.
type SwitchAgentRequest struct {
	TargetAgent types.AgentMode `json:"targetAgent" validate:"required,oneof=register modeling mitigation general"`
	Reason      string          `json:"reason" validate:"required"`
}

func (SwitchAgentRequest) ToolName() string { return ToolSwitchAgent }
