// Package prompt builds the system instruction sent to the model.
//
// The instruction is assembled from fixed sections in a fixed order:
//
//  1. Shared philosophy
//  2. Mode block (register, modeling, mitigation, general)
//  3. Current workspace state as indented JSON
//  4. Operating instructions
//  5. Attached context file, when present
//
// BuildSystemInstruction is pure: the same inputs always yield the same text.
package prompt

import (
	"encoding/json"
	"strings"

	"maia/internal/logging"
	"maia/internal/types"
)

// sectionSeparator is inserted between sections.
const sectionSeparator = "\n\n"

// AssetView is the part of an asset the model sees.
type AssetView struct {
	Name  string          `json:"name"`
	Type  types.AssetType `json:"type"`
	Value int             `json:"value"`
}

// AdversaryView is the part of an adversary the model sees.
type AdversaryView struct {
	Name       string              `json:"name"`
	Type       types.AdversaryType `json:"type"`
	Capability int                 `json:"capability"`
}

// ThreatView is the part of a threat the model sees.
type ThreatView struct {
	Name   string             `json:"name"`
	Risk   types.RiskLevel    `json:"risk"`
	Status types.ThreatStatus `json:"status"`
}

// StateSnapshot is the reduced projection of the workspace embedded in the
// prompt. Descriptions, motivations and mitigations are never included.
type StateSnapshot struct {
	Assets      []AssetView     `json:"assets"`
	Adversaries []AdversaryView `json:"adversaries"`
	Threats     []ThreatView    `json:"threats"`
}

// Project reduces a workspace snapshot to what the prompt shows.
func Project(s types.Snapshot) StateSnapshot {
	out := StateSnapshot{
		Assets:      make([]AssetView, 0, len(s.Assets)),
		Adversaries: make([]AdversaryView, 0, len(s.Adversaries)),
		Threats:     make([]ThreatView, 0, len(s.Threats)),
	}
	for _, a := range s.Assets {
		out.Assets = append(out.Assets, AssetView{Name: a.Name, Type: a.Type, Value: a.Value})
	}
	for _, a := range s.Adversaries {
		out.Adversaries = append(out.Adversaries, AdversaryView{Name: a.Name, Type: a.Type, Capability: a.Capability})
	}
	for _, t := range s.Threats {
		out.Threats = append(out.Threats, ThreatView{Name: t.Name, Risk: t.RiskLevel, Status: t.Status})
	}
	return out
}

// RenderState renders the snapshot as two-space indented JSON.
func RenderState(s StateSnapshot) string {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		// Only plain strings and ints are marshaled, so this cannot happen.
		return "{}"
	}
	return string(data)
}

// modeBlock returns the block for mode. Unknown modes get the general block.
func modeBlock(mode types.AgentMode) string {
	switch mode {
	case types.ModeRegister:
		return registerBlock
	case types.ModeModeling:
		return modelingBlock
	case types.ModeMitigation:
		return mitigationBlock
	default:
		return generalBlock
	}
}

// BuildSystemInstruction assembles the full system instruction.
func BuildSystemInstruction(mode types.AgentMode, state StateSnapshot, contextFile *types.ContextFile) string {
	sections := []string{
		philosophy,
		modeBlock(mode),
		stateHeader + "\n" + RenderState(state) + "\n\n" + stateFooter,
		operatingInstructions,
	}

	if contextFile != nil {
		var sb strings.Builder
		sb.WriteString(contextHeader)
		sb.WriteString("\nTÍTULO: ")
		sb.WriteString(contextFile.Title)
		sb.WriteString("\nCONTENIDO:\n")
		sb.WriteString(contextFile.Content)
		sb.WriteString("\n\n")
		sb.WriteString(contextInstruction)
		sections = append(sections, sb.String())
	}

	out := strings.Join(sections, sectionSeparator)
	logging.PromptDebug("Built system instruction: mode=%s chars=%d context=%v", mode, len(out), contextFile != nil)
	return out
}
