// Package types provides the threat-model domain shared across MAIA packages.
// This package exists so that store, prompt, tools and session can agree on the
// domain without importing each other. Types here have no behavior beyond
// validation and risk derivation.
package types

import (
	"time"
)

// =============================================================================
// ASSETS & ADVERSARIES
// =============================================================================

// AssetType classifies what kind of thing an asset is.
type AssetType string

const (
	AssetDigital    AssetType = "Digital"
	AssetPhysical   AssetType = "Físico"
	AssetHuman      AssetType = "Humano"
	AssetIntangible AssetType = "Intangible"
)

// AssetTypes lists the accepted asset types in display order.
var AssetTypes = []AssetType{AssetDigital, AssetPhysical, AssetHuman, AssetIntangible}

// Valid reports whether t is one of the known asset types.
func (t AssetType) Valid() bool {
	for _, known := range AssetTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Asset is something the organization wants to protect.
type Asset struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Type        AssetType `json:"type"`
	Value       int       `json:"value"` // Strategic value 1-5
	Description string    `json:"description,omitempty"`
}

// AdversaryType classifies the origin of an adversary.
type AdversaryType string

const (
	AdversaryState       AdversaryType = "Estatal"
	AdversaryCriminal    AdversaryType = "Criminal"
	AdversaryInsider     AdversaryType = "Interno"
	AdversaryCompetition AdversaryType = "Competencia"
	AdversaryNatural     AdversaryType = "Natural"
)

// AdversaryTypes lists the accepted adversary types in display order.
var AdversaryTypes = []AdversaryType{
	AdversaryState, AdversaryCriminal, AdversaryInsider, AdversaryCompetition, AdversaryNatural,
}

// Valid reports whether t is one of the known adversary types.
func (t AdversaryType) Valid() bool {
	for _, known := range AdversaryTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Adversary is an actor (or natural event) that may harm an asset.
type Adversary struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Type       AdversaryType `json:"type"`
	Capability int           `json:"capability"` // Resources/capability 1-5
	Motivation string        `json:"motivation,omitempty"`
}

// =============================================================================
// THREATS & MITIGATIONS
// =============================================================================

// ThreatStatus tracks a threat through its treatment lifecycle.
type ThreatStatus string

const (
	ThreatIdentified ThreatStatus = "Identificado"
	ThreatAnalyzing  ThreatStatus = "En Análisis"
	ThreatMitigated  ThreatStatus = "Mitigado"
	ThreatClosed     ThreatStatus = "Cerrado"
)

// MitigationStrategy is the treatment chosen for a threat.
type MitigationStrategy string

const (
	StrategyPrevention MitigationStrategy = "Prevención"
	StrategyMitigation MitigationStrategy = "Mitigación"
	StrategyTransfer   MitigationStrategy = "Transferencia"
	StrategyAcceptance MitigationStrategy = "Aceptación"
)

// MitigationStrategies lists the accepted strategies in display order.
var MitigationStrategies = []MitigationStrategy{
	StrategyPrevention, StrategyMitigation, StrategyTransfer, StrategyAcceptance,
}

// Valid reports whether s is one of the known strategies.
func (s MitigationStrategy) Valid() bool {
	for _, known := range MitigationStrategies {
		if s == known {
			return true
		}
	}
	return false
}

// MitigationStatus tracks the implementation of a mitigation.
type MitigationStatus string

const (
	MitigationPending     MitigationStatus = "Pendiente"
	MitigationInProgress  MitigationStatus = "En Progreso"
	MitigationImplemented MitigationStatus = "Implementado"
)

// Mitigation is a protective action owned by exactly one threat.
type Mitigation struct {
	ID          string             `json:"id"`
	Description string             `json:"description"`
	Strategy    MitigationStrategy `json:"strategy"`
	Status      MitigationStatus   `json:"status"`
}

// NewMitigation returns a pending mitigation.
func NewMitigation(id, description string, strategy MitigationStrategy) Mitigation {
	return Mitigation{
		ID:          id,
		Description: description,
		Strategy:    strategy,
		Status:      MitigationPending,
	}
}

// Threat links an asset and an adversary by name. RelatedAsset and
// RelatedAdversary are free-text copies of the names at creation time: there is
// no referential integrity, and renaming an asset silently breaks the link.
type Threat struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	Category         string       `json:"category"`
	RelatedAsset     string       `json:"relatedAsset"`
	RelatedAdversary string       `json:"relatedAdversary"`
	Impact           int          `json:"impact"`
	Probability      int          `json:"probability"`
	RiskScore        int          `json:"riskScore"`
	RiskLevel        RiskLevel    `json:"riskLevel"`
	Description      string       `json:"description,omitempty"`
	Mitigations      []Mitigation `json:"mitigations"`
	Status           ThreatStatus `json:"status"`
	DateIdentified   time.Time    `json:"dateIdentified"`
}

// ThreatInput carries the user- or model-supplied fields of a new threat.
// Risk score and level are deliberately absent: they are always derived.
type ThreatInput struct {
	Name             string
	Category         string
	RelatedAsset     string
	RelatedAdversary string
	Impact           int
	Probability      int
	Description      string
}

// NewThreat builds an identified threat with derived risk. Every creation path
// (manual entry and tool calls) goes through here.
func NewThreat(in ThreatInput, id string, now time.Time) Threat {
	score := RiskScore(in.Impact, in.Probability)
	return Threat{
		ID:               id,
		Name:             in.Name,
		Category:         in.Category,
		RelatedAsset:     in.RelatedAsset,
		RelatedAdversary: in.RelatedAdversary,
		Impact:           in.Impact,
		Probability:      in.Probability,
		RiskScore:        score,
		RiskLevel:        RiskLevelFor(score),
		Description:      in.Description,
		Mitigations:      []Mitigation{},
		Status:           ThreatIdentified,
		DateIdentified:   now,
	}
}

// Clone returns a deep copy of the threat.
func (t Threat) Clone() Threat {
	c := t
	c.Mitigations = append([]Mitigation(nil), t.Mitigations...)
	if c.Mitigations == nil {
		c.Mitigations = []Mitigation{}
	}
	return c
}

// =============================================================================
// WORKSPACE SNAPSHOT
// =============================================================================

// Snapshot is a point-in-time copy of the whole domain.
type Snapshot struct {
	Assets      []Asset     `json:"assets"`
	Adversaries []Adversary `json:"adversaries"`
	Threats     []Threat    `json:"threats"`
}

// Summary carries the dashboard indicators for a snapshot.
type Summary struct {
	TotalAssets      int `json:"totalAssets"`
	TotalAdversaries int `json:"totalAdversaries"`
	ActiveThreats    int `json:"activeThreats"` // Status != Cerrado
	AverageRisk      int `json:"averageRisk"`   // Rounded mean risk score, 0 when empty
}

// Summarize computes the dashboard indicators.
func (s Snapshot) Summarize() Summary {
	sum := Summary{
		TotalAssets:      len(s.Assets),
		TotalAdversaries: len(s.Adversaries),
	}
	total := 0
	for _, t := range s.Threats {
		if t.Status != ThreatClosed {
			sum.ActiveThreats++
		}
		total += t.RiskScore
	}
	if n := len(s.Threats); n > 0 {
		// Round half up.
		sum.AverageRisk = (2*total + n) / (2 * n)
	}
	return sum
}
