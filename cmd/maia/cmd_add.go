package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"maia/internal/tools"
	"maia/internal/tools/threatmodel"
	"maia/internal/types"
)

// Manual entry validates with the same request types the model's tools use.
var (
	assetReq      threatmodel.AddAssetRequest
	adversaryReq  threatmodel.AddAdversaryRequest
	threatReq     threatmodel.AddThreatRequest
	mitigationReq threatmodel.AddMitigationRequest
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Register workspace entries by hand",
}

var addAssetCmd = &cobra.Command{
	Use:   "asset",
	Short: "Register an asset",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := tools.Validate(assetReq); err != nil {
			return err
		}
		return withWorkspace(cmd, func(a *app) string {
			asset := a.domain.AddAsset(types.Asset{
				ID:          uuid.NewString(),
				Name:        assetReq.Name,
				Type:        assetReq.Type,
				Value:       assetReq.Value,
				Description: assetReq.Description,
			})
			return fmt.Sprintf("Activo registrado: %s (%s, valor %d)", asset.Name, asset.Type, asset.Value)
		})
	},
}

var addAdversaryCmd = &cobra.Command{
	Use:   "adversary",
	Short: "Register an adversary",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := tools.Validate(adversaryReq); err != nil {
			return err
		}
		return withWorkspace(cmd, func(a *app) string {
			adv := a.domain.AddAdversary(types.Adversary{
				ID:         uuid.NewString(),
				Name:       adversaryReq.Name,
				Type:       adversaryReq.Type,
				Capability: adversaryReq.Capability,
				Motivation: adversaryReq.Motivation,
			})
			return fmt.Sprintf("Adversario registrado: %s (%s, capacidad %d)", adv.Name, adv.Type, adv.Capability)
		})
	},
}

var addThreatCmd = &cobra.Command{
	Use:   "threat",
	Short: "Register a threat; its risk is computed from impact and probability",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := tools.Validate(threatReq); err != nil {
			return err
		}
		return withWorkspace(cmd, func(a *app) string {
			th := a.domain.AddThreat(types.NewThreat(types.ThreatInput{
				Name:             threatReq.Name,
				Category:         threatReq.Category,
				RelatedAsset:     threatReq.RelatedAsset,
				RelatedAdversary: threatReq.RelatedAdversary,
				Impact:           threatReq.Impact,
				Probability:      threatReq.Probability,
				Description:      threatReq.Description,
			}, uuid.NewString(), time.Now()))
			return fmt.Sprintf("Amenaza registrada: %s. Riesgo calculado: %d (%s)", th.Name, th.RiskScore, th.RiskLevel)
		})
	},
}

var addMitigationCmd = &cobra.Command{
	Use:   "mitigation",
	Short: "Attach a mitigation to a threat by its exact name",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := tools.Validate(mitigationReq); err != nil {
			return err
		}
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		mit := types.NewMitigation(uuid.NewString(), mitigationReq.Description, mitigationReq.Strategy)
		if err := a.domain.AddMitigation(mitigationReq.ThreatName, mit); err != nil {
			return err
		}
		if err := a.saveWorkspace(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Plan de mitigación registrado en %q\n", mitigationReq.ThreatName)
		return nil
	},
}

// withWorkspace opens the app, applies change and saves the workspace.
func withWorkspace(cmd *cobra.Command, change func(a *app) string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	msg := change(a)
	if err := a.saveWorkspace(cmd.Context()); err != nil {
		return err
	}
	a.metrics.UpdateWorkspace(a.domain.Summary())
	logger.Debug("Workspace updated", zap.String("command", cmd.CommandPath()))
	fmt.Fprintln(cmd.OutOrStdout(), msg)
	return nil
}

var clearYes bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every asset, adversary and threat in the workspace",
	Long: `Empty the threat model workspace. Archived conversations are kept.
The command refuses to run without --yes.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !clearYes {
			return fmt.Errorf("refusing to clear the workspace without --yes")
		}
		return withWorkspace(cmd, func(a *app) string {
			a.domain.Clear()
			return "Espacio de trabajo vaciado."
		})
	},
}

func init() {
	f := addAssetCmd.Flags()
	f.StringVar(&assetReq.Name, "name", "", "Asset name")
	f.StringVar((*string)(&assetReq.Type), "type", "", "Físico, Digital, Intangible or Humano")
	f.IntVar(&assetReq.Value, "value", 0, "Strategic value (1-5)")
	f.StringVar(&assetReq.Description, "description", "", "Short description")

	f = addAdversaryCmd.Flags()
	f.StringVar(&adversaryReq.Name, "name", "", "Adversary name")
	f.StringVar((*string)(&adversaryReq.Type), "type", "", "Estatal, Criminal, Interno, Competencia or Natural")
	f.IntVar(&adversaryReq.Capability, "capability", 0, "Capability and resources (1-5)")
	f.StringVar(&adversaryReq.Motivation, "motivation", "", "Main motivation")

	f = addThreatCmd.Flags()
	f.StringVar(&threatReq.Name, "name", "", "Short risk name")
	f.StringVar(&threatReq.Category, "category", "", "Category (STRIDE, JURIST...)")
	f.StringVar(&threatReq.RelatedAsset, "asset", "", "Exact name of the affected asset")
	f.StringVar(&threatReq.RelatedAdversary, "adversary", "", "Exact name of the adversary")
	f.IntVar(&threatReq.Impact, "impact", 0, "Impact (1-5)")
	f.IntVar(&threatReq.Probability, "probability", 0, "Probability (1-5)")
	f.StringVar(&threatReq.Description, "description", "", "Scenario narrative")

	f = addMitigationCmd.Flags()
	f.StringVar(&mitigationReq.ThreatName, "threat", "", "Exact name of the threat to mitigate")
	f.StringVar(&mitigationReq.Description, "description", "", "Concrete action to take")
	f.StringVar((*string)(&mitigationReq.Strategy), "strategy", "", "Prevención, Mitigación, Transferencia or Aceptación")

	clearCmd.Flags().BoolVar(&clearYes, "yes", false, "Confirm that the workspace should be emptied")

	addCmd.AddCommand(addAssetCmd, addAdversaryCmd, addThreatCmd, addMitigationCmd)
}
