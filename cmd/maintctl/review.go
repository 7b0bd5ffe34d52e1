package main

import (
	"context"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"maintenance-backend/internal/bootstrap"
	"maintenance-backend/internal/plans"
	"maintenance-backend/internal/review"
)

func reviewCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{Use: "review", Short: "Inspect annotation state"}
	cmd.AddCommand(reviewShowCmd(v), reviewGateCmd(v))
	return cmd
}

// reviewDoc is the YAML rendering of a review; signatures are reduced to presence flags.
type reviewDoc struct {
	PlanID                string   `yaml:"planId"`
	Tag                   string   `yaml:"tag"`
	EquipmentStatus       string   `yaml:"equipmentStatus"`
	Critical              bool     `yaml:"critical"`
	AcknowledgedRisks     string   `yaml:"acknowledgedRisks"`
	SafetyVerification    string   `yaml:"safetyVerification"`
	TechnicalReviewerName string   `yaml:"technicalReviewerName,omitempty"`
	TechnicalReviewDate   string   `yaml:"technicalReviewDate,omitempty"`
	TechnicalComments     string   `yaml:"technicalComments,omitempty"`
	FieldObservations     string   `yaml:"fieldObservations,omitempty"`
	RootCause             string   `yaml:"rootCause,omitempty"`
	EngineeringConclusion string   `yaml:"engineeringConclusion,omitempty"`
	Executor              signer   `yaml:"executor"`
	Supervisor            signer   `yaml:"supervisor"`
	Satisfied             []string `yaml:"satisfied"`
}

type signer struct {
	Name   string `yaml:"name,omitempty"`
	Date   string `yaml:"date,omitempty"`
	Signed bool   `yaml:"signed"`
}

func newReviewDoc(plan plans.Plan, st review.State) reviewDoc {
	doc := reviewDoc{
		PlanID:                plan.ID,
		Tag:                   plan.Tag,
		EquipmentStatus:       string(st.EquipmentStatus),
		Critical:              st.IsCritical,
		AcknowledgedRisks:     fmt.Sprintf("%d/%d", st.AcknowledgedRisks(len(plan.SafetyAnalysis)), len(plan.SafetyAnalysis)),
		SafetyVerification:    string(st.SafetyVerification),
		TechnicalReviewerName: st.TechnicalReviewerName,
		TechnicalReviewDate:   st.TechnicalReviewDate,
		TechnicalComments:     st.TechnicalComments,
		FieldObservations:     st.FieldObservations,
		RootCause:             st.RootCause,
		EngineeringConclusion: st.EngineeringConclusion,
		Executor:              signer{Name: st.Executor.Name, Date: st.Executor.Date, Signed: st.Executor.Signature != ""},
		Supervisor:            signer{Name: st.Supervisor.Name, Date: st.Supervisor.Date, Signed: st.Supervisor.Signature != ""},
		Satisfied:             []string{},
	}
	if doc.SafetyVerification == "" {
		doc.SafetyVerification = "pending"
	}
	for _, c := range review.Satisfied(plan, st) {
		doc.Satisfied = append(doc.Satisfied, string(c))
	}
	return doc
}

func openReview(ctx context.Context, app *bootstrap.App, id string) (plans.Plan, review.State, error) {
	plan, err := app.Plans.Open(ctx, id)
	if err != nil {
		return plans.Plan{}, review.State{}, err
	}
	return app.Review.Snapshot(plan.ID)
}

func reviewShowCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "show <plan-id>",
		Short: "Print the annotation state of a plan as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), v, func(ctx context.Context, app *bootstrap.App) error {
				plan, st, err := openReview(ctx, app, args[0])
				if err != nil {
					return err
				}
				if v.GetBool("json") {
					return printJSON(cmd.OutOrStdout(), review.NewView(plan, st))
				}
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent(2)
				if err := enc.Encode(newReviewDoc(plan, st)); err != nil {
					return err
				}
				return enc.Close()
			})
		},
	}
}

func reviewGateCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "gate <plan-id>",
		Short: "List the unmet export preconditions of a plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), v, func(ctx context.Context, app *bootstrap.App) error {
				plan, st, err := openReview(ctx, app, args[0])
				if err != nil {
					return err
				}
				result := review.Gate{}.Check(plan, st)
				if v.GetBool("json") {
					return printJSON(cmd.OutOrStdout(), result)
				}
				if result.Allowed {
					fmt.Fprintln(cmd.OutOrStdout(), "export allowed")
					return nil
				}
				printViolations(cmd, result)
				return nil
			})
		},
	}
}

func printViolations(cmd *cobra.Command, result review.Result) {
	tw := table.NewWriter()
	tw.SetOutputMirror(cmd.OutOrStdout())
	tw.SetTitle(review.BlockedMessage)
	tw.AppendHeader(table.Row{"#", "Precondition", "Field", "Message"})
	for i, viol := range result.Violations {
		tw.AppendRow(table.Row{i + 1, viol.Code, viol.Field, viol.Message})
	}
	tw.Render()
}
