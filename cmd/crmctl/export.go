package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/spec-kit/recruitment-crm/internal/domain"
	"github.com/spec-kit/recruitment-crm/internal/export"
	"github.com/spec-kit/recruitment-crm/internal/repository"
	"github.com/spec-kit/recruitment-crm/internal/service"
)

func newExportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write CSV or XLSX exports to disk",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newExportCandidatesCommand())
	cmd.AddCommand(newExportCallsCommand())
	return cmd
}

func newExportCandidatesCommand() *cobra.Command {
	var (
		format                       string
		statuses                     []string
		text, skill, location        string
		source, position             string
		minExperience, maxExperience int
		outDir                       string
		actor                        string
	)

	cmd := &cobra.Command{
		Use:   "candidates",
		Short: "Export candidates matching the given filters",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			fmtValue, err := export.ParseFormat(format)
			if err != nil {
				return err
			}

			filter := repository.CandidateFilter{
				Text:     optional(text),
				Skill:    optional(skill),
				Location: optional(location),
				Source:   optional(source),
				Position: optional(position),
			}
			for _, raw := range statuses {
				status, ok := domain.ParseCandidateStatus(raw)
				if !ok {
					return fmt.Errorf("unknown status %q", raw)
				}
				filter.Statuses = append(filter.Statuses, status)
			}
			if cmd.Flags().Changed("min-experience") {
				filter.MinExperience = &minExperience
			}
			if cmd.Flags().Changed("max-experience") {
				filter.MaxExperience = &maxExperience
			}

			env, err := openEnv(ctx)
			if err != nil {
				return err
			}
			defer env.Close()

			principal, err := env.actor(ctx, actor)
			if err != nil {
				return err
			}
			exports := service.NewExportService(service.ExportDependencies{Store: env.store, Logger: env.logger})
			table, err := exports.CandidatesTable(ctx, principal, filter)
			if err != nil {
				return err
			}
			return writeExport(cmd, exports, principal, service.ExportEntityCandidates, fmtValue, table, dirOr(outDir, env.cfg.Export.Dir))
		},
	}

	cmd.Flags().StringVar(&format, "format", "csv", "csv or xlsx")
	cmd.Flags().StringSliceVar(&statuses, "status", nil, "Pipeline statuses to include")
	cmd.Flags().StringVar(&text, "q", "", "Free text matched against name, email, role and company")
	cmd.Flags().StringVar(&skill, "skill", "", "Skill substring")
	cmd.Flags().StringVar(&location, "location", "", "Location substring")
	cmd.Flags().StringVar(&source, "source", "", "Exact source")
	cmd.Flags().StringVar(&position, "position", "", "Position applied substring")
	cmd.Flags().IntVar(&minExperience, "min-experience", 0, "Minimum years of experience")
	cmd.Flags().IntVar(&maxExperience, "max-experience", 0, "Maximum years of experience")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "Directory for the export file (defaults to EXPORT_DIR)")
	cmd.Flags().StringVar(&actor, "actor", "admin", "Account performing the export")
	return cmd
}

func newExportCallsCommand() *cobra.Command {
	var (
		format      string
		candidateID int64
		outcome     string
		outDir      string
		actor       string
	)

	cmd := &cobra.Command{
		Use:   "calls",
		Short: "Export call history",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			fmtValue, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			filter := repository.CallFilter{Outcome: optional(outcome)}
			if candidateID > 0 {
				filter.CandidateID = &candidateID
			}

			env, err := openEnv(ctx)
			if err != nil {
				return err
			}
			defer env.Close()

			principal, err := env.actor(ctx, actor)
			if err != nil {
				return err
			}
			exports := service.NewExportService(service.ExportDependencies{Store: env.store, Logger: env.logger})
			table, err := exports.CallsTable(ctx, principal, filter)
			if err != nil {
				return err
			}
			return writeExport(cmd, exports, principal, service.ExportEntityCalls, fmtValue, table, dirOr(outDir, env.cfg.Export.Dir))
		},
	}

	cmd.Flags().StringVar(&format, "format", "csv", "csv or xlsx")
	cmd.Flags().Int64Var(&candidateID, "candidate-id", 0, "Only calls with this candidate")
	cmd.Flags().StringVar(&outcome, "outcome", "", "Exact outcome")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "Directory for the export file (defaults to EXPORT_DIR)")
	cmd.Flags().StringVar(&actor, "actor", "admin", "Account performing the export")
	return cmd
}

func writeExport(cmd *cobra.Command, exports *service.ExportService, principal *domain.Principal, entity string, format export.Format, table export.Table, dir string) error {
	ctx := commandContext(cmd)
	now := time.Now().UTC()
	path, err := export.WriteFile(dir, entity, format, table, now)
	if err != nil {
		return err
	}
	filename := export.Filename(entity, format, now)
	if err := exports.RecordExport(ctx, principal, entity, format, len(table.Rows), filename); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d rows to %s\n", len(table.Rows), path)
	return nil
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

func dirOr(dir, fallback string) string {
	if dir != "" {
		return dir
	}
	return fallback
}
