package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"digital.vasic.distverify/pkg/buildenv"
	"digital.vasic.distverify/pkg/matrix"
	"digital.vasic.distverify/pkg/report"
)

// maxListedGaps bounds the gaps printed by `matrix check`.
const maxListedGaps = 20

func newMatrixCommand(a *App) *cobra.Command {
	matrixCmd := &cobra.Command{
		Use:   "matrix",
		Short: "Inspect the expectation matrix",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	var ov overrideFlags
	show := &cobra.Command{
		Use:   "show",
		Short: "Resolve the matrix for an environment without an interpreter",
		Long: `Resolve the matrix for a synthetic environment and list the
variant each feature selects. TERM, DISPLAY and TCL_LIBRARY are
taken from the process environment.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			overrides, err := ov.resolve(cmd.Flags())
			if err != nil {
				return usageError(err)
			}
			return a.showMatrix(overrides)
		},
	}
	ov.register(show.Flags())

	check := &cobra.Command{
		Use:   "check",
		Short: "Verify the matrix covers every supported environment",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return a.checkMatrix()
		},
	}

	matrixCmd.AddCommand(show, check)
	return matrixCmd
}

func (a *App) showMatrix(ov buildenv.Overrides) error {
	if ov.Version.IsZero() {
		return usageError(fmt.Errorf("--python-version is required"))
	}
	family := ov.OS
	if family == "" {
		f, err := buildenv.ParseFamily(a.Host)
		if err != nil {
			return usageError(err)
		}
		family = f
	}

	m, err := a.LoadMatrix(a.cfg.Matrix)
	if err != nil {
		return usageError(err)
	}
	loader := a.NewLoader()
	if a.cfg.EnvFile != "" {
		if err := loader.Load(a.cfg.EnvFile); err != nil {
			return usageError(err)
		}
	}
	env := buildenv.NewBuilder(loader, nil).Synthetic(family, ov.Version, ov)

	w := a.Stdout
	fmt.Fprintln(w, TitleStyle.Render("Matrix resolution")+" "+SubtitleStyle.Render(env.String()))
	fmt.Fprintln(w)

	gaps := 0
	for _, res := range m.Resolve(env) {
		id := CmdStyle.Render(fmt.Sprintf("%-20s", res.Feature.ID))
		switch {
		case res.Gap != nil:
			gaps++
			fmt.Fprintf(w, "  %s %s\n", id, ErrorStyle.Render("GAP: "+res.Gap.Error()))
		case res.Variant.Skipped():
			fmt.Fprintf(w, "  %s %s %s\n", id, res.Variant.Name,
				SubtitleStyle.Render("(skip: "+res.Variant.Skip+")"))
		default:
			fmt.Fprintf(w, "  %s %s %s\n", id, res.Variant.Name,
				SubtitleStyle.Render(fmt.Sprintf("(%d expectations)", len(res.Variant.Expect))))
		}
	}

	if gaps > 0 {
		return &ExitError{Code: report.ExitInternal}
	}
	return nil
}

func (a *App) checkMatrix() error {
	m, err := a.LoadMatrix(a.cfg.Matrix)
	if err != nil {
		return usageError(err)
	}
	domain := matrix.DefaultDomain()
	gaps := m.CheckCoverage(domain)

	w := a.Stdout
	if len(gaps) == 0 {
		fmt.Fprintln(w, SuccessStyle.Render(fmt.Sprintf(
			"matrix covers %d environments across %d features",
			len(domain.Environments()), m.Count(),
		)))
		return nil
	}

	writeGaps(w, gaps)
	return &ExitError{Code: report.ExitInternal}
}

func writeGaps(w io.Writer, gaps []*matrix.GapError) {
	fmt.Fprintln(w, ErrorStyle.Render(fmt.Sprintf("%d specification gaps", len(gaps))))
	for i, gap := range gaps {
		if i == maxListedGaps {
			fmt.Fprintln(w, SubtitleStyle.Render(fmt.Sprintf(
				"  ... and %d more", len(gaps)-maxListedGaps,
			)))
			return
		}
		fmt.Fprintln(w, "  "+gap.Error())
	}
}
