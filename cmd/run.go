package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/idea-research/internal/intake"
)

var (
	runFile string
	runReq  intake.Request
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Research a single business idea",
	Long:  "Runs the full research pipeline for one idea given by flags or a YAML file and prints the run record as JSON.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		req := runReq
		if runFile != "" {
			fromFile, err := loadRequest(runFile)
			if err != nil {
				return err
			}
			req = fromFile
		}

		idea, err := intake.Normalize(req)
		if err != nil {
			return err
		}

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		run, _, runErr := env.Controller.Run(ctx, idea)
		if run == nil {
			return eris.Wrap(runErr, "research run")
		}

		zap.L().Info("research run finished",
			zap.String("run_id", run.ID),
			zap.String("idea", idea.Name),
			zap.String("state", string(run.State)),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(run); err != nil {
			return eris.Wrap(err, "encode run")
		}
		return runErr
	},
}

// loadRequest reads an idea request from a YAML file.
func loadRequest(path string) (intake.Request, error) {
	f, err := os.Open(path)
	if err != nil {
		return intake.Request{}, eris.Wrapf(err, "open idea file %s", path)
	}
	defer f.Close() //nolint:errcheck
	return decodeRequest(f)
}

func decodeRequest(r io.Reader) (intake.Request, error) {
	var req intake.Request
	if err := yaml.NewDecoder(r).Decode(&req); err != nil {
		return intake.Request{}, eris.Wrap(err, "decode idea request")
	}
	return req, nil
}

func init() {
	runCmd.Flags().StringVar(&runFile, "file", "", "YAML file describing the idea (overrides the other flags)")
	runCmd.Flags().StringVar(&runReq.Name, "name", "", "idea name")
	runCmd.Flags().StringVar(&runReq.Industry, "industry", "", "industry, e.g. \"fintech\"")
	runCmd.Flags().StringVar(&runReq.AnalysisType, "analysis", "all", "analysis type: all, financial, market or competitive")
	runCmd.Flags().StringVar(&runReq.Geography, "geography", "", "target geography (default global)")
	runCmd.Flags().IntVar(&runReq.HorizonYears, "horizon", 0, "planning horizon in years (default 5)")
	runCmd.Flags().Float64Var(&runReq.Budget, "budget", 0, "available budget in USD")
	runCmd.Flags().StringSliceVar(&runReq.Sources, "source", nil, "source URL to research; repeat to add more (skips discovery)")
	rootCmd.AddCommand(runCmd)
}
