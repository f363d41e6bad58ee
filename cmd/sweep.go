package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/dualportal/core/control"
	"github.com/kilianp07/dualportal/core/model"
	"github.com/kilianp07/dualportal/infra/engine"
	"github.com/kilianp07/dualportal/infra/logger"
)

var (
	sweepEnergyRange float64
	sweepFreqRange   float64
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run a one-shot parameter sweep against the reference engine",
	RunE:  runSweep,
}

func init() {
	sweepCmd.Flags().Float64Var(&sweepEnergyRange, "energy-range", 1000, "energy half-width in J")
	sweepCmd.Flags().Float64Var(&sweepFreqRange, "freq-range", 0.5, "frequency half-width in Hz")
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logg := logger.New("sweep-command")
	orch := control.New(engine.NewResonance(cfg.Engine), nil, nil, logg, control.Options{
		DetuneDefault: cfg.Control.DetuneDefault,
	})
	orch.Initialize()
	if _, err := orch.Energy.SetEnergyState(model.Portal1, true); err != nil {
		return err
	}
	if _, err := orch.Energy.SetEnergyState(model.Portal2, true); err != nil {
		return err
	}

	results, err := orch.Sweep.RunSweep(ctx, model.SweepConfiguration{
		EnergyRangeJ: sweepEnergyRange,
		FreqRangeHz:  sweepFreqRange,
	})
	if err != nil {
		return fmt.Errorf("sweep: %w", err)
	}
	approval, err := orch.Sweep.Evaluate()
	if err != nil {
		return fmt.Errorf("evaluate: %w", err)
	}
	for _, r := range results {
		fmt.Printf("f1=%.2f f2=%.2f e1=%.0f e2=%.0f strength=%.3f\n",
			r.Frequency1, r.Frequency2, r.Energy1, r.Energy2, r.BridgeStrength)
	}
	fmt.Println(approval.Report)
	return nil
}
