package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"gosigtest/app"
	"gosigtest/internal/config"
	"gosigtest/internal/container"
)

// env carries the container built from the loaded configuration.
type env struct {
	c *container.Container
}

func main() {
	// Load environment variables from .env file (if present)
	_ = godotenv.Load()

	e := &env{}
	err := newRootCmd(e).Execute()
	if cerr := e.close(); err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(e *env) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "sigtest",
		Short:         "Paired bootstrap significance testing for system comparisons",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.load()
		},
	}

	rootCmd.AddCommand(
		newCreateScheduleCmd(e),
		newResampleCmd(e),
		newCompareCmd(e),
		newRunCmd(e),
		newHasseCmd(e),
		newCLDCmd(e),
		newNearBestCmd(e),
		newIntersectCmd(e),
		newSweepCmd(e),
		newDumpCmd(e),
		newDescribeCmd(e),
	)
	return rootCmd
}

func (e *env) load() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if e.c != nil {
		// keep an already opened store across commands
		e.c.Config = cfg
		return nil
	}
	e.c, err = container.New(cfg)
	return err
}

func (e *env) close() error {
	if e.c == nil {
		return nil
	}
	return e.c.Close()
}

func (e *env) cfg() *config.Config { return e.c.Config }

func (e *env) service(ctx context.Context, withScorer, withStore bool) (*app.SignificanceService, error) {
	return e.c.Service(ctx, withScorer, withStore)
}
