package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"polysome/internal/storage"
)

func init() {
	reportCmd.Flags().String("db", "", "sqlite database path (required)")
	reportCmd.Flags().String("run", "", "dump counts for this run instead of listing runs")
	_ = reportCmd.MarkFlagRequired("db")
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "List stored runs or dump one run's counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, _ := cmd.Flags().GetString("db")
		runID, _ := cmd.Flags().GetString("run")

		store, err := storage.NewStore("sqlite", dbPath)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if err := store.Init(ctx); err != nil {
			return err
		}
		defer func() { _ = storage.CloseIfSupported(store) }()

		if runID == "" {
			runs, err := store.ListRuns(ctx)
			if err != nil {
				return err
			}
			fmt.Println("id\tseed\trun_time\tconfig")
			for _, run := range runs {
				fmt.Printf("%s\t%d\t%g\t%s\n", run.ID, run.Seed, run.RunTime, run.ConfigPath)
			}
			return nil
		}

		run, ok, err := store.GetRun(ctx, runID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("run %s not found", runID)
		}
		samples, err := store.GetCounts(ctx, run.ID)
		if err != nil {
			return err
		}
		return writeCountsTSV(os.Stdout, samples)
	},
}
