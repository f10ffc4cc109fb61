// Command dlm ingests labeled business documents, builds training datasets
// and trains the baseline classifier. It can also serve the same operations
// over HTTP and MCP.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"

	"github.com/hazyhaar/dlm/corpus"
	"github.com/hazyhaar/dlm/dataset"
	"github.com/hazyhaar/dlm/trainer"
)

var (
	configFile string
	logger     *slog.Logger

	svc *corpus.Service
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "dlm",
	Short: "Document labeling machine: ingest, dataset, train",
	Long: `dlm ingests labeled business documents into an SQLite catalog,
assembles training datasets from the catalog, and trains a baseline
classifier that predicts a document's business label.`,
	SilenceUsage:      true,
	PersistentPreRunE: initService,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if svc != nil {
			return svc.Close()
		}
		return nil
	},
}

func init() {
	logger = slog.New(slog.NewTextHandler(os.Stderr, nil))

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: built-in defaults)")

	ingestCmd.Flags().Bool("json", false, "print the full report as JSON")
	trainCmd.Flags().Int64("seed", 42, "train/test split seed")
	trainCmd.Flags().Float64("test-fraction", 0.2, "held-out share for evaluation")
	trainCmd.Flags().Bool("use-text", false, "use extracted text features")
	datasetCmd.Flags().Bool("include-text", false, "include extracted text in rows")

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(datasetCmd)
	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(serveCmd)
}

func initService(cmd *cobra.Command, args []string) error {
	cfg := corpus.DefaultConfig()
	if configFile != "" {
		loaded, err := corpus.LoadConfig(configFile)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	s, err := corpus.New(cfg, corpus.WithLogger(logger))
	if err != nil {
		return err
	}
	svc = s
	return nil
}

var ingestCmd = &cobra.Command{
	Use:   "ingest <listing-file>",
	Short: "Ingest a csv/xlsx listing of path,label pairs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pairs, err := corpus.LoadPairs(args[0])
		if err != nil {
			return err
		}

		report, err := svc.Ingest(cmd.Context(), pairs)
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return json.NewEncoder(os.Stdout).Encode(report)
		}
		fmt.Printf("run %s: %d succeeded, %d failed of %d\n",
			report.RunID, report.Succeeded, report.Failed, report.Total)
		for _, f := range report.Failures {
			fmt.Printf("  %s: %s (%s)\n", f.Reason, f.Path, f.Detail)
		}
		return nil
	},
}

var datasetCmd = &cobra.Command{
	Use:   "dataset",
	Short: "Build the training dataset and print it as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		includeText, _ := cmd.Flags().GetBool("include-text")
		rows, err := svc.BuildDataset(dataset.FeatureConfig{IncludeText: includeText})
		if err != nil {
			return err
		}
		return json.NewEncoder(os.Stdout).Encode(rows)
	},
}

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the baseline classifier and report metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		seed, _ := cmd.Flags().GetInt64("seed")
		frac, _ := cmd.Flags().GetFloat64("test-fraction")
		useText, _ := cmd.Flags().GetBool("use-text")

		res, err := svc.Train(trainer.Config{
			Seed:         seed,
			TestFraction: frac,
			UseText:      useText,
			Logger:       logger,
		})
		if err != nil {
			return err
		}

		fmt.Printf("model %s\n", res.ModelID)
		fmt.Printf("accuracy %.3f on %d held-out rows (stratified=%v)\n",
			res.Metrics.Accuracy, res.Metrics.TestRows, res.Metrics.Stratified)
		for _, c := range res.Model.Classes {
			pc := res.Metrics.PerClass[c]
			fmt.Printf("  %-20s precision %.3f  recall %.3f  f1 %.3f  support %d\n",
				c, pc.Precision, pc.Recall, pc.F1, pc.Support)
		}
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		r := chi.NewRouter()
		svc.RegisterHTTP(r)

		listen := svc.Config().Listen
		server := &http.Server{Addr: listen, Handler: r}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errc := make(chan error, 1)
		go func() { errc <- server.ListenAndServe() }()
		logger.Info("serving", "listen", listen)

		select {
		case err := <-errc:
			return err
		case <-ctx.Done():
			logger.Info("shutting down")
			return server.Shutdown(context.Background())
		}
	},
}
