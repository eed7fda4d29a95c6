package commands

import (
	"encoding/json"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/exp/rand"

	"github.com/tpe-go/tpe/tpe"
)

var (
	// Version is set at build time via ldflags.
	Version = "dev"

	inputPath    string
	verbose      bool
	debugDumpDir string
	logger       zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "tpe-suggest",
	Short: "tpe-suggest proposes the next hyperparameter trial via Tree-structured Parzen Estimation",
	Long: `tpe-suggest reads a JSON search space and trial history, runs the TPE
suggest algorithm, and prints one new trial doc bound to the requested id.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := zerolog.InfoLevel
		if verbose {
			level = zerolog.DebugLevel
		}
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
			Level(level).
			With().
			Timestamp().
			Logger()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := loadInput(inputPath)
		if err != nil {
			return err
		}

		sp := in.toSpace()
		trials := in.toTrials()
		cfg := tpe.Config{
			Gamma:            in.Config.Gamma,
			PriorWeight:      in.Config.PriorWeight,
			NEICandidates:    in.Config.NEICandidates,
			NStartupJobs:     in.Config.NStartupJobs,
			LinearForgetting: in.Config.LinearForgetting,
			Logger:           logger,
			DebugDumpDir:     debugDumpDir,
		}

		seed := in.Seed
		if seed == 0 {
			seed = uint64(time.Now().UnixNano())
		}
		rng := rand.New(rand.NewSource(seed))

		out, err := tpe.Suggest([]int{in.NewID}, trials, sp, rng, cfg)
		if err != nil {
			logger.Error().Err(err).Msg("suggest failed")
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out[0])
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.Flags().StringVarP(&inputPath, "input", "i", "", "path to the JSON search-space + trial-history file (required)")
	rootCmd.Flags().StringVar(&debugDumpDir, "debug-dump-dir", "", "directory to write a JSON trial dump to if suggest aborts on corrupt data")
	_ = rootCmd.MarkFlagRequired("input")
	rootCmd.Version = Version
}
