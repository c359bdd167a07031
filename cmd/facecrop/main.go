package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/menta2k/facecrop"
	"github.com/menta2k/facecrop/internal/config"
	"github.com/menta2k/facecrop/internal/logging"
	"github.com/menta2k/facecrop/pkg/detection"
)

// exitCodeError ends the process with code without printing anything more
type exitCodeError struct {
	code int
}

func (e exitCodeError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

type cli struct {
	cfg    *config.Config
	input  string
	output string
}

func newRootCmd() *cobra.Command {
	c := &cli{cfg: config.Default()}

	rootCmd := &cobra.Command{
		Use:           "facecrop",
		Short:         "Crop photos to a square centered on the single face they contain",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd)
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number of facecrop",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "facecrop v%s\n", facecrop.Version)
		},
	}
	rootCmd.AddCommand(versionCmd)

	flags := rootCmd.Flags()
	flags.StringVarP(&c.input, "input", "i", "", "input path: a single image file or a directory")
	flags.StringVarP(&c.output, "output", "o", "", "output path: destination file if input is a file, destination directory if input is a directory")
	flags.StringVarP(&c.cfg.Detector.ModelPath, "model", "m", "", "pigo cascade file to use instead of the embedded model")
	flags.StringVar(&c.cfg.Output.ReportPath, "report", "", "write a JSON report of the run to this file")
	flags.IntVar(&c.cfg.Output.JPEGQuality, "quality", c.cfg.Output.JPEGQuality, "JPEG output quality (1-100)")
	flags.Float32Var(&c.cfg.Output.WebPQuality, "webp-quality", c.cfg.Output.WebPQuality, "WebP output quality (0-100)")
	flags.BoolVar(&c.cfg.Output.WebPLossless, "lossless", false, "WebP output lossless mode")
	flags.BoolVarP(&c.cfg.Logging.Verbose, "verbose", "v", false, "verbose output")
	flags.StringVar(&c.cfg.Logging.File, "log-file", "", "also write logs to this rotating file")
	_ = rootCmd.MarkFlagRequired("input")

	return rootCmd
}

func (c *cli) run(cmd *cobra.Command) error {
	closer, err := logging.Setup(logging.Options{Verbose: c.cfg.Logging.Verbose, File: c.cfg.Logging.File})
	if err != nil {
		return err
	}
	defer closer.Close()

	if err := c.cfg.Validate(); err != nil {
		return err
	}

	opts, err := optionsFromConfig(c.cfg)
	if err != nil {
		return err
	}

	fc, err := facecrop.New(opts)
	if err != nil {
		return fmt.Errorf("failed to create face detector: %w", err)
	}
	fc.SetOutput(cmd.OutOrStdout(), cmd.ErrOrStderr())

	report, err := fc.Run(c.input, c.output)
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"input":     report.Input,
		"succeeded": report.Succeeded,
		"skipped":   report.Skipped,
		"failed":    report.Failed,
	}).Debug("run finished")

	if c.cfg.Output.ReportPath != "" {
		if err := facecrop.WriteReport(report, c.cfg.Output.ReportPath); err != nil {
			return err
		}
	}

	// only single-file mode records StatusFailed
	if report.HasFailures() {
		return exitCodeError{code: 1}
	}
	return nil
}

// optionsFromConfig maps the runtime configuration onto library options,
// reading the model file when one was given
func optionsFromConfig(cfg *config.Config) (facecrop.Options, error) {
	opts := facecrop.DefaultOptions()

	opts.Detector = detection.Params{
		MinSize:        cfg.Detector.MinFaceSize,
		MaxSize:        cfg.Detector.MaxFaceSize,
		ScoreThreshold: cfg.Detector.ScoreThreshold,
		PyramidScale:   cfg.Detector.PyramidScale,
		StepX:          cfg.Detector.StepX,
		StepY:          cfg.Detector.StepY,
		ClusterIoU:     cfg.Detector.ClusterIoU,
	}

	opts.Output.JPEGQuality = cfg.Output.JPEGQuality
	opts.Output.WebPQuality = cfg.Output.WebPQuality
	opts.Output.WebPLossless = cfg.Output.WebPLossless

	if cfg.Detector.ModelPath != "" {
		model, err := detection.LoadModelFile(cfg.Detector.ModelPath)
		if err != nil {
			return facecrop.Options{}, err
		}
		opts.Model = model
	}

	return opts, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		var ec exitCodeError
		if errors.As(err, &ec) {
			os.Exit(ec.code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
