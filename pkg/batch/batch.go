// Package batch drives the cropper over a single file or every image in a
// directory, isolating per-file failures and collecting a report.
package batch

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/menta2k/facecrop/internal/utils"
	"github.com/menta2k/facecrop/pkg/cropper"
	"github.com/menta2k/facecrop/pkg/types"
)

// FileProcessor crops one planned file
type FileProcessor interface {
	ProcessFile(plan types.PathPlan) (cropper.CropResult, error)
}

// Orchestrator processes files strictly one after another
type Orchestrator struct {
	processor FileProcessor
	stdout    io.Writer
	stderr    io.Writer
	log       logrus.FieldLogger
}

// New creates an Orchestrator printing progress to os.Stdout and os.Stderr
func New(processor FileProcessor) *Orchestrator {
	return &Orchestrator{
		processor: processor,
		stdout:    os.Stdout,
		stderr:    os.Stderr,
		log:       logrus.StandardLogger(),
	}
}

// SetOutput redirects the per-file progress lines
func (o *Orchestrator) SetOutput(stdout, stderr io.Writer) {
	o.stdout = stdout
	o.stderr = stderr
}

// SetLogger replaces the diagnostic logger
func (o *Orchestrator) SetLogger(log logrus.FieldLogger) {
	o.log = log
}

// Run processes input as a directory or a single file depending on what it
// is. output is a destination file for a file input and a destination
// directory for a directory input; empty means next to the source.
//
// The returned error is reserved for failures before any file is processed.
// Per-file failures are recorded in the report.
func (o *Orchestrator) Run(input, output string) (*types.BatchReport, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, fmt.Errorf("failed to read input %s: %w: %w", input, types.ErrIO, err)
	}

	if info.IsDir() {
		return o.RunDirectory(input, output)
	}
	return o.RunFile(input, output)
}

// RunFile processes a single file. A failure is printed and recorded as
// StatusFailed.
func (o *Orchestrator) RunFile(input, output string) (*types.BatchReport, error) {
	plan, err := utils.PlanFile(input, output)
	if err != nil {
		return nil, err
	}

	report := &types.BatchReport{Input: input}
	if _, err := o.processor.ProcessFile(plan); err != nil {
		fmt.Fprintf(o.stderr, "Error processing %s: %v\n", input, err)
		o.log.WithError(err).WithFields(logrus.Fields{
			"file":  input,
			"stage": cropper.StageOf(err),
		}).Debug("file failed")
		report.Add(types.FileResult{Input: input, Output: plan.Output, Status: types.StatusFailed, Error: err.Error()})
		return report, nil
	}

	fmt.Fprintf(o.stdout, "Successfully processed: %s\n", input)
	report.Add(types.FileResult{Input: input, Output: plan.Output, Status: types.StatusSucceeded})
	return report, nil
}

// RunDirectory processes every image file directly inside dir. Sub-directories
// and files with other extensions are ignored without being read or reported.
// A failing file is printed, recorded as StatusSkipped and the loop moves on.
func (o *Orchestrator) RunDirectory(dir, outputDir string) (*types.BatchReport, error) {
	if outputDir != "" {
		if err := utils.EnsureDir(outputDir); err != nil {
			return nil, err
		}
	}

	files, err := utils.ListImageFiles(dir)
	if err != nil {
		return nil, err
	}
	o.log.WithFields(logrus.Fields{"dir": dir, "images": len(files)}).Debug("directory scanned")

	report := &types.BatchReport{Input: dir}
	for _, file := range files {
		report.Add(o.processEntry(file, outputDir))
	}

	o.log.WithFields(logrus.Fields{
		"succeeded": report.Succeeded,
		"skipped":   report.Skipped,
	}).Debug("batch finished")
	return report, nil
}

func (o *Orchestrator) processEntry(file, outputDir string) types.FileResult {
	name := filepath.Base(file)

	plan, err := utils.PlanDirEntry(file, outputDir)
	if err == nil {
		_, err = o.processor.ProcessFile(plan)
	}
	if err != nil {
		fmt.Fprintf(o.stderr, "Skipping %s: %v\n", name, err)
		o.log.WithError(err).WithFields(logrus.Fields{
			"file":  file,
			"stage": cropper.StageOf(err),
		}).Debug("file skipped")
		return types.FileResult{Input: file, Output: plan.Output, Status: types.StatusSkipped, Error: err.Error()}
	}

	fmt.Fprintf(o.stdout, "Processed: %s\n", name)
	return types.FileResult{Input: file, Output: plan.Output, Status: types.StatusSucceeded}
}
