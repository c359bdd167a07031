package batch

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/facecrop/internal/utils"
	"github.com/menta2k/facecrop/pkg/cropper"
	"github.com/menta2k/facecrop/pkg/processing"
	"github.com/menta2k/facecrop/pkg/types"
)

func createTestImage(width, height int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.NRGBA{uint8(x), uint8(y), 90, 255})
		}
	}
	return img
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func newOrchestrator(p FileProcessor) (*Orchestrator, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	o := New(p)
	o.SetOutput(&stdout, &stderr)
	return o, &stdout, &stderr
}

func TestRunDirectoryFiltersNonImages(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "face.jpg"), []byte("x"))
	writeFile(t, filepath.Join(dir, "notes.txt"), []byte("x"))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	writeFile(t, filepath.Join(dir, "sub", "inner.jpg"), []byte("x"))

	p := new(MockProcessor)
	p.On("ProcessFile", types.PathPlan{
		Input:  filepath.Join(dir, "face.jpg"),
		Output: filepath.Join(dir, "face_cropped.jpg"),
	}).Return(nil)

	o, stdout, stderr := newOrchestrator(p)
	report, err := o.RunDirectory(dir, "")
	require.NoError(t, err)

	p.AssertExpectations(t)
	p.AssertNumberOfCalls(t, "ProcessFile", 1)
	assert.Equal(t, 1, report.Total())
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, "Processed: face.jpg\n", stdout.String())
	assert.Empty(t, stderr.String())
}

func TestRunDirectoryLogsSummaryAtDebug(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.png"), []byte("x"))
	writeFile(t, filepath.Join(dir, "b.png"), []byte("x"))

	p := new(MockProcessor)
	p.On("ProcessFile", mock.MatchedBy(func(plan types.PathPlan) bool {
		return filepath.Base(plan.Input) == "b.png"
	})).Return(types.ErrNoFace)
	p.On("ProcessFile", mock.Anything).Return(nil)

	logger, hook := logtest.NewNullLogger()
	o, _, stderr := newOrchestrator(p)
	o.SetLogger(logger)

	_, err := o.RunDirectory(dir, "")
	require.NoError(t, err)
	assert.Empty(t, hook.AllEntries(), "nothing logged at the default level")
	assert.Equal(t, "Skipping b.png: Validation Failed: No faces detected.\n", stderr.String())

	logger.SetLevel(logrus.DebugLevel)
	_, err = o.RunDirectory(dir, "")
	require.NoError(t, err)

	last := hook.LastEntry()
	require.NotNil(t, last)
	assert.Equal(t, logrus.DebugLevel, last.Level)
	assert.Equal(t, "batch finished", last.Message)
	assert.Equal(t, 1, last.Data["succeeded"])
	assert.Equal(t, 1, last.Data["skipped"])
}

func TestRunDirectoryIsolatesFailures(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.png", "b.png", "c.png"} {
		writeFile(t, filepath.Join(dir, name), []byte("x"))
	}

	p := new(MockProcessor)
	p.On("ProcessFile", mock.MatchedBy(func(plan types.PathPlan) bool {
		return filepath.Base(plan.Input) == "b.png"
	})).Return(types.ErrNoFace)
	p.On("ProcessFile", mock.Anything).Return(nil)

	o, stdout, stderr := newOrchestrator(p)
	report, err := o.RunDirectory(dir, "")
	require.NoError(t, err)

	assert.Equal(t, 3, report.Total())
	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 0, report.Failed)
	assert.False(t, report.HasFailures())

	assert.Equal(t, types.StatusSkipped, report.Results[1].Status)
	assert.Equal(t, "Validation Failed: No faces detected.", report.Results[1].Error)
	assert.Equal(t, "Skipping b.png: Validation Failed: No faces detected.\n", stderr.String())
	assert.Equal(t, "Processed: a.png\nProcessed: c.png\n", stdout.String())
}

func TestRunDirectoryCreatesOutputDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.png"), []byte("x"))
	outDir := filepath.Join(t.TempDir(), "nested", "out")

	p := new(MockProcessor)
	p.On("ProcessFile", types.PathPlan{
		Input:  filepath.Join(dir, "b.png"),
		Output: filepath.Join(outDir, "b_cropped.png"),
	}).Return(nil)

	o, _, _ := newOrchestrator(p)
	_, err := o.RunDirectory(dir, outDir)
	require.NoError(t, err)

	assert.True(t, utils.DirExists(outDir))
	p.AssertExpectations(t)
}

func TestRunDirectoryEmpty(t *testing.T) {
	p := new(MockProcessor)
	o, stdout, stderr := newOrchestrator(p)

	report, err := o.RunDirectory(t.TempDir(), "")
	require.NoError(t, err)

	assert.Equal(t, 0, report.Total())
	assert.Empty(t, stdout.String())
	assert.Empty(t, stderr.String())
	p.AssertNotCalled(t, "ProcessFile", mock.Anything)
}

func TestRunFileSuccess(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "photo.jpg")
	writeFile(t, in, []byte("x"))

	p := new(MockProcessor)
	p.On("ProcessFile", types.PathPlan{Input: in, Output: filepath.Join(dir, "photo_cropped.jpg")}).Return(nil)

	o, stdout, _ := newOrchestrator(p)
	report, err := o.RunFile(in, "")
	require.NoError(t, err)

	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, "Successfully processed: "+in+"\n", stdout.String())
}

func TestRunFileExplicitOutput(t *testing.T) {
	p := new(MockProcessor)
	p.On("ProcessFile", types.PathPlan{Input: "in.png", Output: "elsewhere.png"}).Return(nil)

	o, _, _ := newOrchestrator(p)
	report, err := o.RunFile("in.png", "elsewhere.png")
	require.NoError(t, err)

	assert.Equal(t, "elsewhere.png", report.Results[0].Output)
	p.AssertExpectations(t)
}

func TestRunFileFailure(t *testing.T) {
	p := new(MockProcessor)
	p.On("ProcessFile", mock.Anything).Return(&types.ValidationError{Found: 3})

	o, stdout, stderr := newOrchestrator(p)
	report, err := o.RunFile("group.jpg", "")
	require.NoError(t, err)

	assert.True(t, report.HasFailures())
	assert.Equal(t, types.StatusFailed, report.Results[0].Status)
	assert.Empty(t, stdout.String())
	assert.Equal(t, "Error processing group.jpg: Validation Failed: Multiple faces detected (Found 3).\n", stderr.String())
}

func TestRunFilePathError(t *testing.T) {
	p := new(MockProcessor)
	o, _, _ := newOrchestrator(p)

	_, err := o.RunFile("..", "")
	assert.True(t, errors.Is(err, types.ErrPath))
	p.AssertNotCalled(t, "ProcessFile", mock.Anything)
}

func TestRunMissingInput(t *testing.T) {
	o, _, _ := newOrchestrator(new(MockProcessor))

	_, err := o.Run(filepath.Join(t.TempDir(), "missing"), "")
	assert.True(t, errors.Is(err, types.ErrIO))
}

func TestRunDispatch(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "one.png")
	writeFile(t, in, []byte("x"))

	p := new(MockProcessor)
	p.On("ProcessFile", mock.Anything).Return(nil)
	o, stdout, _ := newOrchestrator(p)

	_, err := o.Run(in, "")
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "Successfully processed:")

	stdout.Reset()
	_, err = o.Run(dir, "")
	require.NoError(t, err)
	assert.Equal(t, "Processed: one.png\n", stdout.String())
}

func TestRunDirectoryWithCropper(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "out")
	require.NoError(t, imaging.Save(createTestImage(160, 120), filepath.Join(dir, "one.png")))
	require.NoError(t, imaging.Save(createTestImage(90, 120), filepath.Join(dir, "two.jpg")))
	writeFile(t, filepath.Join(dir, "broken.png"), []byte("not a png"))
	writeFile(t, filepath.Join(dir, "readme.txt"), []byte("skip me"))

	d := new(MockDetector)
	d.On("Detect", mock.Anything, 160, 120).Return([]types.BoundingBox{{X: 10, Y: 10, Width: 30, Height: 30}})
	d.On("Detect", mock.Anything, 90, 120).Return([]types.BoundingBox{})

	c := cropper.New(d, processing.NewProcessor(processing.DefaultOptions()))
	o, stdout, stderr := newOrchestrator(c)

	report, err := o.Run(dir, outDir)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Total())
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 2, report.Skipped)

	out, err := imaging.Open(filepath.Join(outDir, "one_cropped.png"))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 120, 120), out.Bounds())

	assert.False(t, utils.FileExists(filepath.Join(outDir, "two_cropped.jpg")))
	assert.False(t, utils.FileExists(filepath.Join(outDir, "broken_cropped.png")))

	assert.Equal(t, "Processed: one.png\n", stdout.String())
	assert.Contains(t, stderr.String(), "Skipping broken.png: ")
	assert.Contains(t, stderr.String(), "Skipping two.jpg: Validation Failed: No faces detected.\n")
	assert.NotContains(t, stderr.String(), "readme")
}
