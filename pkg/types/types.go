package types

// BoundingBox is an axis-aligned face rectangle in pixel coordinates
type BoundingBox struct {
	X      int     `json:"x"`
	Y      int     `json:"y"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Score  float64 `json:"score"`
}

// Center returns the center point of the box using truncating division
func (b BoundingBox) Center() (int, int) {
	return b.X + b.Width/2, b.Y + b.Height/2
}

// CropRect is the square region extracted from the source image
type CropRect struct {
	X    int `json:"x"`
	Y    int `json:"y"`
	Side int `json:"side"`
}

// PathPlan pairs an input file with the path its crop will be written to
type PathPlan struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

// Status is the outcome of processing one file
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// FileResult records what happened to a single input file
type FileResult struct {
	Input  string `json:"input"`
	Output string `json:"output,omitempty"`
	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`
}

// BatchReport summarizes a run over one file or a directory
type BatchReport struct {
	Input     string       `json:"input"`
	Results   []FileResult `json:"results"`
	Succeeded int          `json:"succeeded"`
	Skipped   int          `json:"skipped"`
	Failed    int          `json:"failed"`
}

// Add appends a result and updates the counters
func (r *BatchReport) Add(res FileResult) {
	r.Results = append(r.Results, res)
	switch res.Status {
	case StatusSucceeded:
		r.Succeeded++
	case StatusSkipped:
		r.Skipped++
	case StatusFailed:
		r.Failed++
	}
}

// Total returns the number of files that were attempted
func (r *BatchReport) Total() int {
	return len(r.Results)
}

// HasFailures reports whether any file ended in StatusFailed
func (r *BatchReport) HasFailures() bool {
	return r.Failed > 0
}
