package model

import "io"

// Upload is one file from the submission form. Open is called at most once,
// and only for uploads that pass validation.
type Upload struct {
	Filename string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

// SubmissionRequest is one "sell with us" form post
type SubmissionRequest struct {
	Name   string
	Email  string
	Phone  string
	Images []Upload
}

// StagedFile is an accepted upload written to the request's staging directory
type StagedFile struct {
	Path         string
	OriginalName string
}

// SubmissionResult acknowledges a delivered submission
type SubmissionResult struct {
	RequestID string
	Attached  int
	Skipped   int
}
