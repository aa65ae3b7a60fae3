package model

// SubmissionStatus tracks one CV analysis request through its lifecycle.
type SubmissionStatus string

const (
	StatusIdle       SubmissionStatus = "idle"
	StatusValidating SubmissionStatus = "validating"
	StatusSubmitting SubmissionStatus = "submitting"
	StatusSucceeded  SubmissionStatus = "succeeded"
	StatusFailed     SubmissionStatus = "failed"
)
