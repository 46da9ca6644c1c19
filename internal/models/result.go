package models

import "github.com/rflorenc/conversion-host-service/internal/errs"

// ActionResult is the uniform response envelope for submission endpoints. It
// is never persisted; the same shape covers synchronous validation failures
// (no task id) and accepted enqueues (task id present).
type ActionResult struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	TaskID    string `json:"task_id,omitempty"`
	ErrorKind string `json:"error_kind,omitempty"`
}

// OKResult builds a success envelope carrying the task handle.
func OKResult(message, taskID string) ActionResult {
	return ActionResult{Success: true, Message: message, TaskID: taskID}
}

// FailResult builds a failure envelope from a typed error.
func FailResult(err error) ActionResult {
	r := ActionResult{Success: false, Message: err.Error()}
	if kind, ok := errs.KindOf(err); ok {
		r.ErrorKind = string(kind)
	}
	return r
}
