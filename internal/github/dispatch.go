package github

import "fmt"

// DispatchRequest is the body of POST /repos/{repo}/actions/workflows/{workflow}/dispatches.
type DispatchRequest struct {
	Ref    string            `json:"ref"`
	Inputs map[string]string `json:"inputs"`
}

// DispatchError is returned when the API answers a dispatch with a non-2xx status.
// Body holds the raw response body for diagnostics.
type DispatchError struct {
	StatusCode int
	Body       string
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("GitHub API error: %d", e.StatusCode)
}
