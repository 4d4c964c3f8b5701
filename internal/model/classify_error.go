package model

// ClassifyError records a bundle that could not be classified.
type ClassifyError struct {
	RunID   string `json:"run_id,omitempty"`
	Account string `json:"account"`
	Version uint64 `json:"version"`
	Kind    string `json:"kind"`
	Error   string `json:"error"`
}
