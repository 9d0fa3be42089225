package domain

import "fmt"

// UpstreamError carries the failure of an outbound call so handlers can
// map it to a 502 with the upstream status and best-effort details.
type UpstreamError struct {
	Source  string
	Status  int
	Details string
}

func (e *UpstreamError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s returned status %d: %s", e.Source, e.Status, e.Details)
	}
	return fmt.Sprintf("%s request failed: %s", e.Source, e.Details)
}
