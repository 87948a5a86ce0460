package provisioning

import (
	"fmt"

	"github.com/imamik/agentctl/internal/resource"
)

// CreationFailedError means the remote create call was rejected. It is
// fatal for that resource's provisioning and is never followed by
// polling; unrelated resources are unaffected.
type CreationFailedError struct {
	Type   resource.Type
	Name   string
	Reason error
}

func (e *CreationFailedError) Error() string {
	return fmt.Sprintf("creation of %s %q failed: %v", e.Type, e.Name, e.Reason)
}

func (e *CreationFailedError) Unwrap() error { return e.Reason }

// TimeoutError means the resource never reached a ready status within
// the poll budget. LastStatus lets the operator decide whether to
// re-run or investigate.
type TimeoutError struct {
	Type       resource.Type
	Name       string
	LastStatus resource.Status
	Attempts   int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s %q not ready after %d polls (last status %q)",
		e.Type, e.Name, e.Attempts, e.LastStatus)
}
