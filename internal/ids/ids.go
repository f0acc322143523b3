package ids

import "github.com/segmentio/ksuid"

// New returns a K-sortable unique identifier, used for user and session ids.
func New() string {
	return ksuid.New().String()
}
