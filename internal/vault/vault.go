// Package vault holds the places encrypted snapshots can be shipped to.
package vault

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSnapshotNotFound is returned by GetSnapshot for an unknown name.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// checkName rejects names that could escape a vault's namespace.
func checkName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid snapshot name %q", name)
	}
	return nil
}
