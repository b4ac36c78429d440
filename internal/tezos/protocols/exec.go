package protocols

import (
	"context"
	"fmt"
)

// ApplyAll applies commits in order and stops at the first error.
func ApplyAll(ctx context.Context, commits ...Commit) error {
	for i, c := range commits {
		if err := c.Apply(ctx); err != nil {
			return fmt.Errorf("apply commit %d (%T): %w", i, c, err)
		}
	}
	return nil
}

// RevertAll reverts commits in reverse order and stops at the first error.
func RevertAll(ctx context.Context, commits ...Commit) error {
	for i := len(commits) - 1; i >= 0; i-- {
		if err := commits[i].Revert(ctx); err != nil {
			return fmt.Errorf("revert commit %d (%T): %w", i, commits[i], err)
		}
	}
	return nil
}
