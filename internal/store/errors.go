package store

import (
	stderrors "errors"
	"fmt"

	"github.com/hpungsan/clarity/internal/errors"
)

var errClosed = stderrors.New("store is closed")

func conflict(key string, expect, current int64) *errors.ClarityError {
	err := errors.NewConflict(fmt.Sprintf("%s was modified concurrently (expected version %d, found %d)", key, expect, current))
	err.Details = map[string]any{"key": key, "expected_version": expect, "current_version": current}
	return err
}
