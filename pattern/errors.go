package pattern

import "errors"

var (
	ErrMissingPrefab  = errors.New("pattern: prefab not set")
	ErrMissingPattern = errors.New("pattern: pattern not set")
	ErrMissingTarget  = errors.New("pattern: target not set")
	ErrUnknownTrigger = errors.New("pattern: unknown trigger")
)
