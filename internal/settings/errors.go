package settings

import "errors"

// ErrInvalidGain indicates a gain index outside the representable range.
// Gain indices are non-negative positions on a group's gain curve.
var ErrInvalidGain = errors.New("settings: invalid gain index")
