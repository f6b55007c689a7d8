package simulate

import "errors"

// ErrEntryPointMissing is returned when the program does not define the
// entry function. Callers test for it with errors.Is.
var ErrEntryPointMissing = errors.New("entry point missing")
