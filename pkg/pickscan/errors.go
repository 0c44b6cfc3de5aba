package pickscan

import "errors"

// ErrNoPick is returned when no recognized text lies within the click radius.
var ErrNoPick = errors.New("no pick found near click")
