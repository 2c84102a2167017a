package support

import (
	"fmt"

	"rara/internal/app/access"
)

// ErrNotOwner is returned when a caller acts on a listing or booking they do not own.
var ErrNotOwner = fmt.Errorf("%w: not the owner", access.ErrForbidden)
