package corridor

import (
	"github.com/pkg/errors"
	"roadsearch/projection"
)

var (
	ErrInvalidCoordinate  = projection.ErrInvalidCoordinate
	ErrInvalidParameter   = errors.New("invalid parameter")
	ErrDegenerateGeometry = errors.New("degenerate geometry")
)
