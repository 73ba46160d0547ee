package activity

import "errors"

// ErrBusClosed is returned when publishing to a closed bus.
var ErrBusClosed = errors.New("activity.bus_closed")
