package domain

import "errors"

var ErrNoDestination = errors.New("notification destination not configured")
