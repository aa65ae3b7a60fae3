package repository

import "errors"

// ErrKeyNotFound is returned by Get when no record exists for the key.
var ErrKeyNotFound = errors.New("visitor key not found")
