package db

import "errors"

// ErrCacheMiss is returned by cache reads for absent keys.
var ErrCacheMiss = errors.New("cache miss")
