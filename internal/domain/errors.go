// Package domain provides shared domain-level sentinel errors.
package domain

import "errors"

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrConfiguration indicates a structurally invalid scenario. It is never retried.
var ErrConfiguration = errors.New("configuration error")

// ErrResolution indicates an agent image could not be resolved from the catalog.
var ErrResolution = errors.New("resolution error")
