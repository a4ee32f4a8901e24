package ecs

import "errors"

var (
	ErrInvalidEntity    = errors.New("entity is not alive")
	ErrEntityExists     = errors.New("entity id already in use")
	ErrComponentExists  = errors.New("component already present")
	ErrComponentMissing = errors.New("component not present")
	ErrGroupConflict    = errors.New("component pool already owned by another group")
	ErrEntityLimit      = errors.New("entity id beyond the registry limit")
)
