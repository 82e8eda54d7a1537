package service

import "errors"

var (
	ErrProjectNotFound     = errors.New("project not found")
	ErrMissingField        = errors.New("missing required field")
	ErrExtensionNotAllowed = errors.New("file extension not allowed")
)
