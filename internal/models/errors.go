package models

import "errors"

var (
	// ErrInvalidArgument is returned when a tool call is missing its arguments
	// or a required field, or a field cannot be decoded.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnknownTool is returned for tool names outside the catalog.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrDuplicateDocument is returned when a document id is already stored.
	ErrDuplicateDocument = errors.New("document already exists")
)
