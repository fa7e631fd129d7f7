package models

import "errors"

var (
	ErrInvalidAuthorRole  = errors.New("invalid author role")
	ErrEmptyID            = errors.New("empty id")
	ErrForeignMessage     = errors.New("message belongs to another conversation")
	ErrDuplicateMessageID = errors.New("duplicate message id")
)
