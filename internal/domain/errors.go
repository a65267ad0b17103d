package domain

import "errors"

var (
	ErrUnknownValue      = errors.New("unknown value")
	ErrEmptyParticipant  = errors.New("participant id is empty")
	ErrSameParticipant   = errors.New("a thread needs two distinct participants")
	ErrMalformedThreadID = errors.New("malformed thread id")
)
