package wm

import "errors"

var (
	// ErrInvalidArgument reports a nil manager, window or event, or a
	// strategy that lacks the requested operation.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound reports a property-style lookup with no result.
	ErrNotFound = errors.New("not found")
	// ErrAtHome is returned by Back when the top window is the home window.
	ErrAtHome = errors.New("already at home window")
	// ErrNoOwnerWindow is returned when a dialog or popup opens with no
	// normal window whose surface it could share.
	ErrNoOwnerWindow = errors.New("no owner window to share a native window with")
)
