package models

import "errors"

var (
	ErrMalformedSeries  = errors.New("malformed price series")
	ErrInvalidSeriesID  = errors.New("invalid series ID")
	ErrInvalidIndex     = errors.New("invalid index")
	ErrInvalidAlertID   = errors.New("invalid alert ID")
	ErrInvalidAlertKind = errors.New("invalid alert kind")
)
