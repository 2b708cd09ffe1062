package models

import "errors"

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrConfigFetchFailed = errors.New("config fetch failed")
	ErrNoImages          = errors.New("no images")
	ErrAnalysisFailed    = errors.New("analysis failed")
	ErrHostingFailed     = errors.New("hosting failed")
	ErrSessionNotFound   = errors.New("session not found")
	ErrRecordNotFound    = errors.New("record not found")
	ErrConflict          = errors.New("conflict")
)
