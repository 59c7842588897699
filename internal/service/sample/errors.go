package sample

import "errors"

// Sentinel errors for the sample service layer.
var (
	ErrNotFound        = errors.New("sample record not found")
	ErrInvalidFilePath = errors.New("file path is not one of the available choices")
	ErrNoUploads       = errors.New("upload storage is not configured")
	ErrNoUpload        = errors.New("no upload in this field")
)
