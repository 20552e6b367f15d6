package domain

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidInput        = errors.New("invalid input")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrInvalidDocument     = errors.New("document could not be read")
	ErrUploadFailed        = errors.New("document upload to storage failed")
	ErrNoCatalogueData     = errors.New("rate catalogue is empty")
	ErrDuplicateRecord     = errors.New("rate record already exists for code and description")
	ErrConcurrentUpdate    = errors.New("rate record changed concurrently")
	ErrInvalidPolicy       = errors.New("invalid canonicalization policy")
)
