package util

import "errors"

var (
	ErrNoExtractableText   = errors.New("no extractable text found in file")
	ErrUnsupportedFileType = errors.New("unsupported file type")
)
