package dto

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/stuchain/cuepoint/internal/constants"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func ToResponse(errs []ValidationError) string {
	var msgs []string
	for _, e := range errs {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

func validatePlaylistFile(filename string) []ValidationError {
	var errs []ValidationError
	if filename == "" {
		errs = append(errs, ValidationError{Field: "playlist", Message: "file is required"})
		return errs
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case constants.ExtXML, constants.ExtM3U, constants.ExtM3U8:
	default:
		errs = append(errs, ValidationError{Field: "playlist", Message: "unsupported playlist format (expected: .xml, .m3u or .m3u8)"})
	}
	return errs
}

func validateExportFormat(format string) []ValidationError {
	var errs []ValidationError
	switch format {
	case "csv", "json":
	default:
		errs = append(errs, ValidationError{Field: "format", Message: "must be 'csv' or 'json'"})
	}
	return errs
}

// ValidateJobUpload checks a playlist submission before any file is written.
func ValidateJobUpload(filename string) []ValidationError {
	return validatePlaylistFile(filename)
}

// ValidateExportRequest checks the export format query parameter.
func ValidateExportRequest(format string) []ValidationError {
	return validateExportFormat(format)
}
