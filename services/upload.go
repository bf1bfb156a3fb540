package services

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
)

// MaxSpreadsheetUpload caps imported arrears schedules
const MaxSpreadsheetUpload = 5 * 1024 * 1024 // 5MB

// xlsx files are zip archives
var zipMagic = []byte("PK\x03\x04")

// ValidateSpreadsheetUpload checks an uploaded arrears schedule is an .xlsx within size limits
func ValidateSpreadsheetUpload(fileHeader *multipart.FileHeader) error {
	if fileHeader.Size > MaxSpreadsheetUpload {
		return fmt.Errorf("file size exceeds maximum allowed size of 5MB")
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if ext != ".xlsx" {
		return fmt.Errorf("only .xlsx spreadsheets are allowed")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	// Read the header to check the content matches the extension
	buffer := make([]byte, len(zipMagic))
	n, err := io.ReadFull(file, buffer)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return fmt.Errorf("failed to read file content: %w", err)
	}
	if !bytes.Equal(buffer[:n], zipMagic) {
		return fmt.Errorf("file is not a valid spreadsheet")
	}
	return nil
}
