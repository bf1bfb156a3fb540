package services

import (
	"bytes"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileHeaderFor(t *testing.T, name string, data []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })
	return form.File["file"][0]
}

func TestValidateSpreadsheetUpload(t *testing.T) {
	buf, err := ArrearsScheduleXLSX(createCaseValue(sampleFacts()))
	require.NoError(t, err)

	t.Run("Valid", func(t *testing.T) {
		assert.NoError(t, ValidateSpreadsheetUpload(fileHeaderFor(t, "Arrears.XLSX", buf.Bytes())))
	})

	t.Run("Wrong extension", func(t *testing.T) {
		err := ValidateSpreadsheetUpload(fileHeaderFor(t, "arrears.csv", buf.Bytes()))
		require.Error(t, err)
		assert.Contains(t, err.Error(), ".xlsx")
	})

	t.Run("Not a zip", func(t *testing.T) {
		err := ValidateSpreadsheetUpload(fileHeaderFor(t, "arrears.xlsx", []byte("date,due,paid")))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not a valid spreadsheet")
	})

	t.Run("Empty", func(t *testing.T) {
		assert.Error(t, ValidateSpreadsheetUpload(fileHeaderFor(t, "arrears.xlsx", nil)))
	})

	t.Run("Too large", func(t *testing.T) {
		fh := fileHeaderFor(t, "arrears.xlsx", buf.Bytes())
		fh.Size = MaxSpreadsheetUpload + 1
		assert.Error(t, ValidateSpreadsheetUpload(fh))
	})
}
