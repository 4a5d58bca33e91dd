package render

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeitbericht/zeitbericht/pkg/report"
)

func TestWriteFiles_pdfRemovesSidecar(t *testing.T) {
	dir := t.TempDir()
	sel := testSelection()

	paths, err := WriteFiles(dir, sel, Options{Language: "de"}, FormatPDF, true)
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, filepath.Join(dir, "Stundenauflistung_Acme_Website_06_2025.pdf"), paths[0])

	_, err = os.Stat(paths[0])
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "Stundenauflistung_Acme_Website_06_2025.csv"))
	assert.True(t, os.IsNotExist(err), "csv sidecar must be removed after a successful pdf")
}

func TestWriteFiles_failedPdfLeavesNoSidecar(t *testing.T) {
	dir := t.TempDir()
	sel := testSelection()
	opts := Options{Language: "de", LogoPath: filepath.Join(dir, "missing-logo.png")}

	_, err := WriteFiles(dir, sel, opts, FormatPDF, true)
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "a failed pdf run must not leave files behind")
}

func TestWriteFiles_htmlPairIsKept(t *testing.T) {
	dir := t.TempDir()
	sel := testSelection()

	paths, err := WriteFiles(dir, sel, Options{Language: "de"}, FormatHTML, false)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	for _, path := range paths {
		_, err := os.Stat(path)
		assert.NoError(t, err)
	}
}

func TestWriteFiles_emptySelection(t *testing.T) {
	_, err := WriteFiles(t.TempDir(), report.Selection{}, Options{}, FormatPDF, false)
	assert.ErrorIs(t, err, report.ErrEmptyResult)
}

func TestWriteFiles_unknownFormat(t *testing.T) {
	_, err := WriteFiles(t.TempDir(), testSelection(), Options{}, Format("docx"), false)
	assert.Error(t, err)
}
