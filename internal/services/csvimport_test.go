package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseContactsCSV(t *testing.T) {
	input := "name,email,phone,company\n" +
		"Ana,ana@example.com,+111,Acme\n" +
		"Bruno,bruno@example.com,,\n"

	result, err := ParseContactsCSV(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "email", "phone", "company"}, result.Columns)
	assert.Equal(t, 2, result.EstimatedSize)
	assert.Equal(t, "Ana", result.Rows[0]["name"])
	assert.Equal(t, "+111", result.Rows[0]["phone"])
	assert.Equal(t, "", result.Rows[1]["company"])
}

func TestParseContactsCSVTrimsWhitespace(t *testing.T) {
	input := " name , email \n Ana , ana@example.com \n"

	result, err := ParseContactsCSV(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "email"}, result.Columns)
	assert.Equal(t, "Ana", result.Rows[0]["name"])
	assert.Equal(t, "ana@example.com", result.Rows[0]["email"])
}

func TestParseContactsCSVSkipsEmptyRows(t *testing.T) {
	input := "name,email\nAna,ana@example.com\n,\n"

	result, err := ParseContactsCSV(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 1, result.EstimatedSize)
}

func TestParseContactsCSVEmptyFile(t *testing.T) {
	_, err := ParseContactsCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmptyImport)
}

func TestParseContactsCSVHeaderOnly(t *testing.T) {
	_, err := ParseContactsCSV(strings.NewReader("name,email\n"))
	assert.ErrorIs(t, err, ErrEmptyImport)
}

func TestPreviewCapsAtFiveRows(t *testing.T) {
	var b strings.Builder
	b.WriteString("name\n")
	for i := 0; i < 8; i++ {
		b.WriteString("row\n")
	}

	result, err := ParseContactsCSV(strings.NewReader(b.String()))
	require.NoError(t, err)

	assert.Equal(t, 8, result.EstimatedSize)
	assert.Len(t, result.Preview(), PreviewRowCount)
}

func TestPreviewShorterThanCap(t *testing.T) {
	result := &ImportResult{
		Rows: []map[string]string{{"name": "Ana"}, {"name": "Bruno"}},
	}
	assert.Len(t, result.Preview(), 2)
}

func TestContactsCSVTemplate(t *testing.T) {
	result, err := ParseContactsCSV(strings.NewReader(ContactsCSVTemplate() + "Ana,a@b.c,+1,Acme\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "email", "phone", "company"}, result.Columns)
}
