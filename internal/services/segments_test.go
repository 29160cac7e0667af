package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtraColumns(t *testing.T) {
	row := map[string]string{
		"name":    "Ana",
		"email":   "ana@example.com",
		"phone":   "+111",
		"company": "Acme",
		"city":    "Mumbai",
		"plan":    "pro",
	}

	extra := extraColumns(row)
	assert.Equal(t, map[string]string{"city": "Mumbai", "plan": "pro"}, extra)
}

func TestExtraColumnsNoneForTemplateRow(t *testing.T) {
	row := map[string]string{"name": "Ana", "email": "a@b.c", "phone": "", "company": ""}
	assert.Nil(t, extraColumns(row))
}

func TestExtraColumnsSkipsEmptyValues(t *testing.T) {
	row := map[string]string{"name": "Ana", "city": ""}
	assert.Nil(t, extraColumns(row))
}
