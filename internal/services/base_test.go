package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterColumns(t *testing.T) {
	allowed := map[string]bool{"channel": true, "status": true}

	tests := []struct {
		name    string
		filters map[string]interface{}
		want    map[string]interface{}
	}{
		{
			name:    "allowed keys pass through",
			filters: map[string]interface{}{"channel": "email", "status": "draft"},
			want:    map[string]interface{}{"channel": "email", "status": "draft"},
		},
		{
			name:    "unknown keys are dropped",
			filters: map[string]interface{}{"channel": "email", "search": "x"},
			want:    map[string]interface{}{"channel": "email"},
		},
		{
			name:    "sql in a key never reaches the query",
			filters: map[string]interface{}{"1=1)OR(1=1": "x", "status = '' OR ''=''": "y"},
			want:    map[string]interface{}{},
		},
		{
			name:    "empty input",
			filters: map[string]interface{}{},
			want:    map[string]interface{}{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterColumns(tt.filters, allowed))
		})
	}
}
