package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseVariables(t *testing.T) {
	vars := ParseVariables("Hi {{name}}, your order {{ order_id }} from {{name}} shipped")
	assert.Equal(t, []string{"name", "order_id"}, vars)
}

func TestParseVariablesNone(t *testing.T) {
	assert.Empty(t, ParseVariables("no placeholders here"))
}

func TestReplaceVariables(t *testing.T) {
	out := ReplaceVariables("Hi {{name}}, code {{code}}", map[string]string{
		"name": "Ana",
		"code": "XYZ",
	})
	assert.Equal(t, "Hi Ana, code XYZ", out)
}

func TestReplaceVariablesKeepsMissing(t *testing.T) {
	out := ReplaceVariables("Hi {{name}}, code {{code}}", map[string]string{"name": "Ana"})
	assert.Equal(t, "Hi Ana, code {{code}}", out)
}
