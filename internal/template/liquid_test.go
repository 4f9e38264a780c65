package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiquidServiceRender(t *testing.T) {
	svc := NewLiquidService()

	tests := []struct {
		name     string
		template string
		vars     map[string]string
		expected string
	}{
		{
			name:     "simple variable",
			template: "Hello {{ name }}",
			vars:     map[string]string{"name": "Alice"},
			expected: "Hello Alice",
		},
		{
			name:     "default filter",
			template: "Hello {{ name | default: 'there' }}",
			vars:     map[string]string{},
			expected: "Hello there",
		},
		{
			name:     "capitalize filter",
			template: "{{ name | capitalize }}",
			vars:     map[string]string{"name": "alice"},
			expected: "Alice",
		},
		{
			name:     "email_domain filter",
			template: "{{ email | email_domain }}",
			vars:     map[string]string{"email": "user@example.com"},
			expected: "example.com",
		},
		{
			name:     "conditional",
			template: "{% if plan == 'pro' %}Pro{% else %}Free{% endif %}",
			vars:     map[string]string{"plan": "pro"},
			expected: "Pro",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Render(tt.name, tt.template, tt.vars)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestLiquidServiceRenderError(t *testing.T) {
	svc := NewLiquidService()

	broken := "{% if %}"
	got, err := svc.Render("broken", broken, nil)
	assert.Error(t, err)
	// Callers fall back to sending the template text as-is.
	assert.Equal(t, broken, got)
}

func TestLiquidServiceParse(t *testing.T) {
	svc := NewLiquidService()

	assert.NoError(t, svc.Parse("Hello {{ name }}"))
	assert.Error(t, svc.Parse("{% endif %}"))
}

func TestLiquidServiceCacheReuse(t *testing.T) {
	svc := NewLiquidService()

	first, err := svc.Render("k1", "v={{ n }}", map[string]string{"n": "1"})
	require.NoError(t, err)
	assert.Equal(t, "v=1", first)

	// Same cache key reuses the parsed template.
	second, err := svc.Render("k1", "v={{ n }}", map[string]string{"n": "2"})
	require.NoError(t, err)
	assert.Equal(t, "v=2", second)
}
