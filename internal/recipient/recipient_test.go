package recipient

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveText(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    []string
		wantErr error
	}{
		{
			name: "comma separated with noise",
			text: "a@x.com, ,b@x.com",
			want: []string{"a@x.com", "b@x.com"},
		},
		{
			name: "whitespace trimmed",
			text: "  a@x.com  ,b@x.com ",
			want: []string{"a@x.com", "b@x.com"},
		},
		{
			name: "entries without at-sign dropped",
			text: "a@x.com, not-an-email, b@x.com",
			want: []string{"a@x.com", "b@x.com"},
		},
		{
			name:    "empty string",
			text:    "",
			wantErr: ErrNoRecipients,
		},
		{
			name:    "only separators",
			text:    ", ,",
			wantErr: ErrNoRecipients,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(Text(tt.text), nil)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Len(t, got, len(tt.want))
			for i, addr := range tt.want {
				assert.Equal(t, addr, got[i].Email)
				assert.NotNil(t, got[i].Variables)
			}
		})
	}
}

func TestResolveList(t *testing.T) {
	got, err := Resolve(List([]string{"a@x.com", " b@x.com ", "", "junk"}), nil)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a@x.com", got[0].Email)
	assert.Equal(t, "b@x.com", got[1].Email)

	_, err = Resolve(List([]string{"", "nope"}), nil)
	assert.ErrorIs(t, err, ErrNoRecipients)
}

func TestResolveStructured(t *testing.T) {
	entries := []Entry{
		{Email: "a@x.com", Data: map[string]string{"Name": "Alice", "plan": "pro"}},
		{Email: "  b@x.com "},
		{Email: "malformed"},
		{Email: ""},
	}

	got, err := Resolve(Field{}, entries)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a@x.com", got[0].Email)
	assert.Equal(t, map[string]string{"name": "Alice", "plan": "pro"}, got[0].Variables)
	assert.Equal(t, "b@x.com", got[1].Email)
}

// A structured payload beats the free-form field when both are present.
func TestResolveStructuredPriority(t *testing.T) {
	entries := []Entry{{Email: "structured@x.com"}}
	got, err := Resolve(Text("text@x.com"), entries)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "structured@x.com", got[0].Email)
}

func TestResolveStructuredAllMalformed(t *testing.T) {
	_, err := Resolve(Field{}, []Entry{{Email: "nope"}, {Email: ""}})
	assert.ErrorIs(t, err, ErrNoRecipients)
}

func TestResolveNoInput(t *testing.T) {
	_, err := Resolve(Field{}, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestParseField(t *testing.T) {
	f, err := ParseField(json.RawMessage(`"a@x.com, b@x.com"`))
	require.NoError(t, err)
	got, err := Resolve(f, nil)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	f, err = ParseField(json.RawMessage(`["a@x.com"]`))
	require.NoError(t, err)
	got, err = Resolve(f, nil)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	f, err = ParseField(nil)
	require.NoError(t, err)
	assert.True(t, f.IsZero())

	f, err = ParseField(json.RawMessage(`null`))
	require.NoError(t, err)
	assert.True(t, f.IsZero())

	_, err = ParseField(json.RawMessage(`123`))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = ParseField(json.RawMessage(`{"foo":"bar"}`))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestEntryUnmarshalJSON(t *testing.T) {
	var entries []Entry
	raw := `["bare@x.com", {"email":"obj@x.com","data":{"name":"Bo"}}]`
	require.NoError(t, json.Unmarshal([]byte(raw), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "bare@x.com", entries[0].Email)
	assert.Nil(t, entries[0].Data)
	assert.Equal(t, "obj@x.com", entries[1].Email)
	assert.Equal(t, "Bo", entries[1].Data["name"])
}
