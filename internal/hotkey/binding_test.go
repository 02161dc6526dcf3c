package hotkey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBinding(t *testing.T) {
	tests := []struct {
		in       string
		wantMods []string
		wantKey  string
		wantErr  bool
	}{
		{"Super+V", []string{"super"}, "V", false},
		{"Ctrl+Alt+v", []string{"ctrl", "alt"}, "V", false},
		{"ctrl + shift + x", []string{"ctrl", "shift"}, "X", false},
		{"Win+Space", []string{"super"}, "SPACE", false},
		{"Meta+1", []string{"super"}, "1", false},
		{"V", nil, "", true},
		{"Bogus+V", nil, "", true},
		{"Ctrl+", nil, "", true},
		{"", nil, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			b, err := ParseBinding(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMods, b.Mods)
			assert.Equal(t, tt.wantKey, b.Key)
		})
	}
}

func TestBindingString(t *testing.T) {
	b, err := ParseBinding("ctrl+alt+v")
	require.NoError(t, err)
	assert.Equal(t, "Ctrl+Alt+V", b.String())
}
