package ticket

import (
	"testing"

	jigerrors "github.com/Baarsgaard/jig/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		text    string
		want    Key
		wantErr bool
	}{
		// Plain keys
		{"JB-1", "JB-1", false},
		{"WEBAPP-42", "WEBAPP-42", false},

		// Lowercase input is uppercased
		{"jb-1", "JB-1", false},
		{"jB-123", "JB-123", false},

		// Embedded in branch names and messages
		{"feature/AB-42-fix-thing", "AB-42", false},
		{"AB-42_Fix_the_thing", "AB-42", false},
		{"did something for ab-7", "AB-7", false},

		// First match wins
		{"AB-1 and CD-2", "AB-1", false},
		{"xx AB-99 AB-1", "AB-99", false},

		// Leading digits of the project are skipped
		{"X1AB-5", "AB-5", false},

		// No key
		{"", "", true},
		{"main", "", true},
		{"A-1", "", true},
		{"AB-", "", true},
		{"AB1", "", true},
		{"-42", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := Extract(tt.text)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, jigerrors.Is(err, jigerrors.KindMalformedKey))
				assert.Empty(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtract_RoundTrip(t *testing.T) {
	for _, s := range []string{"JB-1", "WEBAPP-42", "ABC-0001"} {
		k, err := Extract(s)
		require.NoError(t, err)
		assert.Equal(t, s, k.String())
	}
}

func TestFindAll(t *testing.T) {
	assert.Equal(t, []Key{"AB-1", "CD-2", "AB-1"}, FindAll("ab-1 [CD-2] (AB-1)"))
	assert.Empty(t, FindAll("nothing here"))
}

func TestTicketString(t *testing.T) {
	assert.Equal(t, "JB-1 Example summary", Ticket{Key: "JB-1", Summary: "Example summary"}.String())
	assert.Equal(t, "JB-1", Ticket{Key: "JB-1"}.String())
}
