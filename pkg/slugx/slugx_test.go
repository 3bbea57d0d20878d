package slugx

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMake(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "Acme", "acme"},
		{"spaces", "Acme Inc", "acme-inc"},
		{"punctuation collapses", "Acme, Inc.", "acme-inc"},
		{"runs of separators", "a  --  b", "a-b"},
		{"leading and trailing junk", "  Acme!  ", "acme"},
		{"digits survive", "Team 42", "team-42"},
		{"non-ascii letters dropped", "café", "caf"},
		{"nothing usable", "!!!", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Make(tc.in))
		})
	}
}

func TestMakeIsStable(t *testing.T) {
	t.Parallel()

	require.Equal(t, Make("Acme Inc"), Make("Acme Inc"))
}
