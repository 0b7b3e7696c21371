package credentials

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStatic(t *testing.T) {
	s := NewStatic(map[string]string{"USPS": " secret ", "track24": "", "dhl": "k"})

	k, ok := s.APIKey("usps")
	require.True(t, ok)
	require.Equal(t, "secret", k)

	_, ok = s.APIKey("track24")
	require.False(t, ok)

	require.ElementsMatch(t, []string{"usps", "dhl"}, s.Configured())

	var nilStore *Static
	_, ok = nilStore.APIKey("usps")
	require.False(t, ok)
}
