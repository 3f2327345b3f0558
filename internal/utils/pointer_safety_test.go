package utils_test

import (
	"testing"

	"github.com/jrsteele09/activity-session/internal/utils"
	"github.com/stretchr/testify/require"
)

func TestValue(t *testing.T) {
	var missing *string
	require.Equal(t, "", utils.Value(missing))
	require.Equal(t, "icon", utils.Value(utils.Ptr("icon")))
}

func TestOrDefault(t *testing.T) {
	defaults := []string{"identify", "guilds"}

	got := utils.OrDefault(nil, defaults)
	require.Equal(t, defaults, got)
	got[0] = "changed"
	require.Equal(t, "identify", defaults[0])

	require.Equal(t, []string{"rpc"}, utils.OrDefault([]string{"rpc"}, defaults))
}
