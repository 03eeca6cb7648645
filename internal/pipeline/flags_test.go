package pipeline_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portlist/nu_plugin_port_list/internal/pipeline"
	"github.com/portlist/nu_plugin_port_list/pkg/model"
)

func TestFlagsFrom(t *testing.T) {
	t.Parallel()

	set := map[string]bool{pipeline.FlagListeners: true, pipeline.FlagDisableUDP: true}
	flags := pipeline.FlagsFrom(func(name string) (bool, error) {
		if name == pipeline.FlagProcessInfo {
			return true, errors.New("not a switch")
		}
		return set[name], nil
	})
	assert.Equal(t, pipeline.Flags{Listeners: true, DisableUDP: true}, flags)
}

func TestSwitchesBindToFlags(t *testing.T) {
	t.Parallel()

	var flags pipeline.Flags
	shorts := map[rune]bool{}
	for _, sw := range pipeline.Switches {
		ref := flags.Ref(sw.Long)
		require.NotNil(t, ref, sw.Long)
		*ref = true
		assert.False(t, shorts[sw.Short], "duplicate short flag %c", sw.Short)
		shorts[sw.Short] = true
	}
	assert.Equal(t, pipeline.Flags{
		DisableIPv4: true,
		DisableIPv6: true,
		DisableUDP:  true,
		DisableTCP:  true,
		Listeners:   true,
		ProcessInfo: true,
	}, flags)
	assert.Nil(t, flags.Ref("verbose"))
}

func TestMasks(t *testing.T) {
	t.Parallel()

	families, protocols := pipeline.Flags{DisableIPv4: true, DisableIPv6: true}.Masks()
	assert.Zero(t, families)
	assert.Equal(t, model.MaskAll, protocols)

	families, protocols = pipeline.Flags{DisableTCP: true}.Masks()
	assert.Equal(t, model.FamilyAll, families)
	assert.Equal(t, model.MaskUDP, protocols)
}
