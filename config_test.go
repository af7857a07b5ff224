package cc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()
	assert.True(t, cfg.GetBool("passes.ufcs"))
	assert.True(t, cfg.GetBool("passes.async"))
	assert.Equal(t, 256, cfg.GetInt("defer.max_depth"))
	assert.Equal(t, 64, cfg.GetInt("async.max_awaits"))
}

func TestConfigGetStringDefaultsEmpty(t *testing.T) {
	cfg := NewConfig()
	assert.Equal(t, "", cfg.GetString("debug.dump_lowered"))
}

func TestConfigGetBoolPanicsOnMissingKey(t *testing.T) {
	cfg := NewConfig()
	assert.Panics(t, func() { cfg.GetBool("passes.nonexistent") })
}

func TestConfigGetIntPanicsOnTypeMismatch(t *testing.T) {
	cfg := NewConfig()
	assert.Panics(t, func() { cfg.GetInt("passes.ufcs") })
}

func TestConfigSetOverwritesValue(t *testing.T) {
	cfg := NewConfig()
	cfg.SetBool("passes.ufcs", false)
	assert.False(t, cfg.GetBool("passes.ufcs"))
}

func TestNewConfigFromEnvReadsFlags(t *testing.T) {
	t.Setenv("CC_DEBUG_TCC_NODES", "1")
	t.Setenv("CC_DUMP_LOWERED", "out.c")
	cfg := NewConfigFromEnv()
	assert.True(t, cfg.GetBool("debug.tcc_nodes"))
	assert.Equal(t, "out.c", cfg.GetString("debug.dump_lowered"))
}
