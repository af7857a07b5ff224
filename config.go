package cc

import (
	"fmt"
	"os"
)

// Config is a typed settings map, in the spirit of the teacher's
// grammar configuration object: paths like "passes.defer" gate a
// single pass the way "grammar.add_builtins" gated a grammar
// transformation. Mixing up the stored type for a path is treated as
// a programming error and panics rather than silently coercing.
type Config map[string]*cfgVal

// NewConfig returns a Config with every pass enabled and the default
// defer/async limits. It reads nothing from the environment;
// NewConfigFromEnv layers the diagnostic env-var flags on top of it
// and is what the CLI driver uses.
func NewConfig() *Config {
	m := make(Config)
	m.SetBool("passes.with_deadline", true)
	m.SetBool("passes.defer", true)
	m.SetBool("passes.match", true)
	m.SetBool("passes.channel_types", true)
	m.SetBool("passes.channel_pair", true)
	m.SetBool("passes.slice_types", true)
	m.SetBool("passes.optional_types", true)
	m.SetBool("passes.result_types", true)
	m.SetBool("passes.try_expr", true)
	m.SetBool("passes.result_ctor", true)
	m.SetBool("passes.optional_unwrap", true)
	m.SetBool("passes.closure_call", true)
	m.SetBool("passes.ufcs", true)
	m.SetBool("passes.async", true)
	m.SetInt("defer.max_depth", 256)
	m.SetInt("async.max_awaits", 64)
	return &m
}

// NewConfigFromEnv layers the §6 diagnostic environment variables on
// top of NewConfig's defaults.
func NewConfigFromEnv() *Config {
	cfg := NewConfig()
	cfg.SetBool("debug.tcc_nodes", os.Getenv("CC_DEBUG_TCC_NODES") != "")
	cfg.SetBool("debug.async_ast", os.Getenv("CC_DEBUG_ASYNC_AST") != "")
	cfg.SetString("debug.dump_lowered", os.Getenv("CC_DUMP_LOWERED"))
	cfg.SetBool("debug.keep_pp", os.Getenv("CC_KEEP_PP") != "")
	return cfg
}

type cfgValType int

const (
	cfgValType_Undefined cfgValType = iota
	cfgValType_Bool
	cfgValType_Int
	cfgValType_String
)

func (vt cfgValType) String() string {
	return map[cfgValType]string{
		cfgValType_Undefined: "undefined",
		cfgValType_Bool:      "bool",
		cfgValType_Int:       "int",
		cfgValType_String:    "string",
	}[vt]
}

type cfgVal struct {
	typ      cfgValType
	asBool   bool
	asInt    int
	asString string
}

func (v *cfgVal) assignType(vt cfgValType) {
	if v.typ != vt && v.typ != cfgValType_Undefined {
		panic(fmt.Sprintf("can't assign `%s` to type `%s`", vt, v.typ))
	}
	v.typ = vt
}

func (v *cfgVal) checkType(vt cfgValType) {
	if v.typ != vt {
		panic(fmt.Sprintf("can't retrieve `%s` from `%s` variable", vt, v.typ))
	}
}

func (c *Config) SetBool(path string, v bool) {
	(*c)[path] = &cfgVal{}
	(*c)[path].assignType(cfgValType_Bool)
	(*c)[path].asBool = v
}

func (c *Config) SetInt(path string, v int) {
	(*c)[path] = &cfgVal{}
	(*c)[path].assignType(cfgValType_Int)
	(*c)[path].asInt = v
}

func (c *Config) SetString(path string, v string) {
	(*c)[path] = &cfgVal{}
	(*c)[path].assignType(cfgValType_String)
	(*c)[path].asString = v
}

func (c *Config) GetBool(path string) bool {
	if val, ok := (*c)[path]; ok {
		val.checkType(cfgValType_Bool)
		return val.asBool
	}
	panic(fmt.Sprintf("bool setting `%s` does not exist", path))
}

func (c *Config) GetInt(path string) int {
	if val, ok := (*c)[path]; ok {
		val.checkType(cfgValType_Int)
		return val.asInt
	}
	panic(fmt.Sprintf("int setting `%s` does not exist", path))
}

func (c *Config) GetString(path string) string {
	if val, ok := (*c)[path]; ok {
		val.checkType(cfgValType_String)
		return val.asString
	}
	return ""
}
