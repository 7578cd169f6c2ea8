package ruc

import "fmt"

// Config is a typed map of analyzer options, following the same
// shape as the teacher's grammar configuration: a map of named
// values with type-checked accessors instead of a loose
// map[string]interface{}.
type Config map[string]*cfgVal

// NewConfig returns a configuration primed with the defaults the
// driver and analyzer expect.
func NewConfig() *Config {
	c := make(Config)
	c.SetBool("lang.messaging", true)
	c.SetBool("lang.threads", true)
	c.SetBool("analyzer.redeclaration_is_error", true)
	c.SetInt("tables.repr_initial_capacity", 256)
	c.SetInt("tables.mode_initial_capacity", 64)
	c.SetInt("tables.ident_initial_capacity", 128)
	c.SetString("keywords.manifest_path", "")
	return &c
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
		panic(fmt.Sprintf("can't assign `%s` to config value of type `%s`", vt, v.typ))
	}
	v.typ = vt
}

func (v *cfgVal) checkType(vt cfgValType) {
	if v.typ != vt {
		panic(fmt.Sprintf("can't retrieve `%s` from config value of type `%s`", vt, v.typ))
	}
}

func (c *Config) value(path string) *cfgVal {
	v, ok := (*c)[path]
	if !ok {
		v = &cfgVal{}
		(*c)[path] = v
	}
	return v
}

func (c *Config) SetBool(path string, v bool) {
	val := c.value(path)
	val.assignType(cfgValType_Bool)
	val.asBool = v
}

func (c *Config) GetBool(path string) bool {
	v, ok := (*c)[path]
	if !ok {
		return false
	}
	v.checkType(cfgValType_Bool)
	return v.asBool
}

func (c *Config) SetInt(path string, v int) {
	val := c.value(path)
	val.assignType(cfgValType_Int)
	val.asInt = v
}

func (c *Config) GetInt(path string) int {
	v, ok := (*c)[path]
	if !ok {
		return 0
	}
	v.checkType(cfgValType_Int)
	return v.asInt
}

func (c *Config) SetString(path string, v string) {
	val := c.value(path)
	val.assignType(cfgValType_String)
	val.asString = v
}

func (c *Config) GetString(path string) string {
	v, ok := (*c)[path]
	if !ok {
		return ""
	}
	v.checkType(cfgValType_String)
	return v.asString
}
