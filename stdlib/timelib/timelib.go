// Package timelib implements the `time` global table: now/sleep,
// grounded on original_source/src/teeny/glob.py's Time table.
package timelib

import (
	"time"

	"github.com/IANYEYZ/teeny/runtime/value"
)

// New builds the time table.
func New() *value.Value {
	t := value.NewTable()
	d := t.Table.Define
	d(value.String("now"), value.NewBuiltin("now", false, func(args []*value.Value, env *value.Env) *value.Value {
		return value.Number(float64(time.Now().UnixNano()) / 1e9)
	}))
	d(value.String("sleep"), value.NewBuiltin("sleep", false, func(args []*value.Value, env *value.Env) *value.Value {
		if len(args) == 0 || args[0].Tag != value.TagNumber {
			return value.Error("Runtime Error", "sleep requires a Number of seconds")
		}
		time.Sleep(time.Duration(args[0].Num * float64(time.Second)))
		return value.Nil()
	}))
	return t
}
