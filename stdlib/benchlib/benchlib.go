// Package benchlib implements the `benchmark` global table:
// measure/measureMul, grounded on original_source/src/teeny/glob.py's
// Benchmark table (there built on time.time()/statistics.mean).
package benchlib

import (
	"time"

	"github.com/IANYEYZ/teeny/runtime/value"
)

// New builds the benchmark table.
func New() *value.Value {
	t := value.NewTable()
	d := t.Table.Define
	d(value.String("measure"), value.NewBuiltin("measure", false, func(args []*value.Value, env *value.Env) *value.Value {
		if len(args) == 0 {
			return value.Error("Runtime Error", "measure requires a closure")
		}
		elapsed, errVal := measureOnce(args[0])
		if errVal != nil {
			return errVal
		}
		return value.Number(elapsed)
	}))
	d(value.String("measureMul"), value.NewBuiltin("measureMul", false, func(args []*value.Value, env *value.Env) *value.Value {
		if len(args) < 2 || args[1].Tag != value.TagNumber {
			return value.Error("Runtime Error", "measureMul requires (closure, runs)")
		}
		runs := int(args[1].Num)
		var times []float64
		for i := 0; i < runs; i++ {
			elapsed, errVal := measureOnce(args[0])
			if errVal != nil {
				return errVal
			}
			times = append(times, elapsed)
		}
		return summarize(times)
	}))
	return t
}

func measureOnce(fn *value.Value) (float64, *value.Value) {
	start := time.Now()
	res := value.Call(fn, nil)
	if res.IsError() {
		return 0, res
	}
	return time.Since(start).Seconds(), nil
}

func summarize(times []float64) *value.Value {
	out := value.NewTable()
	if len(times) == 0 {
		out.Table.Define(value.String("mean"), value.Number(0))
		out.Table.Define(value.String("min"), value.Number(0))
		out.Table.Define(value.String("max"), value.Number(0))
		return out
	}
	total, lo, hi := 0.0, times[0], times[0]
	for _, t := range times {
		total += t
		if t < lo {
			lo = t
		}
		if t > hi {
			hi = t
		}
	}
	out.Table.Define(value.String("mean"), value.Number(total/float64(len(times))))
	out.Table.Define(value.String("min"), value.Number(lo))
	out.Table.Define(value.String("max"), value.Number(hi))
	return out
}
