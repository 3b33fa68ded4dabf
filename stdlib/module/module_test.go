package module

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/IANYEYZ/teeny/runtime/value"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestResolverPrefersSourcePathOverGlobal(t *testing.T) {
	srcDir := t.TempDir()
	globalDir := t.TempDir()
	writeFile(t, srcDir, "mod.ty", "local")
	writeFile(t, globalDir, "mod.ty", "global")

	r := &Resolver{SourcePath: srcDir, GlobalPackagePath: globalDir}
	path, ok := r.resolve("mod.ty")
	require.True(t, ok)
	require.Equal(t, filepath.Join(srcDir, "mod.ty"), path)
}

func TestResolverFallsBackToIndexTy(t *testing.T) {
	srcDir := t.TempDir()
	pkgDir := filepath.Join(srcDir, "pkg")
	require.NoError(t, os.Mkdir(pkgDir, 0o755))
	writeFile(t, pkgDir, "index.ty", "export := 1")

	r := &Resolver{SourcePath: srcDir}
	path, ok := r.resolve("pkg")
	require.True(t, ok)
	require.Equal(t, filepath.Join(pkgDir, "index.ty"), path)
}

func TestResolverFallsBackToGlobalPackagePath(t *testing.T) {
	srcDir := t.TempDir()
	globalDir := t.TempDir()
	writeFile(t, globalDir, "shared.ty", "shared")

	r := &Resolver{SourcePath: srcDir, GlobalPackagePath: globalDir}
	path, ok := r.resolve("shared.ty")
	require.True(t, ok)
	require.Equal(t, filepath.Join(globalDir, "shared.ty"), path)
}

func TestResolverMissingModule(t *testing.T) {
	r := &Resolver{SourcePath: t.TempDir()}
	_, ok := r.resolve("nope.ty")
	require.False(t, ok)
}

func TestImportCachesAcrossCalls(t *testing.T) {
	srcDir := t.TempDir()
	writeFile(t, srcDir, "mod.ty", "export := 1")

	runs := 0
	r := &Resolver{
		SourcePath: srcDir,
		Cache:      NewCache(),
		Run: func(path string) *value.Value {
			runs++
			return value.Number(1)
		},
	}
	globals := New(r)
	importFn := globals["import"]

	v1 := importFn.Builtin.Fn([]*value.Value{value.String("mod.ty")}, nil)
	v2 := importFn.Builtin.Fn([]*value.Value{value.String("mod.ty")}, nil)
	require.False(t, v1.IsError())
	require.True(t, value.Equal(v1, v2))
	require.Equal(t, 1, runs, "a second import of the same module must not re-run it")
}

func TestImportMissingModuleIsError(t *testing.T) {
	r := &Resolver{SourcePath: t.TempDir(), Cache: NewCache()}
	globals := New(r)
	v := globals["import"].Builtin.Fn([]*value.Value{value.String("nope.ty")}, nil)
	require.True(t, v.IsError())
	require.Equal(t, "Import Error", v.ErrType)
}

func TestMixDestructuresStringKeysIntoEnv(t *testing.T) {
	tbl := value.NewTable()
	tbl.Table.Define(value.String("a"), value.Number(1))
	tbl.Table.Define(value.String("b"), value.Number(2))
	tbl.Table.Append(value.Number(99)) // non-string key, must be ignored

	env := value.NewEnv(nil)
	result := mix(tbl, env)
	require.False(t, result.IsError())
	require.Equal(t, 1.0, env.Read("a").Num)
	require.Equal(t, 2.0, env.Read("b").Num)
}

func TestMixRequiresTable(t *testing.T) {
	env := value.NewEnv(nil)
	v := mix(value.Number(1), env)
	require.True(t, v.IsError())
}

func TestIncludeImportsThenMixesIntoEnv(t *testing.T) {
	srcDir := t.TempDir()
	writeFile(t, srcDir, "mod.ty", "a := 1")

	exportTbl := value.NewTable()
	exportTbl.Table.Define(value.String("a"), value.Number(1))

	r := &Resolver{
		SourcePath: srcDir,
		Cache:      NewCache(),
		Run: func(path string) *value.Value {
			return exportTbl
		},
	}
	globals := New(r)
	env := value.NewEnv(nil)
	result := globals["include"].Builtin.Fn([]*value.Value{value.String("mod.ty")}, env)
	require.False(t, result.IsError())
	require.Equal(t, 1.0, env.Read("a").Num)
}

func TestCacheInvalidateRemovesEntry(t *testing.T) {
	c := NewCache()
	c.set("/a/b.ty", value.Number(1))
	_, ok := c.get("/a/b.ty")
	require.True(t, ok)
	c.invalidate("/a/b.ty")
	_, ok = c.get("/a/b.ty")
	require.False(t, ok)
}

func TestCacheInvalidateAllClearsEverythingAndReportsCount(t *testing.T) {
	c := NewCache()
	c.set("/a/b.ty", value.Number(1))
	c.set("/a/c.ty", value.Number(2))

	n := c.InvalidateAll()
	require.Equal(t, 2, n)

	_, ok := c.get("/a/b.ty")
	require.False(t, ok)
	_, ok = c.get("/a/c.ty")
	require.False(t, ok)
	require.Equal(t, 0, c.InvalidateAll())
}

func TestImportArmsWatchSoEditedModuleIsReReadAfterInvalidateAll(t *testing.T) {
	srcDir := t.TempDir()
	writeFile(t, srcDir, "mod.ty", "export := 1")

	cache := NewCache()
	runs := 0
	r := &Resolver{
		SourcePath: srcDir,
		Cache:      cache,
		Run: func(path string) *value.Value {
			runs++
			return value.Number(float64(runs))
		},
	}
	importFn := New(r)["import"]

	v1 := importFn.Builtin.Fn([]*value.Value{value.String("mod.ty")}, nil)
	require.Equal(t, 1.0, v1.Num)
	require.Equal(t, 1, runs)

	cache.InvalidateAll()

	v2 := importFn.Builtin.Fn([]*value.Value{value.String("mod.ty")}, nil)
	require.Equal(t, 2.0, v2.Num)
	require.Equal(t, 2, runs, "import after :reload's InvalidateAll must re-run the module")
}
