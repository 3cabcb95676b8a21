package table

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
)

func TestSetGetClear(t *testing.T) {
	assert := require.New(t)

	d := New()
	d.Set("a", int64(1))
	d.Set("b", int64(2))

	assert.Equal(2, d.Len())

	a, ok := d.Get("a")
	assert.True(ok)
	assert.Equal(int64(1), a)

	d.Clear()
	assert.Equal(0, d.Len())

	_, ok = d.Get("a")
	assert.False(ok)
}

func TestOverwriteKeepsLen(t *testing.T) {
	assert := require.New(t)

	d := New()
	d.Set("k", "first")
	d.Set("k", "second")

	assert.Equal(1, d.Len())

	v, ok := d.Get("k")
	assert.True(ok)
	assert.Equal("second", v)
}

func TestGetMissing(t *testing.T) {
	d := New()

	v, ok := d.Get("never")
	require.False(t, ok)
	require.Nil(t, v)
}

func TestFrom(t *testing.T) {
	assert := require.New(t)

	m := map[string]any{"x": int64(10)}
	d := From(m)

	assert.Equal(1, d.Len())
	v, ok := d.Get("x")
	assert.True(ok)
	assert.Equal(int64(10), v)

	// From shares the map, both views see mutation
	m["y"] = int64(20)
	assert.Equal(2, d.Len())

	d.Set("z", int64(30))
	assert.Contains(m, "z")

	// Clear swaps the store, the shared map keeps its entries
	d.Clear()
	assert.Equal(0, d.Len())
	assert.Len(m, 3)
}

func TestKeysValuesEntries(t *testing.T) {
	assert := require.New(t)

	d := New()
	d.Set("a", int64(1))
	d.Set("b", int64(2))
	d.Set("c", int64(3))

	assert.ElementsMatch([]string{"a", "b", "c"}, d.Keys())
	assert.ElementsMatch([]any{int64(1), int64(2), int64(3)}, d.Values())

	for _, e := range d.Entries() {
		v, ok := d.Get(e.Key)
		assert.True(ok)
		assert.Equal(v, e.Value)
	}
	assert.Len(d.Entries(), 3)
}

func TestForEach(t *testing.T) {
	assert := require.New(t)

	d := New()
	d.Set("a", int64(1))
	d.Set("b", int64(2))

	seen := make(map[string]any)
	d.ForEach(func(key string, val any) bool {
		seen[key] = val
		return true
	})
	assert.Len(seen, 2)

	count := 0
	d.ForEach(func(key string, val any) bool {
		count++
		return false
	})
	assert.Equal(1, count)
}

func TestProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("len equals number of distinct keys set", prop.ForAll(
		func(keys []string) bool {
			d := New()
			distinct := make(map[string]struct{})
			for _, k := range keys {
				d.Set(k, k)
				distinct[k] = struct{}{}
			}
			return d.Len() == len(distinct)
		},
		gen.SliceOf(gen.AnyString()),
	))

	properties.Property("last set wins", prop.ForAll(
		func(key, v1, v2 string) bool {
			d := New()
			d.Set(key, v1)
			d.Set(key, v2)
			got, ok := d.Get(key)
			return ok && got == v2 && d.Len() == 1
		},
		gen.AnyString(), gen.AnyString(), gen.AnyString(),
	))

	properties.Property("clear empties any table", prop.ForAll(
		func(keys []string) bool {
			d := New()
			for _, k := range keys {
				d.Set(k, k)
			}
			d.Clear()
			if d.Len() != 0 {
				return false
			}
			for _, k := range keys {
				if _, ok := d.Get(k); ok {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.AnyString()),
	))

	properties.Property("From preserves pre-existing entries", prop.ForAll(
		func(m map[string]string) bool {
			raw := make(map[string]any, len(m))
			for k, v := range m {
				raw[k] = v
			}
			d := From(raw)
			if d.Len() != len(m) {
				return false
			}
			for k, v := range m {
				got, ok := d.Get(k)
				if !ok || got != v {
					return false
				}
			}
			return true
		},
		gen.MapOf(gen.AnyString(), gen.AnyString()),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
