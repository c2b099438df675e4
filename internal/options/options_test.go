package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/simunit/internal/errs"
)

type part int

const (
	partA part = iota
	partB
	partC
	partD
)

func TestNewAxis(t *testing.T) {
	a := NewAxis("Foo", "A", "b")
	assert.Equal(t, "Foo", a.Name())
	assert.Equal(t, []string{"a", "b"}, a.Labels())
	assert.Equal(t, []string{"a", "b"}, a.ActiveLabels())
	assert.False(t, a.Restricted())
	assert.Equal(t, 2, a.Len())

	assert.Panics(t, func() { NewAxis("Empty") })
	assert.Panics(t, func() { NewAxis("Dup", "x", "X") })
	assert.Panics(t, func() { NewAxis("", "x") })
}

func TestAxisValue(t *testing.T) {
	a := NewAxis("Foo", "a", "b")

	v, err := a.Value(" B ")
	require.NoError(t, err)
	assert.Equal(t, "b", v.Label())
	assert.Equal(t, 1, v.Index())
	assert.Same(t, a, v.Axis())
	assert.Equal(t, "Foo.b", v.String())
	assert.Equal(t, a.At(1), v)

	_, err = a.Value("z")
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrUnknownParameter)
	var labelErr *LabelError
	require.True(t, errors.As(err, &labelErr))
	assert.Equal(t, []string{"a", "b"}, labelErr.Valid)
	assert.Contains(t, err.Error(), "recognized values are: a b")

	assert.Panics(t, func() { a.MustValue("z") })
	assert.Panics(t, func() { a.At(2) })

	var zero Value
	assert.True(t, zero.IsZero())
	assert.Equal(t, "", zero.Label())
	assert.Equal(t, "<none>", zero.String())
}

func TestRestrict(t *testing.T) {
	e := NewEnum[part]("Part", "a", "b", "c", "d")
	require.NoError(t, e.Restrict("d", "B"))

	assert.True(t, e.Restricted())
	assert.Equal(t, []string{"b", "d"}, e.ActiveLabels(), "declaration order is kept")
	assert.Equal(t, []string{"a", "b", "c", "d"}, e.Labels(), "canonical labels never change")
	assert.True(t, e.IsActive(e.Of(partB)))
	assert.False(t, e.IsActive(e.Of(partC)))
	assert.Len(t, e.Active(), 2)

	assert.Error(t, e.Restrict())
	assert.ErrorIs(t, e.Restrict("q"), errs.ErrUnknownParameter)
	assert.Equal(t, []string{"b", "d"}, e.ActiveLabels(), "failed restriction leaves the subset alone")
}

func TestEnum(t *testing.T) {
	e := NewEnum[part]("Part", "a", "b", "c", "d")
	other := NewAxis("Other", "a")

	assert.Equal(t, "c", e.Of(partC).Label())

	got, err := e.From(e.Of(partD))
	require.NoError(t, err)
	assert.Equal(t, partD, got)

	_, err = e.From(other.At(0))
	assert.Error(t, err)

	p, err := e.Parse("B")
	require.NoError(t, err)
	assert.Equal(t, partB, p)
	_, err = e.Parse("z")
	assert.Error(t, err)
}

func TestRestrictions(t *testing.T) {
	foo := NewAxis("Foo", "a", "b", "c")
	bar := NewAxis("Bar", "d", "e")

	r, err := ParseRestrictions("Foo=a, c", "", "bar=e", "Foo=a")
	require.NoError(t, err)
	assert.Equal(t, Restrictions{"Foo": {"a", "c", "a"}, "bar": {"e"}}, r)

	restore, err := r.Apply(foo, bar)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, foo.ActiveLabels())
	assert.Equal(t, []string{"e"}, bar.ActiveLabels())
	restore()
	assert.Equal(t, []string{"a", "b", "c"}, foo.ActiveLabels())
	assert.Equal(t, []string{"d", "e"}, bar.ActiveLabels())

	_, err = ParseRestrictions("Foo")
	assert.Error(t, err)
	split, err := ParseRestrictions("Foo=a", "c", "bar=e")
	require.NoError(t, err)
	assert.Equal(t, Restrictions{"Foo": {"a", "c"}, "bar": {"e"}}, split)
	_, err = ParseRestrictions("Foo=")
	assert.Error(t, err)
	_, err = ParseRestrictions("=a")
	assert.Error(t, err)

	_, err = Restrictions{"Nope": {"a"}}.Apply(foo)
	assert.ErrorContains(t, err, "unknown axis")
	_, err = Restrictions{"Foo": {"zz"}}.Apply(foo)
	assert.ErrorIs(t, err, errs.ErrUnknownParameter)

	// A failure part way leaves earlier axes untouched.
	_, err = Restrictions{"Bar": {"d"}, "Foo": {"zz"}}.Apply(foo, bar)
	require.Error(t, err)
	assert.Equal(t, []string{"d", "e"}, bar.ActiveLabels())
}

func TestAxisUnrestrict(t *testing.T) {
	a := NewAxis("Limiter", "minmod", "van_leer", "mc")
	require.NoError(t, a.Restrict("mc"))
	assert.True(t, a.Restricted())

	a.Unrestrict()
	assert.False(t, a.Restricted())
	assert.Equal(t, []string{"minmod", "van_leer", "mc"}, a.ActiveLabels())
}

func TestAxisMapping(t *testing.T) {
	a := NewAxis("Riemann", "hll", "hllc")
	m := a.Mapping()
	assert.Len(t, m, 2)
	assert.Equal(t, a.MustValue("hllc"), m["hllc"])
}
