package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/entrhq/cursornav/pkg/dom/htmldom"
	"github.com/entrhq/cursornav/pkg/navigation"
	"github.com/entrhq/cursornav/pkg/predicate"
	"github.com/entrhq/cursornav/pkg/shifter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSetup(t *testing.T, markup string) *setup {
	t.Helper()
	doc, err := htmldom.ParseString(markup, htmldom.Options{Location: "test"})
	require.NoError(t, err)

	settings := navigation.DefaultSettings()
	settings.Granularity = shifter.Line
	return &setup{doc: doc, settings: settings, preds: predicate.Default()}
}

func TestRunHeadless_ReadsThroughFrames(t *testing.T) {
	s := newSetup(t, `<h1>Title</h1>`+
		`<p>Before</p>`+
		`<iframe srcdoc="<p>Inside one</p><p>Inside two</p>"></iframe>`+
		`<p>After</p>`)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var out bytes.Buffer
	require.NoError(t, runHeadless(ctx, s, &out))

	text := out.String()
	last := -1
	for _, want := range []string{"Before", "Inside one", "Inside two", "After"} {
		i := strings.Index(text, want)
		require.GreaterOrEqual(t, i, 0, "missing %q in %q", want, text)
		assert.Greater(t, i, last, "%q out of order in %q", want, text)
		last = i
	}
}

func TestRunHeadless_SingleDocument(t *testing.T) {
	s := newSetup(t, `<p>One</p><p>Two</p>`)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var out bytes.Buffer
	require.NoError(t, runHeadless(ctx, s, &out))
	assert.Contains(t, out.String(), "One")
	assert.Contains(t, out.String(), "Two")
}

func TestRunHeadless_Cancelled(t *testing.T) {
	s := newSetup(t, `<p>One</p>`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := runHeadless(ctx, s, &bytes.Buffer{})
	assert.Error(t, err)
}
