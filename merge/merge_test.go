// Copyright 2024 - 2025, the poreach contributors
// SPDX-License-Identifier: AGPL-3.0-only

package merge

import (
	"testing"

	"github.com/leonelquinteros/gotext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-vfs/vfst"

	"codeberg.org/poreach/poreach/catalog"
	"codeberg.org/poreach/poreach/exchange"
	"codeberg.org/poreach/poreach/extract"
	"codeberg.org/poreach/poreach/reach"
)

const fixturePo = `msgid ""
msgstr ""
"Content-Type: text/plain; charset=UTF-8\n"
"Plural-Forms: nplurals=2; plural=(n != 1);\n"

#, fuzzy
msgid "Save"
msgstr "old save"

msgid "Delete"
msgstr ""

msgid "%d file"
msgid_plural "%d files"
msgstr[0] "%d old"
msgstr[1] ""

msgid "Close"
msgstr "বন্ধ করুন"
`

func fixtureFile(t *testing.T) *catalog.File {
	t.Helper()

	f, err := catalog.Parse([]byte(fixturePo))
	require.NoError(t, err)

	return f
}

func TestApplySingular(t *testing.T) {
	t.Run("legacy update clears fuzzy", func(t *testing.T) {
		f := fixtureFile(t)

		st := Apply(f, []exchange.Translation{
			{MsgID: "Save", Legacy: true, HasMsgStr: true, Single: "সংরক্ষণ"},
		})

		assert.Equal(t, Stats{Updated: 1}, st)

		e := f.Find("Save")
		assert.Equal(t, "সংরক্ষণ", e.MsgStr)
		assert.False(t, e.Fuzzy())
	})

	t.Run("identical value counts nowhere", func(t *testing.T) {
		f := fixtureFile(t)

		st := Apply(f, []exchange.Translation{
			{MsgID: "Close", Legacy: true, HasMsgStr: true, Single: "বন্ধ করুন"},
		})

		assert.Equal(t, Stats{}, st)
	})

	t.Run("empty legacy value skipped", func(t *testing.T) {
		f := fixtureFile(t)

		st := Apply(f, []exchange.Translation{
			{MsgID: "Delete", Legacy: true, HasMsgStr: true, Single: "   "},
		})

		assert.Equal(t, Stats{Skipped: 1}, st)
		assert.Equal(t, "", f.Find("Delete").MsgStr)
	})

	t.Run("empty legacy value for unknown msgid still skipped", func(t *testing.T) {
		f := fixtureFile(t)

		st := Apply(f, []exchange.Translation{
			{MsgID: "Ghost", Legacy: true, HasMsgStr: true, Single: ""},
		})

		assert.Equal(t, Stats{Skipped: 1}, st)
	})

	t.Run("unknown msgid counted once", func(t *testing.T) {
		f := fixtureFile(t)

		st := Apply(f, []exchange.Translation{
			{MsgID: "Ghost", Legacy: true, HasMsgStr: true, Single: "ভূত"},
		})

		assert.Equal(t, Stats{NotFound: 1}, st)
	})

	t.Run("structured unknown msgid is missing before it is malformed", func(t *testing.T) {
		f := fixtureFile(t)

		st := Apply(f, []exchange.Translation{
			{MsgID: "Ghost", HasMsgStr: false},
		})

		assert.Equal(t, Stats{NotFound: 1}, st)
	})

	t.Run("structured value without msgstr skipped", func(t *testing.T) {
		f := fixtureFile(t)

		st := Apply(f, []exchange.Translation{
			{MsgID: "Save", HasMsgStr: false},
		})

		assert.Equal(t, Stats{Skipped: 1}, st)
		assert.Equal(t, "old save", f.Find("Save").MsgStr)
	})

	t.Run("structured singular updates", func(t *testing.T) {
		f := fixtureFile(t)

		st := Apply(f, []exchange.Translation{
			{MsgID: "Delete", HasMsgStr: true, Single: "মুছে ফেলুন"},
		})

		assert.Equal(t, Stats{Updated: 1}, st)
		assert.Equal(t, "মুছে ফেলুন", f.Find("Delete").MsgStr)
	})
}

func TestApplyPlural(t *testing.T) {
	t.Run("plural forms for singular entry skipped", func(t *testing.T) {
		f := fixtureFile(t)

		st := Apply(f, []exchange.Translation{
			{MsgID: "Save", HasMsgStr: true, Plural: []string{"a", "b"}},
		})

		assert.Equal(t, Stats{Skipped: 1}, st)
		assert.Equal(t, "old save", f.Find("Save").MsgStr)
	})

	t.Run("all forms empty skipped", func(t *testing.T) {
		f := fixtureFile(t)

		st := Apply(f, []exchange.Translation{
			{MsgID: "%d file", HasMsgStr: true, Plural: []string{"", "  "}},
		})

		assert.Equal(t, Stats{Skipped: 1}, st)
		assert.Equal(t, "%d old", f.Find("%d file").MsgStrPlural[0])
	})

	t.Run("stale slot rewrites every supplied form", func(t *testing.T) {
		f := fixtureFile(t)

		st := Apply(f, []exchange.Translation{
			{MsgID: "%d file", HasMsgStr: true, Plural: []string{"%d ফাইল", "%d ফাইলগুলি"}},
		})

		assert.Equal(t, Stats{Updated: 1}, st)

		e := f.Find("%d file")
		assert.Equal(t, "%d ফাইল", e.MsgStrPlural[0])
		assert.Equal(t, "%d ফাইলগুলি", e.MsgStrPlural[1])
	})

	t.Run("identical forms count nowhere", func(t *testing.T) {
		f := fixtureFile(t)

		st := Apply(f, []exchange.Translation{
			{MsgID: "%d file", HasMsgStr: true, Plural: []string{"%d old", ""}},
		})

		assert.Equal(t, Stats{}, st)
	})

	t.Run("partial supply leaves higher slots alone", func(t *testing.T) {
		f := fixtureFile(t)

		st := Apply(f, []exchange.Translation{
			{MsgID: "%d file", HasMsgStr: true, Plural: []string{"%d নতুন"}},
		})

		assert.Equal(t, Stats{Updated: 1}, st)

		e := f.Find("%d file")
		assert.Equal(t, "%d নতুন", e.MsgStrPlural[0])
		assert.Equal(t, "", e.MsgStrPlural[1])
	})
}

// One record covers every msgctxt variant of its msgid, still counting
// as a single update.
func TestApplyCoversContextVariants(t *testing.T) {
	const po = `msgid ""
msgstr ""
"Content-Type: text/plain; charset=UTF-8\n"

msgctxt "menu"
msgid "Open"
msgstr ""

msgctxt "dialog"
msgid "Open"
msgstr ""
`

	f, err := catalog.Parse([]byte(po))
	require.NoError(t, err)

	ts := []exchange.Translation{
		{MsgID: "Open", Legacy: true, HasMsgStr: true, Single: "খুলুন"},
	}

	st := Apply(f, ts)
	assert.Equal(t, Stats{Updated: 1}, st)

	for _, e := range f.FindAll("Open") {
		assert.Equal(t, "খুলুন", e.MsgStr, e.MsgCtxt)
	}

	// Re-applying finds every variant already current.
	assert.Equal(t, Stats{}, Apply(f, ts))
}

// Extracting, merging a non-empty string for every extracted msgid and
// extracting again must yield nothing, even when a msgid repeats under
// several msgctxt values.
func TestRoundTripToEmpty(t *testing.T) {
	const po = `msgid ""
msgstr ""
"Content-Type: text/plain; charset=UTF-8\n"
"Plural-Forms: nplurals=2; plural=(n != 1);\n"

#: templates/home.html:1
msgid "Welcome"
msgstr ""

#: templates/list.html:2
msgid "%d item"
msgid_plural "%d items"
msgstr[0] ""
msgstr[1] ""

#: templates/menu.html:3
msgctxt "menu"
msgid "Open"
msgstr ""

#: templates/dialog.html:4
msgctxt "dialog"
msgid "Open"
msgstr ""
`

	f, err := catalog.Parse([]byte(po))
	require.NoError(t, err)

	strategy := &reach.TemplateSource{}

	recs := extract.Run(f, strategy)
	require.Len(t, recs, 3)

	ts := make([]exchange.Translation, 0, len(recs))

	for _, r := range recs {
		if r.MsgIDPlural != "" {
			ts = append(ts, exchange.Translation{
				MsgID:     r.MsgID,
				HasMsgStr: true,
				Plural:    []string{"un", "des"},
			})

			continue
		}

		ts = append(ts, exchange.Translation{
			MsgID:     r.MsgID,
			Legacy:    true,
			HasMsgStr: true,
			Single:    "traduit",
		})
	}

	st := Apply(f, ts)
	assert.Equal(t, Stats{Updated: 3}, st)

	assert.Empty(t, extract.Run(f, strategy))
}

// Applying the same input twice must change nothing the second time.
func TestApplyIdempotent(t *testing.T) {
	f := fixtureFile(t)

	ts := []exchange.Translation{
		{MsgID: "Save", Legacy: true, HasMsgStr: true, Single: "সংরক্ষণ"},
		{MsgID: "%d file", HasMsgStr: true, Plural: []string{"%d ফাইল", "%d ফাইলগুলি"}},
		{MsgID: "Ghost", Legacy: true, HasMsgStr: true, Single: "ভূত"},
	}

	first := Apply(f, ts)
	assert.Equal(t, Stats{Updated: 2, NotFound: 1}, first)

	second := Apply(f, ts)
	assert.Equal(t, Stats{NotFound: 1}, second)
}

func TestRun(t *testing.T) {
	fs, cleanup, err := vfst.NewTestFS(map[string]interface{}{
		"/locale/bn/LC_MESSAGES/django.po": fixturePo,
	})
	require.NoError(t, err)

	defer cleanup()

	poPath := "/locale/bn/LC_MESSAGES/django.po"

	f, err := catalog.Load(fs, poPath)
	require.NoError(t, err)

	st, err := Run(fs, f, poPath, []exchange.Translation{
		{MsgID: "Save", Legacy: true, HasMsgStr: true, Single: "সংরক্ষণ"},
	})
	require.NoError(t, err)
	assert.Equal(t, Stats{Updated: 1}, st)

	// The PO file on disk carries the merge.
	reloaded, err := catalog.Load(fs, poPath)
	require.NoError(t, err)
	assert.Equal(t, "সংরক্ষণ", reloaded.Find("Save").MsgStr)
	assert.False(t, reloaded.Find("Save").Fuzzy())

	// The MO sibling exists and is readable by an independent runtime.
	moData, err := fs.ReadFile("/locale/bn/LC_MESSAGES/django.mo")
	require.NoError(t, err)

	mo := gotext.NewMo()
	mo.Parse(moData)
	assert.Equal(t, "সংরক্ষণ", mo.Get("Save"))
	assert.Equal(t, "বন্ধ করুন", mo.Get("Close"))
}

// A run with nothing to change still persists both files.
func TestRunAlwaysWrites(t *testing.T) {
	fs, cleanup, err := vfst.NewTestFS(map[string]interface{}{
		"/locale/bn/LC_MESSAGES/django.po": fixturePo,
	})
	require.NoError(t, err)

	defer cleanup()

	poPath := "/locale/bn/LC_MESSAGES/django.po"

	f, err := catalog.Load(fs, poPath)
	require.NoError(t, err)

	st, err := Run(fs, f, poPath, nil)
	require.NoError(t, err)
	assert.Equal(t, Stats{}, st)

	_, err = fs.Stat("/locale/bn/LC_MESSAGES/django.mo")
	assert.NoError(t, err)
}
