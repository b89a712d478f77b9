package scanner

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeScript struct {
	text string
	src  bool
}

func (s fakeScript) Text() string   { return s.text }
func (s fakeScript) External() bool { return s.src }

type fakeDoc []Script

func (d fakeDoc) Scripts() []Script { return d }

type brokenWindow struct{}

func (brokenWindow) EventQueue() (Queue, error) { return nil, errors.New("no window") }

type brokenQueue struct{}

func (brokenQueue) Push(Record) error { return errors.New("push failed") }

type brokenQueueWindow struct{}

func (brokenQueueWindow) EventQueue() (Queue, error) { return brokenQueue{}, nil }

func TestMatchID(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   string
		wantOk bool
	}{
		{name: "double quoted", text: `ga("create", "UA-123456-1");`, want: "UA-123456-1", wantOk: true},
		{name: "single quoted", text: `ga('create', 'UA-99999999-2', 'auto');`, want: "UA-99999999-2", wantOk: true},
		{name: "word characters", text: `var id = "UA-ab_C12d-42";`, want: "UA-ab_C12d-42", wantOk: true},
		{name: "mixed quotes", text: `x = 'UA-123456-7"`, want: "UA-123456-7", wantOk: true},
		{name: "first match only", text: `"UA-111111-1"; "UA-222222-2"`, want: "UA-111111-1", wantOk: true},
		{name: "too short", text: `"UA-12345-1"`, wantOk: false},
		{name: "unquoted", text: `UA-123456-1`, wantOk: false},
		{name: "missing suffix", text: `"UA-123456-"`, wantOk: false},
		{name: "ga4 measurement id", text: `gtag('config', 'G-ABCDEF1234');`, wantOk: false},
		{name: "empty", text: "", wantOk: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MatchID(tt.text)
			assert.Equal(t, tt.wantOk, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCollect(t *testing.T) {
	tests := []struct {
		name string
		doc  fakeDoc
		want []string
	}{
		{name: "no scripts", doc: fakeDoc{}, want: nil},
		{name: "inline without id", doc: fakeDoc{fakeScript{text: "console.log('hi')"}}, want: nil},
		{name: "external skipped", doc: fakeDoc{
			fakeScript{text: `"UA-123456-1"`, src: true},
		}, want: nil},
		{name: "document order", doc: fakeDoc{
			fakeScript{text: `ga('create', 'UA-AAAAAA-1')`},
			fakeScript{text: `"UA-CCCCCC-3"`, src: true},
			fakeScript{text: `ga('create', 'UA-BBBBBB-2')`},
		}, want: []string{"UA-AAAAAA-1", "UA-BBBBBB-2"}},
		{name: "duplicates kept", doc: fakeDoc{
			fakeScript{text: `"UA-123456-1"`},
			fakeScript{text: `"UA-123456-1"`},
		}, want: []string{"UA-123456-1", "UA-123456-1"}},
		{name: "one per script", doc: fakeDoc{
			fakeScript{text: `"UA-111111-1" "UA-222222-2"`},
		}, want: []string{"UA-111111-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Collect(tt.doc))
		})
	}
}

func TestScanner_OnLoad(t *testing.T) {
	s := New()

	t.Run("end to end", func(t *testing.T) {
		win := &MemoryWindow{}
		ids, err := s.OnLoad(win, fakeDoc{fakeScript{text: `ga('create', 'UA-99999999-2', 'auto');`}})
		require.NoError(t, err)
		assert.Equal(t, []string{"UA-99999999-2"}, ids)

		records := win.Queue().Records()
		require.Len(t, records, 1)
		assert.Equal(t, Record{AnalyticsIDListKey: []string{"UA-99999999-2"}}, records[0])
	})

	t.Run("empty list pushes nothing", func(t *testing.T) {
		win := &MemoryWindow{}
		ids, err := s.OnLoad(win, fakeDoc{fakeScript{text: "var a = 1;"}})
		require.NoError(t, err)
		assert.Empty(t, ids)
		assert.Empty(t, win.Queue().Records())
	})

	t.Run("existing queue is appended", func(t *testing.T) {
		queue := &MemoryQueue{}
		require.NoError(t, queue.Push(Record{"event": "pageview"}))
		win := NewMemoryWindow(queue)

		_, err := s.OnLoad(win, fakeDoc{fakeScript{text: `"UA-123456-1"`}})
		require.NoError(t, err)
		_, err = s.OnLoad(NewMemoryWindow(queue), fakeDoc{fakeScript{text: `"UA-654321-9"`}})
		require.NoError(t, err)

		records := queue.Records()
		require.Len(t, records, 3)
		assert.Equal(t, Record{"event": "pageview"}, records[0])
		ids, ok := records[2].AnalyticsIDs()
		assert.True(t, ok)
		assert.Equal(t, []string{"UA-654321-9"}, ids)
	})

	t.Run("window failure", func(t *testing.T) {
		_, err := s.OnLoad(brokenWindow{}, fakeDoc{})
		assert.Error(t, err)
	})

	t.Run("queue failure", func(t *testing.T) {
		ids, err := s.OnLoad(brokenQueueWindow{}, fakeDoc{fakeScript{text: `"UA-123456-1"`}})
		assert.Error(t, err)
		assert.Equal(t, []string{"UA-123456-1"}, ids)
	})
}

func TestRecord_AnalyticsIDs(t *testing.T) {
	ids, ok := Record{AnalyticsIDListKey: []interface{}{"UA-123456-1"}}.AnalyticsIDs()
	assert.True(t, ok)
	assert.Equal(t, []string{"UA-123456-1"}, ids)

	_, ok = Record{AnalyticsIDListKey: []interface{}{1}}.AnalyticsIDs()
	assert.False(t, ok)

	_, ok = Record{"event": "x"}.AnalyticsIDs()
	assert.False(t, ok)
}
