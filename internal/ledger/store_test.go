package ledger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendcal/internal/calendar"
	"spendcal/internal/recur"
)

func ptr[T any](v T) *T { return &v }

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := Load(filepath.Join(t.TempDir(), "ledger.yaml"), []string{"rent", "food"})
	require.NoError(t, err)
	return s
}

func TestLoadMissingFile(t *testing.T) {
	s := newStore(t)
	assert.Empty(t, s.Expenses())
	assert.Equal(t, []string{"rent", "food"}, s.Tags())

	_, err := Load("", nil)
	assert.Error(t, err)
}

func TestAddAssignsIDsAndChecksTags(t *testing.T) {
	s := newStore(t)

	a, err := s.Add("rent", -120000, calendar.MustNew(2020, 9, 1), nil, nil, []string{"rent"})
	require.NoError(t, err)
	b, err := s.Add("lunch", -1250, calendar.MustNew(2020, 9, 2), nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), a.ID)
	assert.Equal(t, uint64(2), b.ID)

	_, err = s.Add("cinema", -1500, calendar.MustNew(2020, 9, 3), nil, nil, []string{"fun"})
	assert.ErrorIs(t, err, ErrTagNotFound)

	_, err = s.Add("   ", -1, calendar.MustNew(2020, 9, 3), nil, nil, nil)
	assert.Error(t, err)
	assert.Len(t, s.Expenses(), 2)
}

func TestRemove(t *testing.T) {
	s := newStore(t)
	e, err := s.Add("coffee", -300, calendar.MustNew(2020, 9, 1), nil, nil, nil)
	require.NoError(t, err)

	require.NoError(t, s.Remove(e.ID))
	assert.ErrorIs(t, s.Remove(e.ID), ErrExpenseNotFound)
	_, err = s.Get(e.ID)
	assert.ErrorIs(t, err, ErrExpenseNotFound)

	// ids are not reused
	next, err := s.Add("tea", -250, calendar.MustNew(2020, 9, 1), nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), next.ID)
}

func TestTagLifecycle(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.AddTag("travel"))
	require.NoError(t, s.AddTag("travel"))
	assert.Equal(t, []string{"rent", "food", "travel"}, s.Tags())
	assert.Error(t, s.AddTag(" "))

	e, err := s.Add("train", -4500, calendar.MustNew(2020, 10, 1), nil, nil, []string{"travel", "food"})
	require.NoError(t, err)

	require.NoError(t, s.RemoveTag("travel"))
	assert.ErrorIs(t, s.RemoveTag("travel"), ErrTagNotFound)

	got, err := s.Get(e.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"food"}, got.Tags)
}

func TestSorted(t *testing.T) {
	s := newStore(t)
	forever := &recur.Repetition{Delta: recur.MonthDateDelta{Nth: 1, Days: []int{1}}, End: recur.Never{}}
	_, err := s.Add("rent", -100000, calendar.MustNew(2020, 1, 1), nil, forever, nil)
	require.NoError(t, err)
	_, err = s.Add("later", -100, calendar.MustNew(2020, 6, 1), nil, nil, nil)
	require.NoError(t, err)
	_, err = s.Add("sooner", -100, calendar.MustNew(2020, 2, 1), nil, nil, nil)
	require.NoError(t, err)

	var names []string
	for _, e := range s.Sorted() {
		names = append(names, e.Description)
	}
	assert.Equal(t, []string{"sooner", "later", "rent"}, names)
	assert.Equal(t, "rent", s.Expenses()[0].Description)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newStore(t)
	rep := &recur.Repetition{
		Delta: recur.WeekDelta{Nth: 2, On: []calendar.Weekday{calendar.Monday, calendar.Friday}},
		End:   recur.Count{N: 3},
	}
	want, err := s.Add("gym", -2500, calendar.MustNew(2020, 9, 20), ptr(calendar.Weeks(1)), rep, []string{"food"})
	require.NoError(t, err)
	require.NotNil(t, want.End)
	require.NoError(t, s.Save())

	info, err := os.Stat(s.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	back, err := Load(s.Path(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"rent", "food"}, back.Tags())
	require.Len(t, back.Expenses(), 1)
	assert.Equal(t, want, back.Expenses()[0])

	e, err := back.Add("next", -1, calendar.MustNew(2020, 1, 1), nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), e.ID)
}

func TestLoadRecomputesEnd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.yaml")
	src := `
next_id: 4
tags: [bills]
expenses:
  - id: 3
    description: phone
    amount: -2000
    start: 2020-01-15
    end: 1999-01-01
    repetition:
      delta:
        unit: month
        every: 1
        days: [15]
      count: 2
    tags: [bills]
`
	require.NoError(t, os.WriteFile(path, []byte(src), 0o600))

	s, err := Load(path, nil)
	require.NoError(t, err)
	e, err := s.Get(3)
	require.NoError(t, err)
	require.NotNil(t, e.End)
	assert.Equal(t, calendar.MustNew(2020, 3, 15), *e.End)

	added, err := s.Add("x", 1, calendar.MustNew(2020, 1, 1), nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), added.ID)
}

func TestLoadRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.yaml")
	require.NoError(t, os.WriteFile(path, []byte("expenses: {nope"), 0o600))
	_, err := Load(path, nil)
	assert.Error(t, err)
}
