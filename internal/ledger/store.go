// Package ledger persists expenses and tags to a YAML file and computes
// spending reports over them.
package ledger

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"spendcal/internal/calendar"
	"spendcal/internal/config"
	appLog "spendcal/internal/log"
	"spendcal/internal/model"
	"spendcal/internal/recur"
)

var (
	ErrTagNotFound     = errors.New("tag not found")
	ErrExpenseNotFound = errors.New("expense not found")
)

// ledgerFile is the on-disk layout.
type ledgerFile struct {
	NextID   uint64          `yaml:"next_id"`
	Tags     []string        `yaml:"tags"`
	Expenses []model.Expense `yaml:"expenses"`
}

// Store holds the ledger in memory. Mutations are only written back by
// Save.
type Store struct {
	path     string
	nextID   uint64
	tags     []string
	expenses []model.Expense
}

// Load reads the ledger at path. A missing file yields an empty ledger
// allowing defaultTags.
func Load(path string, defaultTags []string) (*Store, error) {
	if path == "" {
		return nil, errors.New("ledger path is empty")
	}

	s := &Store{path: path, nextID: 1, tags: slices.Clone(defaultTags)}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			appLog.Debug("ledger not found, starting empty", "path", path)
			return s, nil
		}
		return nil, err
	}

	var f ledgerFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse ledger %s: %w", path, err)
	}

	s.tags = f.Tags
	s.expenses = f.Expenses
	for i := range s.expenses {
		e := &s.expenses[i]
		// End is derived; never trust the stored value.
		e.End = model.EndDate(e.Start, e.Repetition, e.Spread)
		s.nextID = max(s.nextID, e.ID+1)
	}
	s.nextID = max(s.nextID, f.NextID)

	appLog.Debug("ledger loaded", "path", path, "expenses", len(s.expenses), "tags", len(s.tags))
	return s, nil
}

// Save writes the ledger back to its file.
func (s *Store) Save() error {
	f := ledgerFile{NextID: s.nextID, Tags: s.tags, Expenses: s.expenses}
	if f.Tags == nil {
		f.Tags = []string{}
	}
	if f.Expenses == nil {
		f.Expenses = []model.Expense{}
	}

	data, err := yaml.Marshal(&f)
	if err != nil {
		return err
	}
	if err := config.WriteFileAtomic(s.path, data); err != nil {
		appLog.Error("ledger save failed", err, "path", s.path)
		return err
	}
	appLog.Info("ledger saved", "path", s.path, "expenses", len(s.expenses))
	return nil
}

// Path returns the file backing the store.
func (s *Store) Path() string { return s.path }

// Add records a new expense and returns it with its assigned id. Every tag
// must already be known to the ledger.
func (s *Store) Add(description string, amount int64, start calendar.Date,
	spread *calendar.Duration, repetition *recur.Repetition, tags []string) (model.Expense, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return model.Expense{}, errors.New("description is empty")
	}
	for _, t := range tags {
		if !slices.Contains(s.tags, t) {
			return model.Expense{}, fmt.Errorf("%w: %q", ErrTagNotFound, t)
		}
	}

	e := model.NewExpense(s.nextID, description, amount, start, spread, repetition, slices.Clone(tags))
	s.nextID++
	s.expenses = append(s.expenses, e)

	appLog.Info("expense added", "id", e.ID, "description", e.Description)
	return e, nil
}

// Remove deletes the expense with the given id.
func (s *Store) Remove(id uint64) error {
	i := slices.IndexFunc(s.expenses, func(e model.Expense) bool { return e.ID == id })
	if i < 0 {
		return fmt.Errorf("%w: id %d", ErrExpenseNotFound, id)
	}
	s.expenses = slices.Delete(s.expenses, i, i+1)
	appLog.Info("expense removed", "id", id)
	return nil
}

// Get returns the expense with the given id.
func (s *Store) Get(id uint64) (model.Expense, error) {
	for _, e := range s.expenses {
		if e.ID == id {
			return e, nil
		}
	}
	return model.Expense{}, fmt.Errorf("%w: id %d", ErrExpenseNotFound, id)
}

// Expenses returns the expenses in insertion order.
func (s *Store) Expenses() []model.Expense {
	return slices.Clone(s.expenses)
}

// Sorted returns the expenses ordered by end date.
func (s *Store) Sorted() []model.Expense {
	out := slices.Clone(s.expenses)
	slices.SortStableFunc(out, func(a, b model.Expense) int {
		return a.CompareDates(&b)
	})
	return out
}

// Tags returns the known tags.
func (s *Store) Tags() []string {
	return slices.Clone(s.tags)
}

// AddTag makes tag available to expenses. Adding a known tag is a no-op.
func (s *Store) AddTag(tag string) error {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return errors.New("tag is empty")
	}
	if !slices.Contains(s.tags, tag) {
		s.tags = append(s.tags, tag)
	}
	return nil
}

// RemoveTag forgets tag and strips it from every expense.
func (s *Store) RemoveTag(tag string) error {
	i := slices.Index(s.tags, tag)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrTagNotFound, tag)
	}
	s.tags = slices.Delete(s.tags, i, i+1)
	for j := range s.expenses {
		s.expenses[j].RemoveTag(tag)
	}
	return nil
}
