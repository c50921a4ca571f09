// Package memory is an in-process RowWriter for tests and for running the
// export worker without Google credentials.
package memory

import (
	"context"
	"errors"
	"sync"

	"centavo/internal/sheets"
)

var _ sheets.RowWriter = (*Store)(nil)

type Store struct {
	mu   sync.Mutex
	rows []sheets.Row
}

func New() *Store {
	return &Store{}
}

// AppendRow stores the row.
func (s *Store) AppendRow(_ context.Context, row sheets.Row) error {
	if row.TransactionID == "" {
		return errors.New("row without transaction id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, row)
	return nil
}

// DeleteRow drops every row for transactionID.
func (s *Store) DeleteRow(_ context.Context, transactionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.rows[:0]
	for _, r := range s.rows {
		if r.TransactionID != transactionID {
			kept = append(kept, r)
		}
	}
	s.rows = kept
	return nil
}

// Rows returns a copy of the stored rows in insertion order.
func (s *Store) Rows() []sheets.Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sheets.Row(nil), s.rows...)
}
