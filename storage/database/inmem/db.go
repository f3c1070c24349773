package inmemdb

import (
	"sync"

	"github.com/trezcool/vidyalaya/core/result"
)

type (
	DB struct {
		exam  *examTable
		marks *marksTable
	}

	examTable struct {
		sync.RWMutex
		table map[string]*result.Exam
	}

	// marksTable is keyed by exam ID, then student ID, then subject name.
	marksTable struct {
		sync.RWMutex
		table map[string]map[string]map[string]result.MarkEntry
	}
)

func Open() *DB {
	return &DB{
		exam:  &examTable{table: make(map[string]*result.Exam)},
		marks: &marksTable{table: make(map[string]map[string]map[string]result.MarkEntry)},
	}
}

// Reset empties every table.
func (db *DB) Reset() {
	db.exam.Lock()
	db.exam.table = make(map[string]*result.Exam)
	db.exam.Unlock()

	db.marks.Lock()
	db.marks.table = make(map[string]map[string]map[string]result.MarkEntry)
	db.marks.Unlock()
}
