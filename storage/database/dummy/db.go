package dummydb

import (
	"strings"
	"sync"

	"github.com/trezcool/montree/core/curriculum"
)

type (
	DB struct {
		catalog     *catalogTables
		assignments *assignmentTable
		progress    *progressTable
		synonyms    *synonymTable
	}

	catalogTables struct {
		sync.RWMutex
		areas map[string]map[string]bool  // scope -> area -> active
		works map[string]*curriculum.Work // scope|id -> work
	}

	assignmentTable struct {
		sync.RWMutex
		table map[string]*curriculum.Assignment
	}

	progressTable struct {
		sync.RWMutex
		table map[curriculum.ProgressKey]*curriculum.Progress
	}

	synonymTable struct {
		sync.RWMutex
		table map[string]*curriculum.Synonym // scope|area|raw text -> synonym
	}
)

func Open() (*DB, error) {
	db := &DB{
		catalog: &catalogTables{
			areas: make(map[string]map[string]bool),
			works: make(map[string]*curriculum.Work),
		},
		assignments: &assignmentTable{table: make(map[string]*curriculum.Assignment)},
		progress:    &progressTable{table: make(map[curriculum.ProgressKey]*curriculum.Progress)},
		synonyms:    &synonymTable{table: make(map[string]*curriculum.Synonym)},
	}
	return db, nil
}

func key(parts ...string) string {
	return strings.Join(parts, "|")
}
