package resolver

import (
	"strings"
	"sync"
	"unicode"

	"whatsorders/internal/models"
)

// Normalize lowercases text, turns every non-alphanumeric rune into a
// space, and collapses runs of spaces. Alias matching happens on
// normalized forms only.
func Normalize(text string) string {
	var b strings.Builder
	pendingSpace := false
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSpace && b.Len() > 0 {
				b.WriteRune(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
		} else {
			pendingSpace = true
		}
	}
	return b.String()
}

type aliasEntry struct {
	text      string
	companyID int64
	seq       int64
}

// AliasTable is the in-memory curated mapping from normalized alias text
// to company ids. It is safe for concurrent lookup and runtime updates.
type AliasTable struct {
	mu      sync.RWMutex
	entries []aliasEntry
}

// NewAliasTable builds a table from stored aliases. Entries are assumed
// ordered by registration; their ids provide the tie-break order.
func NewAliasTable(aliases []models.CompanyAlias) *AliasTable {
	t := &AliasTable{}
	for _, a := range aliases {
		t.Register(a.AliasText, a.CompanyID, a.ID)
	}
	return t
}

// Register adds an alias or, if the normalized text is already present,
// repoints it at another company while keeping its original registration
// order.
func (t *AliasTable) Register(aliasText string, companyID int64, seq int64) {
	norm := Normalize(aliasText)
	if norm == "" {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.entries {
		if t.entries[i].text == norm {
			t.entries[i].companyID = companyID
			return
		}
	}
	t.entries = append(t.entries, aliasEntry{text: norm, companyID: companyID, seq: seq})
}

// Resolve finds the company whose alias appears in text. Matching is
// substring containment on normalized forms; when aliases of distinct
// companies both match, the longest alias wins and ties go to the
// earliest-registered alias, keeping resolution deterministic.
func (t *AliasTable) Resolve(text string) *int64 {
	norm := Normalize(text)
	if norm == "" {
		return nil
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	var best *aliasEntry
	for i := range t.entries {
		e := &t.entries[i]
		if !strings.Contains(norm, e.text) {
			continue
		}
		if best == nil ||
			len(e.text) > len(best.text) ||
			(len(e.text) == len(best.text) && e.seq < best.seq) {
			best = e
		}
	}

	if best == nil {
		return nil
	}
	id := best.companyID
	return &id
}

// Len reports the number of registered aliases.
func (t *AliasTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}
