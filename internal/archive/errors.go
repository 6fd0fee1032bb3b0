package archive

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/alexanderramin/daylog/internal/domain"
)

// ErrArchiveInProgress is returned when a pass is requested while another is
// still running.
var ErrArchiveInProgress = errors.New("archival already in progress")

// PassError collects the categories that failed during one pass. Categories
// not listed were archived normally.
type PassError struct {
	Failed map[domain.Category]error
}

func (e *PassError) Error() string {
	cats := e.categories()
	parts := make([]string, len(cats))
	for i, c := range cats {
		parts[i] = fmt.Sprintf("%s: %v", c, e.Failed[c])
	}
	return fmt.Sprintf("archival failed for %d categor%s: %s", len(cats), plural(len(cats)), strings.Join(parts, "; "))
}

// Unwrap exposes every category failure to errors.Is and errors.As.
func (e *PassError) Unwrap() []error {
	cats := e.categories()
	out := make([]error, len(cats))
	for i, c := range cats {
		out[i] = e.Failed[c]
	}
	return out
}

func (e *PassError) categories() []domain.Category {
	cats := make([]domain.Category, 0, len(e.Failed))
	for c := range e.Failed {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })
	return cats
}

func plural(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}
