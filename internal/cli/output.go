package cli

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"

	"github.com/pageza/recipebox/backend/internal/legacy"
	"github.com/pageza/recipebox/backend/internal/seed"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed, color.Bold)
	dimColor     = color.New(color.Faint)
)

func printError(w io.Writer, err error) {
	errorColor.Fprintf(w, "✗ %v\n", err)

	var connErr *legacy.ConnectionError
	var upsertErr *seed.UpsertError
	var ownerErr *seed.OwnerConflictError
	switch {
	case errors.As(err, &connErr):
		dimColor.Fprintln(w, "  check LEGACY_DB_HOST, LEGACY_DB_PORT and LEGACY_DB_USER, or run `legacy-migrate databases`")
	case errors.As(err, &ownerErr):
		dimColor.Fprintln(w, "  set LEGACY_OWNER_ID to the existing user or choose another LEGACY_OWNER_EMAIL")
	case errors.As(err, &upsertErr):
		dimColor.Fprintln(w, "  tables seeded before the failure were kept; rerunning seed is safe")
	}
}

// printCounts writes one line per table, sorted by name.
func printCounts(w io.Writer, counts map[string]int) {
	names := make([]string, 0, len(counts))
	width := 0
	for name := range counts {
		names = append(names, name)
		if len(name) > width {
			width = len(name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-*s %6d\n", width, name, counts[name])
	}
}
