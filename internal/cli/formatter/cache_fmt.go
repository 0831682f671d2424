package formatter

import (
	"strconv"

	"github.com/alexanderramin/daoban/internal/repository"
)

// FormatCacheEntries renders the rows of the local cache.
func FormatCacheEntries(entries []repository.CacheEntry) string {
	if len(entries) == 0 {
		return Dim("Local cache is empty.")
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		updated := "-"
		if !e.UpdatedAt.IsZero() {
			updated = e.UpdatedAt.Local().Format("2006-01-02 15:04")
		}
		rows = append(rows, []string{e.Key, updated, strconv.Itoa(len(e.Value)) + " B"})
	}
	return RenderTable([]string{"KEY", "UPDATED", "SIZE"}, rows, 2)
}
