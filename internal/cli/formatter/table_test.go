package formatter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/daoban/internal/repository"
)

func TestRenderTable_AlignsColumns(t *testing.T) {
	out := RenderTable([]string{"NAME", "AMOUNT"}, [][]string{
		{"baseSalary", "5,000.00"},
		{"education", "0.00"},
	}, 1)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "NAME")
	assert.Contains(t, lines[1], "─")
	assert.True(t, strings.HasSuffix(lines[2], "5,000.00"))
	assert.True(t, strings.HasSuffix(lines[3], "    0.00"))
}

func TestRenderTable_EmptyHeaders(t *testing.T) {
	assert.Empty(t, RenderTable(nil, [][]string{{"x"}}))
}

func TestRenderTable_ShortRowsArePadded(t *testing.T) {
	out := RenderTable([]string{"A", "B"}, [][]string{{"only"}})
	assert.Contains(t, out, "only")
}

func TestFormatCacheEntries(t *testing.T) {
	assert.Contains(t, FormatCacheEntries(nil), "empty")

	out := FormatCacheEntries([]repository.CacheEntry{{Key: "daoban-session", Value: []byte(`{"a":1}`)}})
	assert.Contains(t, out, "daoban-session")
	assert.Contains(t, out, "7 B")
	assert.Contains(t, out, "-")
}
