package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"invdash/pkg/contracts/domain"
)

// ExportRow builds one row in domain.ExpectedColumns order with every weekly
// column set to week. COST is left blank.
func ExportRow(qty, week, price, brand, typ string) []string {
	row := []string{qty, "0", "0"}
	for i := 0; i < domain.WeekCount; i++ {
		row = append(row, week)
	}
	return append(row, "0", "0", price, "", brand, typ)
}

// StandardRows is slow and stocked; unstocked and due for reorder; stocked
// and due for reorder.
func StandardRows() [][]string {
	return [][]string{
		ExportRow("5", "0", "20", "Acme", "Bolt"),
		ExportRow("0", "0", "80", "Acme", "Nut"),
		ExportRow("1", "10", "60", "Zenith", "Bolt"),
	}
}

// WriteInventory writes a comma separated export to path. A nil header
// writes a headerless file.
func WriteInventory(t *testing.T, path string, header []string, rows ...[]string) {
	t.Helper()
	var lines []string
	if header != nil {
		lines = append(lines, strings.Join(header, ","))
	}
	for _, r := range rows {
		lines = append(lines, strings.Join(r, ","))
	}
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
}

// TempInventory writes rows under the standard header into a fresh Fi.txt
// and returns its path.
func TempInventory(t *testing.T, rows ...[]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Fi.txt")
	WriteInventory(t, path, domain.ExpectedColumns, rows...)
	return path
}
