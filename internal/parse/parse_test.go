package parse

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFile_Text(t *testing.T) {
	path := write(t, "doc.txt", "Beginning Balance: $1,000,000.00\n")
	doc, err := File(path)
	require.NoError(t, err)
	assert.Contains(t, doc.Text, "Beginning Balance")
	assert.Empty(t, doc.Tables)
}

func TestFile_TextWithPipeTable(t *testing.T) {
	content := `Capital Account Statement

| Line Item | Amount |
| Beginning Balance | $1,000,000.00 |
| Ending Balance | $1,200,000.00 |

Notes follow here.
`
	doc, err := File(write(t, "doc.txt", content))
	require.NoError(t, err)
	require.Len(t, doc.Tables, 1)

	table := doc.Tables[0]
	assert.Equal(t, []string{"Line Item", "Amount"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"Ending Balance", "$1,200,000.00"}, table.Rows[1])
}

func TestFile_TextWithTabTable(t *testing.T) {
	content := "Item\tQ1\tQ2\nNAV\t100\t110\nCalls\t10\t5\n"
	doc, err := File(write(t, "doc.txt", content))
	require.NoError(t, err)
	require.Len(t, doc.Tables, 1)
	assert.Equal(t, []string{"Item", "Q1", "Q2"}, doc.Tables[0].Headers)
	assert.Len(t, doc.Tables[0].Rows, 2)
}

func TestDetectTables_SingleLineIsNotATable(t *testing.T) {
	tables := detectTables("a | b | c\nno delimiters here\n")
	assert.Empty(t, tables)
}

func TestDetectTables_ColumnCountChangeSplitsBlocks(t *testing.T) {
	text := "a\tb\nc\td\ne\tf\tg\nh\ti\tj\n"
	tables := detectTables(text)
	require.Len(t, tables, 2)
	assert.Len(t, tables[0].Headers, 2)
	assert.Len(t, tables[1].Headers, 3)
}

func TestFile_CSV(t *testing.T) {
	content := "Field,Value\nEnding Balance,\"1,200,000.00\"\nOwnership %,2.5%\n"
	doc, err := File(write(t, "cas.csv", content))
	require.NoError(t, err)
	require.Len(t, doc.Tables, 1)
	assert.Equal(t, []string{"Field", "Value"}, doc.Tables[0].Headers)
	assert.Equal(t, []string{"Ending Balance", "1,200,000.00"}, doc.Tables[0].Rows[0])
	// Flattened text carries header/value pairs for the regex strategies.
	assert.Contains(t, doc.Text, "Field: Ending Balance")
}

func TestFile_UnsupportedExtension(t *testing.T) {
	_, err := File(write(t, "doc.pdf", "%PDF-1.4"))
	assert.Error(t, err)
}

func TestFile_Missing(t *testing.T) {
	_, err := File("/nonexistent/doc.txt")
	assert.Error(t, err)
}

func TestHashFile(t *testing.T) {
	a := write(t, "a.txt", "same content")
	b := write(t, "b.txt", "same content")
	c := write(t, "c.txt", "different content")

	ha, err := HashFile(a)
	require.NoError(t, err)
	hb, err := HashFile(b)
	require.NoError(t, err)
	hc, err := HashFile(c)
	require.NoError(t, err)

	assert.Equal(t, ha, hb)
	assert.NotEqual(t, ha, hc)
	assert.Len(t, ha, 64)
}
