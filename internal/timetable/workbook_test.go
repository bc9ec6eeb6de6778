package timetable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/class-timetable/backend/internal/config"
	"github.com/sysu-ecnc-dev/class-timetable/backend/internal/domain"
)

func TestExtractWorkbook(t *testing.T) {
	sc := config.DefaultSchedule()
	meta := [][]string{
		{"Course Code", "Course Name", "Teacher"},
		{"2301101", "Object Oriented Programming (OOP)", "Alice Brown (AB)"},
	}
	sheets := []domain.Sheet{
		*newSheet(sc, "SY-A").set("MON", "9:25 to 10:20", "OOP\nAB\nH202").meta(meta...).build(),
		*newSheet(sc, "SY-B").set("MON", "9:25 to 10:20", "OS\nEF\nH202").set("TUE", "8:30 to 9:25", "C1\nOOP (AB)").build(),
	}

	result, err := ExtractWorkbook(sc, sheets)
	require.NoError(t, err)

	require.Len(t, result.Entries, 2)
	assert.Equal(t, "SY-A", result.Entries[0].SourceDivision)
	assert.Equal(t, "SY-B", result.Entries[1].SourceDivision)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "SY-A", result.Records[0].Division)
	assert.Equal(t, []domain.DiagnosticKind{domain.MalformedCell}, kinds(result.Diagnostics))

	idx, err := BuildIndex(sc, result.Entries, result.Roster(), "H202", KeyClassroom)
	require.NoError(t, err)
	assert.Equal(t, "OOP\nAlice Brown (AB)\n---\nOS\nEF", idx.Grid.Cell("MON", "9:25 to 10:20"))
}

func TestExtractWorkbookMatchesSequential(t *testing.T) {
	sc := config.DefaultSchedule()
	var sheets []domain.Sheet
	for _, division := range []string{"SY-A", "SY-B", "SY-C", "SY-D"} {
		sheets = append(sheets, *newSheet(sc, division).
			set("WED", "13:15 to 14:10", "G1\nCN (IJ)\n(LAB1) - G2\nCN (KL)\n(LAB2)").
			set("WED", "14:10 to 15:05", "G1\nCN (IJ)\n(LAB1) - G2\nCN (KL)\n(LAB2)").
			set("FRI", "8:30 to 9:25", division+"\nAB\nH303").
			build())
	}

	result, err := ExtractWorkbook(sc, sheets)
	require.NoError(t, err)

	var want []domain.Entry
	for i := range sheets {
		extraction, err := Extract(sc, &sheets[i])
		require.NoError(t, err)
		want = append(want, extraction.Entries...)
	}
	assert.Equal(t, want, result.Entries)
}

func TestExtractWorkbookFatalSheet(t *testing.T) {
	sc := config.DefaultSchedule()
	sheets := []domain.Sheet{
		*newSheet(sc, "SY-A").build(),
		{Division: "SY-B", Slots: sc.Slots},
	}

	_, err := ExtractWorkbook(sc, sheets)
	assert.ErrorIs(t, err, ErrEmptyGrid)
	assert.Contains(t, err.Error(), "SY-B")
}
