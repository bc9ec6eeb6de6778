package seed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/class-timetable/backend/internal/config"
	"github.com/sysu-ecnc-dev/class-timetable/backend/internal/timetable"
)

func TestWorkbookIsDeterministic(t *testing.T) {
	sc := config.DefaultSchedule()

	a := NewGenerator(sc, 42).Workbook(3)
	b := NewGenerator(sc, 42).Workbook(3)

	assert.Equal(t, a, b)
	require.Len(t, a, 3)
	assert.Equal(t, "DIV-A", a[0].Division)
	assert.Equal(t, "DIV-C", a[2].Division)
}

func TestGeneratedWorkbookExtracts(t *testing.T) {
	sc := config.DefaultSchedule()
	sheets := NewGenerator(sc, 7).Workbook(4)

	result, err := timetable.ExtractWorkbook(sc, sheets)
	require.NoError(t, err)

	assert.Empty(t, result.Diagnostics)
	assert.NotEmpty(t, result.Entries)

	spans := 0
	for _, e := range result.Entries {
		i, ok := sc.SlotIndex(e.Slot)
		require.True(t, ok)
		assert.False(t, sc.IsBreakAt(i))
		if e.SpansNextSlot {
			spans++
		}
	}
	// 每个班级的实验课分两组
	assert.Equal(t, 2*len(sheets), spans)

	roster := result.Roster()
	for _, sheet := range sheets {
		assert.True(t, roster.HasDivision(sheet.Division))
	}
	// 每个班级 3 门理论课各一位教师，实验课两位教师
	assert.Equal(t, 5*len(sheets), roster.Len())
}
