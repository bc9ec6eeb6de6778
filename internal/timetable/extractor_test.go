package timetable

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/class-timetable/backend/internal/config"
	"github.com/sysu-ecnc-dev/class-timetable/backend/internal/domain"
)

func TestExtractStructuredCell(t *testing.T) {
	sc := config.DefaultSchedule()
	sheet := newSheet(sc, "SY-A").
		set("MON", "8:30 to 9:25", "C1\nOOP (AB)\n(H303)").
		build()

	result, err := Extract(sc, sheet)
	require.NoError(t, err)

	want := []domain.Entry{{
		Day:            "MON",
		Slot:           "8:30 to 9:25",
		SubDivision:    "C1",
		Subject:        "OOP",
		Teacher:        "AB",
		Classroom:      "H303",
		SourceDivision: "SY-A",
	}}
	if diff := cmp.Diff(want, result.Entries); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, result.Diagnostics)
}

func TestExtractSplitCellSameSlot(t *testing.T) {
	sc := config.DefaultSchedule()
	sheet := newSheet(sc, "SY-A").
		set("TUE", "10:30 to 11:25", "C1\nDSA (CD)\n(H201) - C2\nDSA (CD)\n(H201)").
		build()

	result, err := Extract(sc, sheet)
	require.NoError(t, err)

	require.Len(t, result.Entries, 2)
	for _, e := range result.Entries {
		assert.Equal(t, "TUE", e.Day)
		assert.Equal(t, "10:30 to 11:25", e.Slot)
		assert.Equal(t, "CD", e.Teacher)
		assert.Equal(t, "H201", e.Classroom)
		assert.False(t, e.SpansNextSlot)
	}
	assert.Equal(t, "C1", result.Entries[0].SubDivision)
	assert.Equal(t, "C2", result.Entries[1].SubDivision)
}

func TestExtractMalformedCellDoesNotStopExtraction(t *testing.T) {
	sc := config.DefaultSchedule()
	sheet := newSheet(sc, "SY-A").
		set("MON", "8:30 to 9:25", "C1\nOOP (AB)").
		set("MON", "13:15 to 14:10", "OS\nEF\nH304").
		set("WED", "8:30 to 9:25", "DM\nGH\nH305").
		build()

	result, err := Extract(sc, sheet)
	require.NoError(t, err)

	assert.Len(t, result.Entries, 2)
	require.Len(t, result.Diagnostics, 1)
	d := result.Diagnostics[0]
	assert.Equal(t, domain.MalformedCell, d.Kind)
	assert.Equal(t, domain.Location{Division: "SY-A", Day: "MON", Slot: "8:30 to 9:25"}, d.Location)
}

func TestExtractSkipsBreakSlots(t *testing.T) {
	sc := config.DefaultSchedule()
	sheet := newSheet(sc, "SY-A").
		set("MON", "10:20 to 10:30", "TEA\nXX\nCANTEEN").
		build()

	result, err := Extract(sc, sheet)
	require.NoError(t, err)

	assert.Empty(t, result.Entries)
	assert.Empty(t, result.Diagnostics)
}

func TestExtractUnknownDayLabel(t *testing.T) {
	sc := config.DefaultSchedule()
	sheet := newSheet(sc, "SY-A").set("MON", "8:30 to 9:25", "OOP\nAB\nH303").build()
	sheet.Rows = append(sheet.Rows,
		domain.SheetRow{Label: "Class Teacher: ZZ", Cells: []string{"OOP\nAB\nH303"}},
		domain.SheetRow{Label: "", Cells: []string{"OOP\nAB\nH303"}},
	)

	result, err := Extract(sc, sheet)
	require.NoError(t, err)

	assert.Len(t, result.Entries, 1)
	assert.Equal(t, []domain.DiagnosticKind{domain.UnknownDayLabel}, kinds(result.Diagnostics))
}

func TestExtractPractical(t *testing.T) {
	sc := config.DefaultSchedule()
	lab := "G1\nCN (IJ)\n(LAB1) - G2\nCN (KL)\n(LAB2)"
	sheet := newSheet(sc, "SY-A").
		set("THU", "13:15 to 14:10", lab).
		set("THU", "14:10 to 15:05", lab).
		build()

	result, err := Extract(sc, sheet)
	require.NoError(t, err)

	require.Len(t, result.Entries, 2)
	for _, e := range result.Entries {
		assert.Equal(t, "13:15 to 14:10", e.Slot)
		assert.True(t, e.SpansNextSlot)
	}
	assert.Equal(t, "IJ", result.Entries[0].Teacher)
	assert.Equal(t, "KL", result.Entries[1].Teacher)
}

func TestExtractPracticalNeverCrossesBreak(t *testing.T) {
	sc := config.DefaultSchedule()
	// 14:10 to 15:05 之后是休息时间段 15:05 to 15:10
	sheet := newSheet(sc, "SY-A").
		set("FRI", "14:10 to 15:05", "CN\nIJ\nLAB1").
		set("FRI", "15:10 to 16:00", "CN\nIJ\nLAB1").
		build()

	result, err := Extract(sc, sheet)
	require.NoError(t, err)

	require.Len(t, result.Entries, 2)
	for _, e := range result.Entries {
		assert.False(t, e.SpansNextSlot)
	}
}

func TestExtractPracticalSharedTeacherToken(t *testing.T) {
	sc := config.DefaultSchedule()
	sheet := newSheet(sc, "SY-A").
		set("FRI", "13:15 to 14:10", "CN\nAB/CD\nLAB1").
		set("FRI", "14:10 to 15:05", "CN\nAB\nLAB2").
		build()

	result, err := Extract(sc, sheet)
	require.NoError(t, err)

	require.Len(t, result.Entries, 1)
	assert.Equal(t, "13:15 to 14:10", result.Entries[0].Slot)
	assert.True(t, result.Entries[0].SpansNextSlot)
}

func TestExtractUnrelatedNeighbourParsedNormally(t *testing.T) {
	sc := config.DefaultSchedule()
	sheet := newSheet(sc, "SY-A").
		set("MON", "8:30 to 9:25", "OOP\nAB\nH303").
		set("MON", "9:25 to 10:20", "OS\nEF\nH304").
		build()

	result, err := Extract(sc, sheet)
	require.NoError(t, err)

	require.Len(t, result.Entries, 2)
	assert.False(t, result.Entries[0].SpansNextSlot)
	assert.Equal(t, "9:25 to 10:20", result.Entries[1].Slot)
}

func TestExtractThreeConsecutiveSlots(t *testing.T) {
	sc := config.DefaultSchedule()
	// 连续三个时间段：前两个组成一节连堂课，第三个单独生成
	sheet := newSheet(sc, "SY-A").
		set("SAT", "12:20 to 13:15", "SE\nMN\nH301").
		set("SAT", "13:15 to 14:10", "SE\nMN\nH301").
		set("SAT", "14:10 to 15:05", "SE\nMN\nH301").
		build()

	result, err := Extract(sc, sheet)
	require.NoError(t, err)

	require.Len(t, result.Entries, 2)
	assert.Equal(t, "12:20 to 13:15", result.Entries[0].Slot)
	assert.True(t, result.Entries[0].SpansNextSlot)
	assert.Equal(t, "14:10 to 15:05", result.Entries[1].Slot)
	assert.False(t, result.Entries[1].SpansNextSlot)
}

func TestExtractSpanNeverOccupiesBreak(t *testing.T) {
	sc := config.DefaultSchedule()
	sheet := newSheet(sc, "SY-A").
		set("MON", "9:25 to 10:20", "OOP\nAB\nH303").
		set("MON", "10:30 to 11:25", "OOP\nAB\nH303").
		set("TUE", "16:00 to 16:50", "DS\nCD\nH201").
		set("TUE", "16:55 to 17:45", "DS\nCD\nH201").
		set("WED", "16:55 to 17:45", "DS\nCD\nH201").
		set("WED", "17:45 to 18:25", "DS\nCD\nH201").
		build()

	result, err := Extract(sc, sheet)
	require.NoError(t, err)

	for _, e := range result.Entries {
		i, ok := sc.SlotIndex(e.Slot)
		require.True(t, ok)
		assert.False(t, sc.IsBreakAt(i))
		if e.SpansNextSlot {
			require.Less(t, i+1, len(sc.Slots))
			assert.False(t, sc.IsBreakAt(i+1), "entry %+v spans into a break", e)
		}
	}
	assert.Len(t, result.Entries, 5)
}

func TestExtractWhitespacePaddingInvariant(t *testing.T) {
	sc := config.DefaultSchedule()
	cells := map[string]string{
		"8:30 to 9:25":   "C1\nOOP (AB)\n(H303)",
		"9:25 to 10:20":  "C1\nDSA (CD)\n(H201) - C2\nDSA (CD)\n(H201)",
		"13:15 to 14:10": "OS\nEF\nH304",
		"14:10 to 15:05": "C1\nOOP (AB)",
	}

	plain := newSheet(sc, "SY-A")
	padded := newSheet(sc, "SY-A")
	for slot, text := range cells {
		plain.set("MON", slot, text)
		padded.set("MON", slot, "\n  "+strings.ReplaceAll(text, "\n", " \n  ")+"  \n")
	}

	want, err := Extract(sc, plain.build())
	require.NoError(t, err)
	got, err := Extract(sc, padded.build())
	require.NoError(t, err)

	assert.Equal(t, len(want.Entries), len(got.Entries))
	if diff := cmp.Diff(want.Entries, got.Entries); diff != "" {
		t.Errorf("entries differ after padding (-want +got):\n%s", diff)
	}
}

func TestExtractFatalErrors(t *testing.T) {
	sc := config.DefaultSchedule()

	_, err := Extract(sc, &domain.Sheet{Division: "SY-A", Slots: sc.Slots})
	assert.ErrorIs(t, err, ErrEmptyGrid)

	_, err = Extract(sc, &domain.Sheet{
		Division: "SY-A",
		Slots:    []string{"Morning", "Afternoon"},
		Rows:     []domain.SheetRow{{Label: "MON", Cells: []string{"OOP\nAB\nH303", ""}}},
	})
	assert.ErrorIs(t, err, ErrNoSlotColumns)
	assert.Contains(t, err.Error(), "SY-A")
}

func TestExtractColumnsFollowHeaderOrder(t *testing.T) {
	sc := config.DefaultSchedule()
	sheet := &domain.Sheet{
		Division: "SY-B",
		Slots:    []string{"9:25 to 10:20", "unknown", "8:30 to 9:25"},
		Rows: []domain.SheetRow{
			{Label: "mon", Cells: []string{"OS\nEF\nH304", "X\nY\nZ"}},
		},
	}

	result, err := Extract(sc, sheet)
	require.NoError(t, err)

	require.Len(t, result.Entries, 1)
	assert.Equal(t, "9:25 to 10:20", result.Entries[0].Slot)
	assert.Equal(t, "MON", result.Entries[0].Day)
}
