package timetable

import (
	"slices"

	"github.com/sysu-ecnc-dev/class-timetable/backend/internal/config"
	"github.com/sysu-ecnc-dev/class-timetable/backend/internal/domain"
)

// sheetBuilder 构造使用默认课表结构的工作表
type sheetBuilder struct {
	sc    *config.ScheduleConfig
	sheet domain.Sheet
}

func newSheet(sc *config.ScheduleConfig, division string) *sheetBuilder {
	b := &sheetBuilder{
		sc: sc,
		sheet: domain.Sheet{
			Division: division,
			Slots:    slices.Clone(sc.Slots),
		},
	}
	for _, day := range sc.Days {
		b.sheet.Rows = append(b.sheet.Rows, domain.SheetRow{Label: day, Cells: make([]string, len(sc.Slots))})
	}
	return b
}

func (b *sheetBuilder) set(day string, slot string, text string) *sheetBuilder {
	d, _ := b.sc.DayIndex(day)
	s, _ := b.sc.SlotIndex(slot)
	b.sheet.Rows[d].Cells[s] = text
	return b
}

func (b *sheetBuilder) meta(rows ...[]string) *sheetBuilder {
	b.sheet.Meta = append(b.sheet.Meta, rows...)
	return b
}

func (b *sheetBuilder) build() *domain.Sheet {
	return &b.sheet
}

func kinds(diags []domain.Diagnostic) []domain.DiagnosticKind {
	out := make([]domain.DiagnosticKind, 0, len(diags))
	for _, d := range diags {
		out = append(out, d.Kind)
	}
	return out
}
