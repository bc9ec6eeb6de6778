package timetable

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/sysu-ecnc-dev/class-timetable/backend/internal/config"
	"github.com/sysu-ecnc-dev/class-timetable/backend/internal/domain"
)

var (
	ErrEmptyGrid     = errors.New("课表没有任何行")
	ErrNoSlotColumns = errors.New("课表没有任何可识别的时间段列")
)

// Extraction 是一张工作表的提取结果
type Extraction struct {
	Entries     []domain.Entry      `json:"entries"`
	Diagnostics []domain.Diagnostic `json:"diagnostics"`
}

// parsedCell 缓存一行中某个时间段单元格的解析结果
type parsedCell struct {
	entries  []PartialEntry
	consumed []bool // 被前一个时间段的连堂课吸收的课程
	spans    []bool
}

// Extract 遍历一张工作表的 日期 × 时间段，解析每个单元格并识别连续两个时间段的课程。
// 只有结构上不可能处理的输入（没有行或者没有时间段列）才会返回错误。
func Extract(sc *config.ScheduleConfig, sheet *domain.Sheet) (*Extraction, error) {
	if len(sheet.Rows) == 0 {
		return nil, fmt.Errorf("班级 %s: %w (rows=0)", sheet.Division, ErrEmptyGrid)
	}

	// 按表头找到每个时间段所在的列，表头中没有的时间段视为空
	columns := make([]int, len(sc.Slots))
	for i := range columns {
		columns[i] = -1
	}
	found := 0
	for col, label := range sheet.Slots {
		if i, ok := sc.SlotIndex(label); ok && columns[i] < 0 {
			columns[i] = col
			found++
		}
	}
	if found == 0 {
		return nil, fmt.Errorf("班级 %s: %w (columns=%d)", sheet.Division, ErrNoSlotColumns, len(sheet.Slots))
	}

	result := &Extraction{}
	for _, row := range sheet.Rows {
		label := strings.TrimSpace(row.Label)
		if label == "" {
			// 空行，例如合并单元格留下的续行
			continue
		}

		dayIndex, ok := sc.DayIndex(label)
		if !ok {
			result.Diagnostics = append(result.Diagnostics, domain.Diagnostic{
				Location: domain.Location{Division: sheet.Division},
				Kind:     domain.UnknownDayLabel,
				Reason:   fmt.Sprintf("未知的日期标签 %q，已跳过该行", label),
			})
			slog.Debug("跳过未知日期的行", "division", sheet.Division, "label", label)
			continue
		}
		day := sc.Days[dayIndex]

		cells := parseRow(sc, sheet.Division, day, row, columns, &result.Diagnostics)
		resolveSpans(sc, cells)

		for i, cell := range cells {
			if cell == nil {
				continue
			}
			for k, p := range cell.entries {
				if cell.consumed[k] {
					continue
				}
				result.Entries = append(result.Entries, domain.Entry{
					Day:            day,
					Slot:           sc.Slots[i],
					SubDivision:    p.SubDivision,
					Subject:        p.Subject,
					Teacher:        p.Teacher,
					Classroom:      p.Classroom,
					SourceDivision: sheet.Division,
					SpansNextSlot:  cell.spans[k],
				})
			}
		}
	}

	return result, nil
}

// parseRow 解析一行中所有非休息时间段的单元格，每个单元格只解析一次
func parseRow(sc *config.ScheduleConfig, division string, day string, row domain.SheetRow, columns []int, diags *[]domain.Diagnostic) []*parsedCell {
	cells := make([]*parsedCell, len(sc.Slots))

	for i, col := range columns {
		if col < 0 || col >= len(row.Cells) || sc.IsBreakAt(i) {
			continue
		}

		entries, issues := ParseCell(row.Cells[col])
		for _, issue := range issues {
			*diags = append(*diags, domain.Diagnostic{
				Location: domain.Location{Division: division, Day: day, Slot: sc.Slots[i]},
				Kind:     domain.MalformedCell,
				Reason:   issue.Reason,
			})
			slog.Debug("跳过无法解析的单元格", "division", division, "day", day, "slot", sc.Slots[i], "reason", issue.Reason)
		}
		if len(entries) == 0 {
			continue
		}

		cells[i] = &parsedCell{
			entries:  entries,
			consumed: make([]bool, len(entries)),
			spans:    make([]bool, len(entries)),
		}
	}

	return cells
}

// resolveSpans 识别实验课：如果下一个时间段（不是休息时间）中有相同教师或相同教室的课程，
// 则当前课程标记为连堂，下一个时间段中对应的那一条不再单独生成
func resolveSpans(sc *config.ScheduleConfig, cells []*parsedCell) {
	for i := 0; i+1 < len(cells); i++ {
		cur, next := cells[i], cells[i+1]
		if cur == nil || next == nil || sc.IsBreakAt(i+1) {
			continue
		}

		for k, p := range cur.entries {
			if cur.consumed[k] {
				// 已经是上一个连堂课的后半段，不再向后延伸
				continue
			}
			if j := findContinuation(p, next); j >= 0 {
				cur.spans[k] = true
				next.consumed[j] = true
			}
		}
	}
}

// findContinuation 在下一个单元格中寻找与 p 属于同一节连堂课的课程，优先选择同一分组
func findContinuation(p PartialEntry, next *parsedCell) int {
	candidate := -1
	for j, q := range next.entries {
		if next.consumed[j] || !sameSession(p, q) {
			continue
		}
		if strings.EqualFold(p.SubDivision, q.SubDivision) {
			return j
		}
		if candidate < 0 {
			candidate = j
		}
	}
	return candidate
}

// sameSession 两条课程至少有一位相同的教师或一间相同的教室，例如 "AB/CD" 与 "AB"
func sameSession(p PartialEntry, q PartialEntry) bool {
	return sharesToken(TeacherTokens(p.Teacher), TeacherTokens(q.Teacher)) ||
		sharesToken(ClassroomTokens(p.Classroom), ClassroomTokens(q.Classroom))
}

func sharesToken(a []string, b []string) bool {
	for _, tok := range a {
		if slices.Contains(b, tok) {
			return true
		}
	}
	return false
}
