package domain

// Grid 是 日期 × 时间段 的稠密表格，每个单元格都存在（可能为空字符串）
type Grid struct {
	Days  []string   `json:"days"`
	Slots []string   `json:"slots"`
	Cells [][]string `json:"cells"` // Cells[day][slot]
}

func NewGrid(days []string, slots []string) *Grid {
	cells := make([][]string, len(days))
	for i := range cells {
		cells[i] = make([]string, len(slots))
	}

	return &Grid{
		Days:  append([]string{}, days...),
		Slots: append([]string{}, slots...),
		Cells: cells,
	}
}

// Cell 按标签读取单元格，标签不存在时返回空字符串
func (g *Grid) Cell(day string, slot string) string {
	for i, d := range g.Days {
		if d != day {
			continue
		}
		for j, s := range g.Slots {
			if s == slot {
				return g.Cells[i][j]
			}
		}
	}
	return ""
}
