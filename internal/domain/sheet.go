package domain

// SheetRow 是源课表中的一行：第一列是日期标签，后面是各个时间段的单元格
type SheetRow struct {
	Label string   `json:"label"`
	Cells []string `json:"cells"`
}

// Sheet 是一个班级（division）的源课表，对应工作簿中的一张工作表
type Sheet struct {
	Division string     `json:"division" validate:"required"`
	Slots    []string   `json:"slots" validate:"required"` // 表头中的时间段标签，与 SheetRow.Cells 按列对齐
	Rows     []SheetRow `json:"rows" validate:"required"`
	Meta     [][]string `json:"meta"` // 课程与教师信息块，可以为空
}
