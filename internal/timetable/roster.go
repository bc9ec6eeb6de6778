package timetable

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/sysu-ecnc-dev/class-timetable/backend/internal/domain"
)

var (
	courseCodePattern = regexp.MustCompile(`^(?:\d{6,7}|CS\d{3})`)
	// 末尾的一个括号分组是简称，例如 "Operating Systems (OS)"
	shortFormPattern = regexp.MustCompile(`^(.*?)\s*\(([^()]*)\)$`)
)

// 表头中各列的角色
type columnRoles struct {
	code      int
	name      int
	teacher   int
	classroom int
}

// SplitShortForm 去掉末尾的一个括号分组，返回全称和简称；没有括号时简称为空字符串
func SplitShortForm(text string) (string, string) {
	text = strings.TrimSpace(text)
	m := shortFormPattern.FindStringSubmatch(text)
	if m == nil {
		return text, ""
	}
	return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
}

// cleanCell 去掉首尾空白，并把表格读取时留下的 "nan" 视为空
func cleanCell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	v := strings.TrimSpace(row[col])
	if strings.EqualFold(v, "nan") {
		return ""
	}
	return v
}

func isHeaderRow(row []string) bool {
	for _, cell := range row {
		if strings.Contains(strings.ToLower(cell), "course code") {
			return true
		}
	}
	return false
}

// headerGroups 识别表头中的列。一行表头中可能有多组（例如左边理论课，右边实验课），
// 每个 "course code" 列开始一组，直到下一个 "course code" 列
func headerGroups(row []string) []columnRoles {
	var groups []columnRoles
	for i, cell := range row {
		name := strings.ToLower(strings.TrimSpace(cell))
		if strings.Contains(name, "course code") {
			groups = append(groups, columnRoles{code: i, name: -1, teacher: -1, classroom: -1})
			continue
		}
		if len(groups) == 0 {
			continue
		}
		g := &groups[len(groups)-1]
		switch {
		case strings.Contains(name, "course name") && g.name < 0:
			g.name = i
		case strings.Contains(name, "teacher") && g.teacher < 0:
			g.teacher = i
		case (strings.Contains(name, "classroom") || strings.Contains(name, "room")) && g.classroom < 0:
			g.classroom = i
		}
	}

	complete := groups[:0]
	for _, g := range groups {
		if g.name >= 0 && g.teacher >= 0 {
			complete = append(complete, g)
		}
	}
	return complete
}

// ResolveRoster 解析一张工作表的元数据块，得到 课程-教师 绑定。
// 有表头时按表头确定列，没有表头时逐行寻找课程代码并假设 代码/名称/教师 三列相邻。
func ResolveRoster(block [][]string, division string) ([]domain.RosterRecord, []domain.Diagnostic) {
	var records []domain.RosterRecord
	var diags []domain.Diagnostic

	headerFound := false
	for r := 0; r < len(block); r++ {
		if !isHeaderRow(block[r]) {
			continue
		}
		headerFound = true

		for _, g := range headerGroups(block[r]) {
			for d := r + 1; d < len(block); d++ {
				code := cleanCell(block[d], g.code)
				// 遇到空行或者无法识别的课程代码，说明这一组数据已经结束
				if code == "" || !courseCodePattern.MatchString(code) {
					break
				}
				recs, diag := resolveRow(block[d], g, division, d+1)
				records = append(records, recs...)
				if diag != nil {
					diags = append(diags, *diag)
				}
			}
		}
	}

	if headerFound {
		return records, diags
	}

	for r, row := range block {
		for c := range row {
			if !courseCodePattern.MatchString(cleanCell(row, c)) {
				continue
			}
			if c+2 >= len(row) {
				break
			}
			recs, diag := resolveRow(row, columnRoles{code: c, name: c + 1, teacher: c + 2, classroom: -1}, division, r+1)
			records = append(records, recs...)
			if diag != nil {
				diags = append(diags, *diag)
			}
			break
		}
	}

	return records, diags
}

// resolveRow 把一行数据转换为 RosterRecord。教师单元格中有多位教师（按换行分隔）时每位教师生成一条
func resolveRow(row []string, g columnRoles, division string, line int) ([]domain.RosterRecord, *domain.Diagnostic) {
	code := cleanCell(row, g.code)
	name := cleanCell(row, g.name)
	teachers := cleanCell(row, g.teacher)

	var missing []string
	if code == "" {
		missing = append(missing, "course code")
	}
	if name == "" {
		missing = append(missing, "course name")
	}
	if teachers == "" {
		missing = append(missing, "teacher")
	}
	if len(missing) > 0 {
		slog.Debug("跳过缺少必填字段的元数据行", "division", division, "row", line, "missing", missing)
		return nil, &domain.Diagnostic{
			Location: domain.Location{Division: division, Row: line},
			Kind:     domain.EmptyRequiredField,
			Reason:   fmt.Sprintf("缺少字段: %s", strings.Join(missing, ", ")),
		}
	}

	courseFull, courseShort := SplitShortForm(name)
	classroom := cleanCell(row, g.classroom)

	var records []domain.RosterRecord
	for _, teacher := range splitLines(teachers) {
		teacherFull, teacherShort := SplitShortForm(teacher)
		records = append(records, domain.RosterRecord{
			CourseCode:       code,
			CourseFullName:   courseFull,
			CourseShortForm:  courseShort,
			TeacherFullName:  teacherFull,
			TeacherShortForm: teacherShort,
			Division:         division,
			Classroom:        classroom,
		})
	}

	return records, nil
}
