package timetable

import (
	"fmt"
	"regexp"
	"strings"
)

// 单元格中多个分组课程之间的分隔符
const entrySeparator = " - "

var (
	// 第二行形如 "OOP (AB)"：科目在前，括号中为教师简称
	subjectTeacherPattern = regexp.MustCompile(`^([^()]+?)\s*\(([^()]+)\)`)
	// 第三行形如 "(H303)"：括号中为教室
	classroomPattern = regexp.MustCompile(`\(([^()]+)\)`)
)

// CellShape 是对单元格文本形态的一次性分类，之后的解析只根据这个结果分支
type CellShape int

const (
	ShapeEmpty CellShape = iota
	// ShapePlain 三行依次为 科目、教师、教室
	ShapePlain
	// ShapeSplit 一个或多个 "分组\n科目 (教师)\n(教室)" 片段，多个片段之间用 " - " 分隔
	ShapeSplit
	// ShapeMalformed 行数不足，无法解析
	ShapeMalformed
)

func (s CellShape) String() string {
	switch s {
	case ShapeEmpty:
		return "empty"
	case ShapePlain:
		return "plain"
	case ShapeSplit:
		return "split"
	case ShapeMalformed:
		return "malformed"
	default:
		return fmt.Sprintf("CellShape(%d)", int(s))
	}
}

// Cell 是分类后的单元格。Parts 中每一项是已经去掉空行和首尾空白的行
type Cell struct {
	Shape CellShape
	Parts [][]string
}

// PartialEntry 是从单元格中解析出来、还没有日期和时间段的课程
type PartialEntry struct {
	SubDivision string
	Subject     string
	Teacher     string
	Classroom   string
}

// CellIssue 是单元格解析中遇到的问题，位置信息由调用方补充
type CellIssue struct {
	Part   int
	Reason string
}

func splitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// isStructured 判断这三行是否符合 "分组 / 科目 (教师) / (教室)" 的格式
func isStructured(lines []string) bool {
	return len(lines) >= 3 && subjectTeacherPattern.MatchString(lines[1]) && classroomPattern.MatchString(lines[2])
}

// ClassifyCell 对单元格文本进行分类
func ClassifyCell(text string) Cell {
	text = strings.TrimSpace(text)
	if text == "" {
		return Cell{Shape: ShapeEmpty}
	}

	if strings.Contains(text, entrySeparator) {
		var parts [][]string
		for _, part := range strings.Split(text, entrySeparator) {
			parts = append(parts, splitLines(part))
		}
		return Cell{Shape: ShapeSplit, Parts: parts}
	}

	lines := splitLines(text)
	switch {
	case len(lines) < 3:
		return Cell{Shape: ShapeMalformed, Parts: [][]string{lines}}
	case isStructured(lines):
		// 没有分隔符但只有一个分组的情况，例如 "C1\nOOP (AB)\n(H303)"
		return Cell{Shape: ShapeSplit, Parts: [][]string{lines}}
	default:
		return Cell{Shape: ShapePlain, Parts: [][]string{lines}}
	}
}

// ParseCell 把单元格文本解析为零个或多个 PartialEntry。
// 无法解析的片段会被跳过并记录在 issues 中，不影响其他片段。
func ParseCell(text string) ([]PartialEntry, []CellIssue) {
	cell := ClassifyCell(text)

	switch cell.Shape {
	case ShapeEmpty:
		return nil, nil

	case ShapeMalformed:
		return nil, []CellIssue{{Reason: fmt.Sprintf("单元格只有 %d 行，至少需要 3 行", len(cell.Parts[0]))}}

	case ShapePlain:
		lines := cell.Parts[0]
		return []PartialEntry{{
			Subject:   lines[0],
			Teacher:   lines[1],
			Classroom: lines[2],
		}}, nil

	case ShapeSplit:
		var entries []PartialEntry
		var issues []CellIssue
		for i, lines := range cell.Parts {
			entry, reason := parseSplitPart(lines)
			if reason != "" {
				issues = append(issues, CellIssue{Part: i, Reason: reason})
				continue
			}
			entries = append(entries, entry)
		}
		return entries, issues

	default:
		panic(fmt.Sprintf("unhandled cell shape %s", cell.Shape))
	}
}

func parseSplitPart(lines []string) (PartialEntry, string) {
	if len(lines) < 3 {
		return PartialEntry{}, fmt.Sprintf("片段只有 %d 行，至少需要 3 行", len(lines))
	}

	subjectTeacher := subjectTeacherPattern.FindStringSubmatch(lines[1])
	if subjectTeacher == nil {
		return PartialEntry{}, fmt.Sprintf("无法从 %q 中解析科目和教师", lines[1])
	}
	classroom := classroomPattern.FindStringSubmatch(lines[2])
	if classroom == nil {
		return PartialEntry{}, fmt.Sprintf("无法从 %q 中解析教室", lines[2])
	}

	return PartialEntry{
		SubDivision: lines[0],
		Subject:     strings.TrimSpace(subjectTeacher[1]),
		Teacher:     strings.TrimSpace(subjectTeacher[2]),
		Classroom:   strings.TrimSpace(classroom[1]),
	}, ""
}
