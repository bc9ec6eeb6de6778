package timetable

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strings"

	"github.com/sysu-ecnc-dev/class-timetable/backend/internal/config"
	"github.com/sysu-ecnc-dev/class-timetable/backend/internal/domain"
)

type KeyKind string

const (
	KeyClassroom KeyKind = "classroom"
	KeyTeacher   KeyKind = "teacher"
)

var ErrInvalidKey = errors.New("无效的索引键")

func ParseKeyKind(s string) (KeyKind, error) {
	switch KeyKind(strings.ToLower(strings.TrimSpace(s))) {
	case KeyClassroom:
		return KeyClassroom, nil
	case KeyTeacher:
		return KeyTeacher, nil
	default:
		return "", fmt.Errorf("%w: 未知的索引类型 %q", ErrInvalidKey, s)
	}
}

var (
	// 教学楼前缀 + 房间号，可选一个字母后缀，例如 H303、HA201、H202B
	roomCodePattern = regexp.MustCompile(`\b[A-Z]{1,4}\d+[A-Z]?\b`)
	// 同一字段中列出多个教室或教师时使用的分隔符
	listSeparator = regexp.MustCompile(`[/,;&+]`)
)

// normalizeValue 去掉首尾空白和括号，转为大写并合并连续空白，例如 " (Lab   1) " -> "LAB 1"
func normalizeValue(s string) string {
	s = strings.Trim(strings.TrimSpace(s), "()[] \t")
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}

// splitValues 按分隔符拆分字段，每一段作为一个整体
func splitValues(field string) []string {
	var values []string
	for _, part := range listSeparator.Split(field, -1) {
		if v := normalizeValue(part); v != "" {
			values = append(values, v)
		}
	}
	return values
}

// ClassroomTokens 从教室字段中提取教室代码。
// 按完整的代码比较，因此 H303 不会匹配到 H3033；
// 字段中没有教室代码时，每一段整体作为一个教室，例如 "Lab 1" -> [LAB 1]
func ClassroomTokens(field string) []string {
	if codes := roomCodePattern.FindAllString(strings.ToUpper(field), -1); len(codes) > 0 {
		return codes
	}
	return splitValues(field)
}

// TeacherTokens 从教师字段中提取教师，例如 "AB/CD" -> [AB CD]。
// 单个单词视为简称（去掉末尾的点），多个单词的姓名整体作为一个教师，例如 "Prof. Smith" -> [PROF. SMITH]
func TeacherTokens(field string) []string {
	var tokens []string
	for _, v := range splitValues(field) {
		if !strings.Contains(v, " ") {
			v = strings.Trim(v, ".")
		}
		if v != "" {
			tokens = append(tokens, v)
		}
	}
	return tokens
}

// normalizeClassroomKey 将索引键规范化为与 ClassroomTokens 相同的形式
func normalizeClassroomKey(key string) string {
	if codes := roomCodePattern.FindAllString(strings.ToUpper(key), -1); len(codes) == 1 {
		return codes[0]
	}
	return normalizeValue(key)
}

// normalizeTeacherKey 将索引键规范化为与 TeacherTokens 相同的形式
func normalizeTeacherKey(key string) string {
	if tokens := TeacherTokens(key); len(tokens) == 1 {
		return tokens[0]
	}
	return normalizeValue(key)
}

// CrossIndex 是按某个教室或某位教师重新生成的课表
type CrossIndex struct {
	Key         string              `json:"key"`
	Kind        KeyKind             `json:"kind"`
	Grid        *domain.Grid        `json:"grid"`
	Matched     []domain.Entry      `json:"matched"`
	Diagnostics []domain.Diagnostic `json:"diagnostics"`
}

// placement 是某一个单元格中的一段渲染结果，所有 placement 收集完之后再一次性写入 Grid
type placement struct {
	day          int
	slot         int
	text         string
	continuation bool
}

// matcher 判断一条 Entry 是否属于索引键
type matcher func(e domain.Entry) bool

// BuildIndex 从所有班级的 Entry 中挑出与 key 匹配的课程，生成新的 日期 × 时间段 课表。
// 同一单元格中有多条课程时用分隔行连接，不会互相覆盖。roster 可以为 nil
func BuildIndex(sc *config.ScheduleConfig, entries []domain.Entry, roster *Roster, key string, kind KeyKind) (*CrossIndex, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, fmt.Errorf("%w: 索引键为空", ErrInvalidKey)
	}

	idx := &CrossIndex{Key: key, Kind: kind}

	var match matcher
	switch kind {
	case KeyClassroom:
		match = classroomMatcher(key)
	case KeyTeacher:
		match = teacherMatcher(key, roster, &idx.Diagnostics)
	default:
		return nil, fmt.Errorf("%w: 未知的索引类型 %q", ErrInvalidKey, kind)
	}

	var placements []placement
	unresolved := make(map[string]bool)
	for _, e := range entries {
		if !match(e) {
			continue
		}

		dayIndex, ok := sc.DayIndex(e.Day)
		if !ok {
			continue
		}
		slotIndex, ok := sc.SlotIndex(e.Slot)
		if !ok {
			continue
		}

		idx.Matched = append(idx.Matched, e)
		placements = append(placements, placement{
			day:  dayIndex,
			slot: slotIndex,
			text: renderEntry(e, kind, roster, unresolved, &idx.Diagnostics),
		})
		if e.SpansNextSlot && slotIndex+1 < len(sc.Slots) {
			placements = append(placements, placement{
				day:          dayIndex,
				slot:         slotIndex + 1,
				continuation: true,
			})
		}
	}

	idx.Grid = fold(sc, placements, key, &idx.Diagnostics)
	return idx, nil
}

func classroomMatcher(key string) matcher {
	target := normalizeClassroomKey(key)

	return func(e domain.Entry) bool {
		return slices.Contains(ClassroomTokens(e.Classroom), target)
	}
}

// teacherMatcher 根据 key 构造教师匹配规则。
// key 是教师全称且提供了 roster 时，按班级将全称解析为简称，避免不同班级中相同简称的教师互相混淆；
// 否则按简称匹配
func teacherMatcher(key string, roster *Roster, diags *[]domain.Diagnostic) matcher {
	if records := roster.ByTeacherFullName(key); len(records) > 0 {
		all := make(map[string]bool)
		byDivision := make(map[string]map[string]bool)
		for _, rec := range records {
			if rec.TeacherShortForm == "" {
				continue
			}
			short := normalizeTeacherKey(rec.TeacherShortForm)
			all[short] = true
			if byDivision[rec.Division] == nil {
				byDivision[rec.Division] = make(map[string]bool)
			}
			byDivision[rec.Division][short] = true
		}

		if len(all) > 1 {
			shorts := make([]string, 0, len(all))
			for short := range all {
				shorts = append(shorts, short)
			}
			slices.Sort(shorts)
			*diags = append(*diags, domain.Diagnostic{
				Kind:   domain.AmbiguousKeyMatch,
				Reason: fmt.Sprintf("教师 %q 对应多个简称 %s，全部保留", key, strings.Join(shorts, ", ")),
			})
		}

		return func(e domain.Entry) bool {
			allowed := all
			if roster.HasDivision(e.SourceDivision) {
				allowed = byDivision[e.SourceDivision]
			}
			for _, tok := range TeacherTokens(e.Teacher) {
				if allowed[tok] {
					return true
				}
			}
			return false
		}
	}

	target := normalizeTeacherKey(key)
	if roster != nil {
		names := roster.TeacherNames(key)
		switch {
		case len(names) == 0:
			*diags = append(*diags, domain.Diagnostic{
				Kind:   domain.NoRosterMatch,
				Reason: fmt.Sprintf("元数据中没有简称为 %q 的教师，仅按简称匹配", key),
			})
		case len(names) > 1:
			*diags = append(*diags, domain.Diagnostic{
				Kind:   domain.AmbiguousKeyMatch,
				Reason: fmt.Sprintf("简称 %q 对应多位教师 %s，全部保留", key, strings.Join(names, ", ")),
			})
			slog.Warn("教师简称对应多位教师", "key", key, "teachers", names)
		}
	}

	return func(e domain.Entry) bool {
		return slices.Contains(TeacherTokens(e.Teacher), target)
	}
}

// renderEntry 渲染单条课程：科目、另一个字段（教室索引显示教师，教师索引显示教室）、分组（为空时省略）
func renderEntry(e domain.Entry, kind KeyKind, roster *Roster, unresolved map[string]bool, diags *[]domain.Diagnostic) string {
	other := e.Classroom
	if kind == KeyClassroom {
		other = e.Teacher
		if roster != nil {
			if rec, ok := roster.Teacher(e.Teacher, e.SourceDivision); ok && rec.TeacherFullName != "" {
				other = fmt.Sprintf("%s (%s)", rec.TeacherFullName, e.Teacher)
			} else if !unresolved[e.Teacher] {
				unresolved[e.Teacher] = true
				*diags = append(*diags, domain.Diagnostic{
					Location: domain.Location{Division: e.SourceDivision, Day: e.Day, Slot: e.Slot},
					Kind:     domain.NoRosterMatch,
					Reason:   fmt.Sprintf("元数据中没有简称为 %q 的教师，显示简称", e.Teacher),
				})
			}
		}
	}

	lines := []string{e.Subject, other}
	if e.SubDivision != "" {
		lines = append(lines, e.SubDivision)
	}
	return strings.Join(lines, "\n")
}

// fold 把所有 placement 按坐标归并，一次性生成最终的 Grid
func fold(sc *config.ScheduleConfig, placements []placement, key string, diags *[]domain.Diagnostic) *domain.Grid {
	texts := make([][][]string, len(sc.Days))
	continued := make([][]bool, len(sc.Days))
	for i := range sc.Days {
		texts[i] = make([][]string, len(sc.Slots))
		continued[i] = make([]bool, len(sc.Slots))
	}

	for _, p := range placements {
		if p.continuation {
			continued[p.day][p.slot] = true
			continue
		}
		texts[p.day][p.slot] = append(texts[p.day][p.slot], p.text)
	}

	grid := domain.NewGrid(sc.Days, sc.Slots)
	separator := "\n" + sc.Separator + "\n"
	for d := range sc.Days {
		for s := range sc.Slots {
			segments := texts[d][s]
			loc := domain.Location{Day: sc.Days[d], Slot: sc.Slots[s]}

			if len(segments) > 1 {
				*diags = append(*diags, domain.Diagnostic{
					Location: loc,
					Kind:     domain.AmbiguousKeyMatch,
					Reason:   fmt.Sprintf("%q 在同一时间段有 %d 条课程，全部保留", key, len(segments)),
				})
				slog.Debug("同一时间段有多条课程", "key", key, "day", loc.Day, "slot", loc.Slot, "count", len(segments))
			}

			switch {
			case len(segments) > 0:
				if continued[d][s] {
					*diags = append(*diags, domain.Diagnostic{
						Location: loc,
						Kind:     domain.AmbiguousKeyMatch,
						Reason:   "连堂课的后半段与其他课程重叠，不标记合并",
					})
				}
				grid.Cells[d][s] = strings.Join(segments, separator)
			case continued[d][s]:
				grid.Cells[d][s] = sc.ContinuationMarker
			}
		}
	}

	return grid
}

// Keys 列出所有出现过的教室或教师简称，按字典序排列
func Keys(entries []domain.Entry, kind KeyKind) []string {
	seen := make(map[string]bool)
	for _, e := range entries {
		var tokens []string
		switch kind {
		case KeyClassroom:
			tokens = ClassroomTokens(e.Classroom)
		case KeyTeacher:
			tokens = TeacherTokens(e.Teacher)
		}
		for _, tok := range tokens {
			seen[tok] = true
		}
	}

	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// BuildAll 为每一个教室（或每一位教师）生成课表
func BuildAll(sc *config.ScheduleConfig, entries []domain.Entry, roster *Roster, kind KeyKind) ([]*CrossIndex, error) {
	keys := Keys(entries, kind)
	indexes := make([]*CrossIndex, 0, len(keys))
	for _, key := range keys {
		idx, err := BuildIndex(sc, entries, roster, key, kind)
		if err != nil {
			return nil, err
		}
		indexes = append(indexes, idx)
	}
	return indexes, nil
}
