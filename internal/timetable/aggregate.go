package timetable

import (
	"slices"
	"strings"

	"github.com/sysu-ecnc-dev/class-timetable/backend/internal/domain"
)

type Summary struct {
	DivisionCount  int                  `json:"divisionCount"`
	CourseCount    int                  `json:"courseCount"`
	TeacherCount   int                  `json:"teacherCount"`
	ClassroomCount int                  `json:"classroomCount"`
	Courses        []domain.CourseGroup `json:"courses"`
}

// Summarize 统计班级、课程、教师、教室的数量，并按课程分组列出教师及其负责的班级。
// 有元数据时课程和教师以元数据为准，否则使用课表中的简称
func Summarize(entries []domain.Entry, roster *Roster) *Summary {
	divisions := make(map[string]bool)
	courses := make(map[string]bool)
	teachers := make(map[string]bool)
	classrooms := make(map[string]bool)

	for _, e := range entries {
		addNonEmpty(divisions, e.SourceDivision)
		addTokens(classrooms, ClassroomTokens(e.Classroom))
		if roster.Len() == 0 {
			addNonEmpty(courses, e.Subject)
			addTokens(teachers, TeacherTokens(e.Teacher))
		}
	}

	var records []domain.RosterRecord
	if roster != nil {
		records = roster.Records
	}
	for _, rec := range records {
		addNonEmpty(divisions, rec.Division)
		addNonEmpty(courses, rec.CourseCode)
		addNonEmpty(teachers, rec.TeacherFullName)
		addTokens(classrooms, ClassroomTokens(rec.Classroom))
	}

	return &Summary{
		DivisionCount:  len(divisions),
		CourseCount:    len(courses),
		TeacherCount:   len(teachers),
		ClassroomCount: len(classrooms),
		Courses:        GroupCourses(records),
	}
}

func addNonEmpty(set map[string]bool, v string) {
	if v = strings.TrimSpace(v); v != "" {
		set[v] = true
	}
}

func addTokens(set map[string]bool, tokens []string) {
	for _, tok := range tokens {
		set[tok] = true
	}
}

type courseKey struct {
	code string
	name string
}

type teacherKey struct {
	name  string
	short string
}

// GroupCourses 按 (课程代码, 课程名称) -> 教师 -> 班级集合 分组。
// 分组键为去掉首尾空白后的精确匹配，班级去重并排序，课程按首次出现的顺序排列
func GroupCourses(records []domain.RosterRecord) []domain.CourseGroup {
	var courseOrder []courseKey
	shortForms := make(map[courseKey]string)
	teacherOrder := make(map[courseKey][]teacherKey)
	divisions := make(map[courseKey]map[teacherKey][]string)

	for _, rec := range records {
		ck := courseKey{code: strings.TrimSpace(rec.CourseCode), name: strings.TrimSpace(rec.CourseFullName)}
		tk := teacherKey{name: strings.TrimSpace(rec.TeacherFullName), short: strings.TrimSpace(rec.TeacherShortForm)}

		if _, exists := divisions[ck]; !exists {
			courseOrder = append(courseOrder, ck)
			divisions[ck] = make(map[teacherKey][]string)
		}
		if shortForms[ck] == "" {
			shortForms[ck] = strings.TrimSpace(rec.CourseShortForm)
		}
		if _, exists := divisions[ck][tk]; !exists {
			teacherOrder[ck] = append(teacherOrder[ck], tk)
			divisions[ck][tk] = []string{}
		}

		division := strings.TrimSpace(rec.Division)
		if division != "" && !slices.Contains(divisions[ck][tk], division) {
			divisions[ck][tk] = append(divisions[ck][tk], division)
		}
	}

	groups := make([]domain.CourseGroup, 0, len(courseOrder))
	for _, ck := range courseOrder {
		group := domain.CourseGroup{
			CourseCode:      ck.code,
			CourseName:      ck.name,
			CourseShortForm: shortForms[ck],
		}
		for _, tk := range teacherOrder[ck] {
			divs := divisions[ck][tk]
			slices.Sort(divs)
			group.Teachers = append(group.Teachers, domain.TeacherGroup{
				TeacherName:      tk.name,
				TeacherShortForm: tk.short,
				Divisions:        divs,
			})
		}
		groups = append(groups, group)
	}

	return groups
}

// Panel 返回与索引中匹配到的课程相关的元数据分组，用于在导出的课表下方展示
func Panel(matched []domain.Entry, roster *Roster) []domain.CourseGroup {
	if roster.Len() == 0 || len(matched) == 0 {
		return []domain.CourseGroup{}
	}

	var related []domain.RosterRecord
	for _, rec := range roster.Records {
		for _, e := range matched {
			if rec.Division != e.SourceDivision {
				continue
			}
			if rec.CourseShortForm == "" && rec.TeacherShortForm == "" {
				continue
			}
			// 有简称的字段都必须对得上
			sameCourse := rec.CourseShortForm == "" || strings.EqualFold(rec.CourseShortForm, e.Subject)
			sameTeacher := rec.TeacherShortForm == "" || slices.Contains(TeacherTokens(e.Teacher), normalizeTeacherKey(rec.TeacherShortForm))
			if sameCourse && sameTeacher {
				related = append(related, rec)
				break
			}
		}
	}

	return GroupCourses(related)
}

// SummaryRows 把元数据展开为导出用的扁平记录
func SummaryRows(roster *Roster) []domain.SummaryRow {
	if roster == nil {
		return []domain.SummaryRow{}
	}

	rows := make([]domain.SummaryRow, 0, len(roster.Records))
	for _, rec := range roster.Records {
		rows = append(rows, domain.SummaryRow{
			CourseCode:      rec.CourseCode,
			CourseName:      rec.CourseFullName,
			TeacherInitials: rec.TeacherShortForm,
			TeacherName:     rec.TeacherFullName,
			Division:        rec.Division,
			Classroom:       rec.Classroom,
		})
	}
	return rows
}
