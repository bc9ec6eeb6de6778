package timetable

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/class-timetable/backend/internal/domain"
)

func TestSummarizeWithoutRoster(t *testing.T) {
	entries := []domain.Entry{
		entry("SY-A", "MON", "8:30 to 9:25", "", "OOP", "AB", "H303"),
		entry("SY-A", "TUE", "8:30 to 9:25", "", "OOP", "AB", "H303"),
		entry("SY-B", "MON", "8:30 to 9:25", "", "OS", "EF", "H304"),
	}

	summary := Summarize(entries, nil)

	assert.Equal(t, 2, summary.DivisionCount)
	assert.Equal(t, 2, summary.CourseCount)
	assert.Equal(t, 2, summary.TeacherCount)
	assert.Equal(t, 2, summary.ClassroomCount)
	assert.Empty(t, summary.Courses)
}

func TestSummarizeCountsNormalizedClassrooms(t *testing.T) {
	entries := []domain.Entry{
		entry("SY-A", "MON", "8:30 to 9:25", "", "OOP", "AB", "(H303)"),
		entry("SY-B", "TUE", "8:30 to 9:25", "C1", "OS", "AB/EF", "H303"),
		entry("SY-B", "WED", "8:30 to 9:25", "", "DM", "EF", "lab  1"),
		entry("SY-C", "THU", "8:30 to 9:25", "", "DM", "EF", "Lab 1"),
	}

	summary := Summarize(entries, nil)

	assert.Equal(t, 2, summary.ClassroomCount)
	assert.Equal(t, 2, summary.TeacherCount)
}

func TestSummarizeWithRoster(t *testing.T) {
	entries := []domain.Entry{
		entry("SY-A", "MON", "8:30 to 9:25", "", "OOP", "AB", "H303"),
		entry("SY-C", "MON", "8:30 to 9:25", "", "XX", "YY", "H309"),
	}

	summary := Summarize(entries, testRoster())

	// 班级与教室取两者的并集，课程与教师以元数据为准
	assert.Equal(t, 3, summary.DivisionCount)
	assert.Equal(t, 3, summary.CourseCount)
	assert.Equal(t, 3, summary.TeacherCount)
	assert.Equal(t, 2, summary.ClassroomCount)
	assert.Len(t, summary.Courses, 3)
}

func TestGroupCourses(t *testing.T) {
	records := []domain.RosterRecord{
		{CourseCode: "CS201", CourseFullName: "Data Structures", CourseShortForm: "DS", TeacherFullName: "Charles Davis", TeacherShortForm: "CD", Division: "SY-B"},
		{CourseCode: "2301101", CourseFullName: "Object Oriented Programming", CourseShortForm: "OOP", TeacherFullName: "Alice Brown", TeacherShortForm: "AB", Division: "SY-A"},
		{CourseCode: " CS201 ", CourseFullName: "Data Structures", CourseShortForm: "DS", TeacherFullName: "Charles Davis", TeacherShortForm: "CD", Division: "SY-A"},
		{CourseCode: "CS201", CourseFullName: "Data Structures", CourseShortForm: "DS", TeacherFullName: "Charles Davis", TeacherShortForm: "CD", Division: "SY-B"},
		{CourseCode: "CS201", CourseFullName: "Data Structures", CourseShortForm: "DS", TeacherFullName: "Emily Foster", TeacherShortForm: "EF", Division: "SY-C"},
		{CourseCode: "cs201", CourseFullName: "Data Structures", TeacherFullName: "Charles Davis", Division: "SY-D"},
	}

	want := []domain.CourseGroup{
		{
			CourseCode:      "CS201",
			CourseName:      "Data Structures",
			CourseShortForm: "DS",
			Teachers: []domain.TeacherGroup{
				{TeacherName: "Charles Davis", TeacherShortForm: "CD", Divisions: []string{"SY-A", "SY-B"}},
				{TeacherName: "Emily Foster", TeacherShortForm: "EF", Divisions: []string{"SY-C"}},
			},
		},
		{
			CourseCode:      "2301101",
			CourseName:      "Object Oriented Programming",
			CourseShortForm: "OOP",
			Teachers: []domain.TeacherGroup{
				{TeacherName: "Alice Brown", TeacherShortForm: "AB", Divisions: []string{"SY-A"}},
			},
		},
		{
			CourseCode: "cs201",
			CourseName: "Data Structures",
			Teachers: []domain.TeacherGroup{
				{TeacherName: "Charles Davis", Divisions: []string{"SY-D"}},
			},
		},
	}

	if diff := cmp.Diff(want, GroupCourses(records)); diff != "" {
		t.Errorf("groups mismatch (-want +got):\n%s", diff)
	}
}

func TestCourseGroupDisplay(t *testing.T) {
	assert.Equal(t, "Data Structures (DS)", domain.CourseGroup{CourseName: "Data Structures", CourseShortForm: "DS"}.Display())
	assert.Equal(t, "Data Structures", domain.CourseGroup{CourseName: "Data Structures"}.Display())
	assert.Equal(t, "Alice Brown (AB)", domain.TeacherGroup{TeacherName: "Alice Brown", TeacherShortForm: "AB"}.Display())
}

func TestPanel(t *testing.T) {
	matched := []domain.Entry{
		entry("SY-A", "MON", "8:30 to 9:25", "", "OOP", "AB", "H303"),
		entry("SY-B", "TUE", "8:30 to 9:25", "", "DM", "GH", "H303"),
	}

	groups := Panel(matched, testRoster())

	require.Len(t, groups, 2)
	assert.Equal(t, "2301101", groups[0].CourseCode)
	assert.Equal(t, "Alice Brown", groups[0].Teachers[0].TeacherName)
	assert.Equal(t, "2301105", groups[1].CourseCode)

	// 简称相同但班级不同的记录不会出现在面板中
	for _, g := range groups {
		assert.NotEqual(t, "2301102", g.CourseCode)
	}
}

func TestPanelEmpty(t *testing.T) {
	assert.Empty(t, Panel(nil, testRoster()))
	assert.Empty(t, Panel([]domain.Entry{entry("SY-A", "MON", "8:30 to 9:25", "", "OOP", "AB", "H303")}, nil))
}

func TestSummaryRows(t *testing.T) {
	rows := SummaryRows(testRoster())

	require.Len(t, rows, 3)
	assert.Equal(t, domain.SummaryRow{
		CourseCode:      "2301101",
		CourseName:      "Object Oriented Programming",
		TeacherInitials: "AB",
		TeacherName:     "Alice Brown",
		Division:        "SY-A",
	}, rows[0])

	assert.Empty(t, SummaryRows(nil))
}
