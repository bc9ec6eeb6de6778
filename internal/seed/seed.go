package seed

import (
	"fmt"
	"math/rand"
	"slices"

	"github.com/sysu-ecnc-dev/class-timetable/backend/internal/config"
	"github.com/sysu-ecnc-dev/class-timetable/backend/internal/domain"
)

type course struct {
	code  string
	name  string
	short string
}

type teacher struct {
	name  string
	short string
}

var courses = []course{
	{"2301101", "Object Oriented Programming", "OOP"},
	{"2301102", "Operating Systems", "OS"},
	{"2301103", "Database Management Systems", "DBMS"},
	{"2301104", "Computer Networks", "CN"},
	{"2301105", "Discrete Mathematics", "DM"},
	{"2301106", "Software Engineering", "SE"},
	{"CS201", "Data Structures", "DS"},
	{"CS202", "Theory of Computation", "TOC"},
}

var teachers = []teacher{
	{"Alice Brown", "AB"},
	{"Charles Davis", "CD"},
	{"Emily Foster", "EF"},
	{"George Harris", "GH"},
	{"Irene Jackson", "IJ"},
	{"Kevin Lewis", "KL"},
	{"Monica Nelson", "MN"},
	{"Oliver Parker", "OP"},
	{"Rachel Stone", "RS"},
	{"Thomas Underwood", "TU"},
}

var classrooms = []string{"H301", "H302", "H303", "H304", "HA201", "HA202", "H202B", "LAB1", "LAB2"}

// 每门理论课每周的课时数
const sessionsPerCourse = 2

// Generator 生成随机的示例工作簿，用于演示与手工测试。相同的种子生成相同的工作簿
type Generator struct {
	schedule *config.ScheduleConfig
	rng      *rand.Rand
}

func NewGenerator(sc *config.ScheduleConfig, seed int64) *Generator {
	return &Generator{schedule: sc, rng: rand.New(rand.NewSource(seed))}
}

// Workbook 生成 n 个班级的工作表，班级名称为 DIV-A、DIV-B ...
func (g *Generator) Workbook(n int) []domain.Sheet {
	sheets := make([]domain.Sheet, 0, n)
	for i := 0; i < n; i++ {
		sheets = append(sheets, g.Sheet(divisionName(i)))
	}
	return sheets
}

func divisionName(i int) string {
	if i < 26 {
		return fmt.Sprintf("DIV-%c", 'A'+i)
	}
	return fmt.Sprintf("DIV-%d", i+1)
}

// Sheet 生成一个班级的工作表：若干门理论课，以及一门分两组、占用连续两个时间段的实验课
func (g *Generator) Sheet(division string) domain.Sheet {
	sc := g.schedule

	cells := make([][]string, len(sc.Days))
	for d := range cells {
		cells[d] = make([]string, len(sc.Slots))
	}

	picked := g.rng.Perm(len(courses))[:4]
	staff := g.rng.Perm(len(teachers))

	meta := [][]string{
		{},
		{"Course Code", "Course Name", "Teacher", "Classroom"},
	}

	for k, c := range picked[:len(picked)-1] {
		crs, t := courses[c], teachers[staff[k]]
		room := classrooms[g.rng.Intn(len(classrooms))]
		text := fmt.Sprintf("%s\n%s\n%s", crs.short, t.short, room)

		for n := 0; n < sessionsPerCourse; n++ {
			if d, s, ok := g.freeSlot(cells, 1); ok {
				cells[d][s] = text
			}
		}
		meta = append(meta, []string{crs.code, display(crs.name, crs.short), display(t.name, t.short), room})
	}

	// 实验课
	lab := courses[picked[len(picked)-1]]
	t1, t2 := teachers[staff[len(picked)-1]], teachers[staff[len(picked)]]
	text := fmt.Sprintf("G1\n%s (%s)\n(%s) - G2\n%s (%s)\n(%s)", lab.short, t1.short, "LAB1", lab.short, t2.short, "LAB2")
	if d, s, ok := g.freeSlot(cells, 2); ok {
		cells[d][s] = text
		cells[d][s+1] = text
	}
	meta = append(meta, []string{
		lab.code,
		display(lab.name, lab.short),
		display(t1.name, t1.short) + "\n" + display(t2.name, t2.short),
		"LAB1",
	})

	rows := make([]domain.SheetRow, 0, len(sc.Days))
	for d, day := range sc.Days {
		rows = append(rows, domain.SheetRow{Label: day, Cells: cells[d]})
	}

	return domain.Sheet{
		Division: division,
		Slots:    slices.Clone(sc.Slots),
		Rows:     rows,
		Meta:     meta,
	}
}

func display(name string, short string) string {
	return fmt.Sprintf("%s (%s)", name, short)
}

// freeSlot 随机寻找 width 个连续的、非休息的空时间段，并且前后相邻的时间段也为空，
// 避免相邻的课程被误认为连堂课
func (g *Generator) freeSlot(cells [][]string, width int) (int, int, bool) {
	sc := g.schedule
	for attempt := 0; attempt < 100; attempt++ {
		d := g.rng.Intn(len(sc.Days))
		s := g.rng.Intn(len(sc.Slots))
		if g.fits(cells[d], s, width) {
			return d, s, true
		}
	}
	return 0, 0, false
}

func (g *Generator) fits(row []string, s int, width int) bool {
	if s+width > len(row) {
		return false
	}
	for i := s; i < s+width; i++ {
		if g.schedule.IsBreakAt(i) || row[i] != "" {
			return false
		}
	}
	if s > 0 && row[s-1] != "" {
		return false
	}
	if s+width < len(row) && row[s+width] != "" {
		return false
	}
	return true
}
