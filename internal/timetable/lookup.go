package timetable

import (
	"slices"
	"strings"

	"github.com/sysu-ecnc-dev/class-timetable/backend/internal/domain"
)

// Roster 是一次处理过程中所有工作表元数据的查找表，只在这一次处理中使用
type Roster struct {
	Records []domain.RosterRecord

	byTeacherShort map[string][]int // 教师简称（大写） -> 记录下标
	byTeacherFull  map[string][]int // 教师全称（小写） -> 记录下标
	divisions      map[string]bool
}

type rosterKey struct {
	code         string
	teacherFull  string
	teacherShort string
	division     string
}

// NewRoster 建立查找表。课程代码、教师、班级完全相同的记录只保留第一条，
// 如果第一条没有教室而后面的有，则补上教室
func NewRoster(records []domain.RosterRecord) *Roster {
	r := &Roster{
		Records:        make([]domain.RosterRecord, 0, len(records)),
		byTeacherShort: make(map[string][]int),
		byTeacherFull:  make(map[string][]int),
		divisions:      make(map[string]bool),
	}

	seen := make(map[rosterKey]int)
	for _, rec := range records {
		key := rosterKey{
			code:         strings.TrimSpace(rec.CourseCode),
			teacherFull:  strings.TrimSpace(rec.TeacherFullName),
			teacherShort: strings.TrimSpace(rec.TeacherShortForm),
			division:     strings.TrimSpace(rec.Division),
		}
		if i, exists := seen[key]; exists {
			if r.Records[i].Classroom == "" {
				r.Records[i].Classroom = rec.Classroom
			}
			continue
		}

		i := len(r.Records)
		seen[key] = i
		r.Records = append(r.Records, rec)

		if key.teacherShort != "" {
			short := strings.ToUpper(key.teacherShort)
			r.byTeacherShort[short] = append(r.byTeacherShort[short], i)
		}
		if key.teacherFull != "" {
			full := strings.ToLower(key.teacherFull)
			r.byTeacherFull[full] = append(r.byTeacherFull[full], i)
		}
		r.divisions[key.division] = true
	}

	return r
}

func (r *Roster) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Records)
}

func (r *Roster) HasDivision(division string) bool {
	return r != nil && r.divisions[strings.TrimSpace(division)]
}

// ByTeacherShortForm 返回使用该简称的所有记录
func (r *Roster) ByTeacherShortForm(short string) []domain.RosterRecord {
	if r == nil {
		return nil
	}
	return r.collect(r.byTeacherShort[strings.ToUpper(strings.TrimSpace(short))])
}

// ByTeacherFullName 返回该教师的所有记录，全称不区分大小写
func (r *Roster) ByTeacherFullName(full string) []domain.RosterRecord {
	if r == nil {
		return nil
	}
	return r.collect(r.byTeacherFull[strings.ToLower(strings.TrimSpace(full))])
}

// Teacher 在指定班级中按简称查找教师，找不到时退回到其他班级中的同名简称
func (r *Roster) Teacher(short string, division string) (domain.RosterRecord, bool) {
	records := r.ByTeacherShortForm(short)
	for _, rec := range records {
		if rec.Division == division {
			return rec, true
		}
	}
	if len(records) > 0 {
		return records[0], true
	}
	return domain.RosterRecord{}, false
}

// TeacherNames 返回该简称对应的所有不同的教师全称，按出现顺序
func (r *Roster) TeacherNames(short string) []string {
	var names []string
	for _, rec := range r.ByTeacherShortForm(short) {
		if rec.TeacherFullName != "" && !slices.Contains(names, rec.TeacherFullName) {
			names = append(names, rec.TeacherFullName)
		}
	}
	return names
}

func (r *Roster) collect(indexes []int) []domain.RosterRecord {
	records := make([]domain.RosterRecord, 0, len(indexes))
	for _, i := range indexes {
		records = append(records, r.Records[i])
	}
	return records
}
