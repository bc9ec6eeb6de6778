package domain

// ExportMessage 是投递到导出队列中的消息，由导出 worker 渲染并通过邮件发送
type ExportMessage struct {
	JobID string        `json:"jobID"`
	To    string        `json:"to"`
	Key   string        `json:"key"`
	Kind  string        `json:"kind"`
	Grid  *Grid         `json:"grid"`
	Panel []CourseGroup `json:"panel"`
}

// CourseGroup 是按课程分组后的元数据，用于在导出的课表下方展示
type CourseGroup struct {
	CourseCode      string         `json:"courseCode"`
	CourseName      string         `json:"courseName"`
	CourseShortForm string         `json:"courseShortForm"`
	Teachers        []TeacherGroup `json:"teachers"`
}

type TeacherGroup struct {
	TeacherName      string   `json:"teacherName"`
	TeacherShortForm string   `json:"teacherShortForm"`
	Divisions        []string `json:"divisions"`
}

func (c CourseGroup) Display() string {
	if c.CourseShortForm == "" {
		return c.CourseName
	}
	return c.CourseName + " (" + c.CourseShortForm + ")"
}

func (t TeacherGroup) Display() string {
	if t.TeacherShortForm == "" {
		return t.TeacherName
	}
	return t.TeacherName + " (" + t.TeacherShortForm + ")"
}
