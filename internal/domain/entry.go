package domain

// Entry 表示一节课在课表中占据的一个单元格，由 Grid Extractor 创建后不再修改
type Entry struct {
	Day            string `json:"day"`
	Slot           string `json:"slot"`
	SubDivision    string `json:"subDivision"`
	Subject        string `json:"subject"`
	Teacher        string `json:"teacher"`
	Classroom      string `json:"classroom"`
	SourceDivision string `json:"sourceDivision"`
	SpansNextSlot  bool   `json:"spansNextSlot"` // 实验课等连续占用两个时间段的课程只在起始时间段记录一次
}

// RosterRecord 是元数据块中一条 课程-教师-班级 的绑定
type RosterRecord struct {
	CourseCode       string `json:"courseCode"`
	CourseFullName   string `json:"courseFullName"`
	CourseShortForm  string `json:"courseShortForm"`
	TeacherFullName  string `json:"teacherFullName"`
	TeacherShortForm string `json:"teacherShortForm"`
	Division         string `json:"division"`
	Classroom        string `json:"classroom,omitempty"`
}

// SummaryRow 是导出用的扁平记录
type SummaryRow struct {
	CourseCode      string `json:"courseCode"`
	CourseName      string `json:"courseName"`
	TeacherInitials string `json:"teacherInitials"`
	TeacherName     string `json:"teacherName"`
	Division        string `json:"division"`
	Classroom       string `json:"classroom,omitempty"`
}
