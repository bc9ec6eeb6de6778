package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/class-timetable/backend/internal/domain"
	"github.com/wneessen/go-mail"
)

func sampleMessage() *domain.ExportMessage {
	g := domain.NewGrid([]string{"MON", "TUE"}, []string{"8:30 to 9:25", "9:25 to 10:20"})
	g.Cells[0][0] = "OOP\nAlice Brown (AB)\n---\nOS\nEF"
	g.Cells[0][1] = "MERGED_CELL"

	return &domain.ExportMessage{
		JobID: "job-1",
		To:    "someone@example.com",
		Key:   "H303",
		Kind:  "classroom",
		Grid:  g,
		Panel: []domain.CourseGroup{{
			CourseCode:      "2301101",
			CourseName:      "Object Oriented Programming",
			CourseShortForm: "OOP",
			Teachers: []domain.TeacherGroup{
				{TeacherName: "Alice Brown", TeacherShortForm: "AB", Divisions: []string{"SY-A", "SY-B"}},
			},
		}},
	}
}

func TestTitleAndFileName(t *testing.T) {
	msg := sampleMessage()
	assert.Equal(t, "课表导出 - 教室 H303", Title(msg))

	msg.Kind = "teacher"
	msg.Key = "Alice Brown"
	assert.Equal(t, "课表导出 - 教师 Alice Brown", Title(msg))

	assert.Equal(t, "teacher_Alice_Brown.csv", FileName("teacher", "Alice Brown"))
	assert.Equal(t, "classroom_H303.csv", FileName("classroom", "H303"))
}

func TestEmailTemplate(t *testing.T) {
	msg := sampleMessage()

	var buf bytes.Buffer
	err := emailTemplate.Execute(&buf, emailData{Title: Title(msg), Marker: "MERGED_CELL", Grid: msg.Grid, Panel: msg.Panel})
	require.NoError(t, err)

	html := buf.String()
	assert.Contains(t, html, "<th>8:30 to 9:25</th>")
	assert.Contains(t, html, "OOP<br>Alice Brown (AB)<br>---<br>OS<br>EF<br>")
	assert.Contains(t, html, `<td class="merged">MERGED_CELL</td>`)
	assert.Contains(t, html, "Object Oriented Programming (OOP)")
	assert.Contains(t, html, "Alice Brown (AB): SY-A, SY-B")
}

func TestBuildMessage(t *testing.T) {
	m, err := BuildMessage("timetable@example.com", "MERGED_CELL", sampleMessage())
	require.NoError(t, err)

	to := m.GetToString()
	assert.Equal(t, []string{"<someone@example.com>"}, to)
	assert.Equal(t, []string{"课表导出 - 教室 H303"}, m.GetGenHeader(mail.HeaderSubject))

	attachments := m.GetAttachments()
	require.Len(t, attachments, 1)
	assert.Equal(t, "classroom_H303.csv", attachments[0].Name)

	var buf bytes.Buffer
	_, err = m.WriteTo(&buf)
	require.NoError(t, err)
	assert.NotZero(t, buf.Len())
}

func TestBuildMessageRejectsInvalidInput(t *testing.T) {
	msg := sampleMessage()
	msg.Grid = nil
	_, err := BuildMessage("timetable@example.com", "MERGED_CELL", msg)
	assert.ErrorIs(t, err, ErrEmptyExport)

	msg = sampleMessage()
	msg.To = "not an address"
	_, err = BuildMessage("timetable@example.com", "MERGED_CELL", msg)
	assert.Error(t, err)
}
