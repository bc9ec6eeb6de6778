package export

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/sysu-ecnc-dev/class-timetable/backend/internal/domain"
	"github.com/sysu-ecnc-dev/class-timetable/backend/internal/workbook"
	"github.com/wneessen/go-mail"
)

//go:embed templates/*.html
var templates embed.FS

var ErrEmptyExport = errors.New("导出任务中没有课表")

var emailTemplate = template.Must(
	template.New("export_email.html").
		Funcs(template.FuncMap{
			"lines": func(s string) []string {
				if s == "" {
					return nil
				}
				return strings.Split(s, "\n")
			},
			"join": strings.Join,
		}).
		ParseFS(templates, "templates/export_email.html"),
)

type emailData struct {
	Title  string
	Marker string
	Grid   *domain.Grid
	Panel  []domain.CourseGroup
}

// Title 返回邮件标题，例如 "课表导出 - 教室 H303"
func Title(msg *domain.ExportMessage) string {
	kind := "教室"
	if msg.Kind == "teacher" {
		kind = "教师"
	}
	return fmt.Sprintf("课表导出 - %s %s", kind, msg.Key)
}

// FileName 返回索引课表的 CSV 文件名，例如 classroom_H303.csv
func FileName(kind string, key string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ' ', ':':
			return '_'
		}
		return r
	}, key)
	return fmt.Sprintf("%s_%s.csv", kind, name)
}

// BuildMessage 将导出任务渲染为邮件：正文为 HTML 课表与课程列表，附件为 CSV 课表
func BuildMessage(from string, marker string, msg *domain.ExportMessage) (*mail.Msg, error) {
	if msg.Grid == nil {
		return nil, ErrEmptyExport
	}

	m := mail.NewMsg()
	if err := m.From(from); err != nil {
		return nil, fmt.Errorf("无法设置邮件发件人: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("无法设置邮件收件人: %w", err)
	}

	title := Title(msg)
	m.Subject(title)

	data := emailData{Title: title, Marker: marker, Grid: msg.Grid, Panel: msg.Panel}
	if err := m.SetBodyHTMLTemplate(emailTemplate, data); err != nil {
		return nil, fmt.Errorf("无法设置邮件正文: %w", err)
	}

	var buf bytes.Buffer
	if err := workbook.WriteGrid(&buf, msg.Grid); err != nil {
		return nil, err
	}
	if err := m.AttachReader(FileName(msg.Kind, msg.Key), &buf); err != nil {
		return nil, fmt.Errorf("无法添加附件: %w", err)
	}

	return m, nil
}
