package domain

import "fmt"

type DiagnosticKind string

const (
	MalformedCell      DiagnosticKind = "MalformedCell"
	UnknownDayLabel    DiagnosticKind = "UnknownDayLabel"
	EmptyRequiredField DiagnosticKind = "EmptyRequiredField"
	NoRosterMatch      DiagnosticKind = "NoRosterMatch"
	AmbiguousKeyMatch  DiagnosticKind = "AmbiguousKeyMatch"
)

// Location 定位一个诊断信息对应的位置，不适用的字段留空
type Location struct {
	Division string `json:"division,omitempty"`
	Day      string `json:"day,omitempty"`
	Slot     string `json:"slot,omitempty"`
	Row      int    `json:"row,omitempty"` // 元数据块中的行号，从 1 开始
}

func (l Location) String() string {
	s := l.Division
	if l.Day != "" {
		s += "/" + l.Day
	}
	if l.Slot != "" {
		s += "/" + l.Slot
	}
	if l.Row > 0 {
		s += fmt.Sprintf("/row %d", l.Row)
	}
	return s
}

// Diagnostic 记录一次可恢复的错误，处理过程不会因此中断
type Diagnostic struct {
	Location Location       `json:"location"`
	Kind     DiagnosticKind `json:"kind"`
	Reason   string         `json:"reason"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s [%s] %s", d.Location, d.Kind, d.Reason)
}
