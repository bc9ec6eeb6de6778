package workbook

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/sysu-ecnc-dev/class-timetable/backend/internal/config"
	"github.com/sysu-ecnc-dev/class-timetable/backend/internal/domain"
)

// Reader 把导出为 CSV 的工作表读取为 domain.Sheet。
// 每个 CSV 文件对应工作簿中的一张工作表（一个班级）
type Reader struct {
	Schedule *config.ScheduleConfig
	// MetaOffset 大于 0 时，元数据块从第 MetaOffset 行之后开始（相当于跳过 MetaOffset 行）；
	// 否则从课表之后第一个包含 "course code" 的行开始
	MetaOffset int
}

func NewReader(sc *config.ScheduleConfig, metaOffset int) *Reader {
	return &Reader{Schedule: sc, MetaOffset: metaOffset}
}

func (rd *Reader) ReadSheet(r io.Reader, division string) (*domain.Sheet, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("读取工作表 %s 失败: %w", division, err)
	}

	sheet := &domain.Sheet{
		Division: division,
		Slots:    []string{},
		Rows:     []domain.SheetRow{},
		Meta:     [][]string{},
	}

	header := -1
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		if label, ok := divisionLabel(row); ok && header < 0 {
			sheet.Division = label
			continue
		}
		if header < 0 && rd.isHeader(row) {
			header = i
			break
		}
	}
	if header < 0 {
		// 交给提取阶段报告缺少时间段列
		slog.Warn("工作表中没有找到课表表头", "division", sheet.Division)
		return sheet, nil
	}
	sheet.Slots = trimAll(rows[header][1:])

	meta := len(rows)
	if rd.MetaOffset > 0 {
		meta = max(min(rd.MetaOffset, len(rows)), header+1)
	} else {
		for i := header + 1; i < len(rows); i++ {
			if isMetaHeader(rows[i]) {
				meta = i
				break
			}
		}
	}

	for _, row := range rows[header+1 : meta] {
		if len(row) == 0 {
			continue
		}
		sheet.Rows = append(sheet.Rows, domain.SheetRow{
			Label: strings.TrimSpace(row[0]),
			Cells: slices.Clone(row[1:]),
		})
	}
	for _, row := range rows[meta:] {
		sheet.Meta = append(sheet.Meta, slices.Clone(row))
	}

	return sheet, nil
}

// ReadDir 按文件名顺序读取目录中所有的 CSV 工作表，文件名（去掉扩展名）作为默认的班级名
func (rd *Reader) ReadDir(dir string) ([]domain.Sheet, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("目录 %s 中没有 CSV 文件", dir)
	}
	slices.Sort(paths)

	sheets := make([]domain.Sheet, 0, len(paths))
	for _, path := range paths {
		sheet, err := rd.readFile(path)
		if err != nil {
			return nil, err
		}
		sheets = append(sheets, *sheet)
	}
	return sheets, nil
}

func (rd *Reader) readFile(path string) (*domain.Sheet, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	division := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return rd.ReadSheet(file, division)
}

// isHeader 判断一行是否为课表表头：至少有一个单元格是已知的时间段
func (rd *Reader) isHeader(row []string) bool {
	for _, cell := range row[1:] {
		if _, ok := rd.Schedule.SlotIndex(cell); ok {
			return true
		}
	}
	return false
}

func isMetaHeader(row []string) bool {
	for _, cell := range row {
		if strings.Contains(strings.ToLower(cell), "course code") {
			return true
		}
	}
	return false
}

// divisionLabel 识别 "Division: SY-A" 或者 "Division:,SY-A" 形式的班级名称行
func divisionLabel(row []string) (string, bool) {
	first := strings.TrimSpace(row[0])
	if !strings.HasPrefix(strings.ToLower(first), "division:") {
		return "", false
	}

	label := strings.TrimSpace(first[len("division:"):])
	if label == "" && len(row) > 1 {
		label = strings.TrimSpace(row[1])
	}
	return label, label != ""
}

func trimAll(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.TrimSpace(c)
	}
	return out
}

var ErrEmptyGrid = errors.New("课表为空")

// WriteGrid 以 CSV 格式输出课表：第一行为 Day 与各时间段，之后每天一行
func WriteGrid(w io.Writer, g *domain.Grid) error {
	if g == nil {
		return ErrEmptyGrid
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(append([]string{"Day"}, g.Slots...)); err != nil {
		return err
	}
	for i, day := range g.Days {
		if err := writer.Write(append([]string{day}, g.Cells[i]...)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

var summaryHeader = []string{"Course_Code", "Course_Name", "Teacher_Initials", "Teacher_Name", "Division", "Classroom"}

// WriteSummaryRows 以 CSV 格式输出扁平的 课程-教师-班级 记录
func WriteSummaryRows(w io.Writer, rows []domain.SummaryRow) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(summaryHeader); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{row.CourseCode, row.CourseName, row.TeacherInitials, row.TeacherName, row.Division, row.Classroom}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteSheet 以 ReadSheet 能读取的格式输出一张工作表：班级名称行、表头、课表、元数据块
func WriteSheet(w io.Writer, sheet *domain.Sheet) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"Division: " + sheet.Division}); err != nil {
		return err
	}
	if err := writer.Write(append([]string{"Day"}, sheet.Slots...)); err != nil {
		return err
	}
	for _, row := range sheet.Rows {
		if err := writer.Write(append([]string{row.Label}, row.Cells...)); err != nil {
			return err
		}
	}
	for _, row := range sheet.Meta {
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
