package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/sysu-ecnc-dev/class-timetable/backend/internal/config"
	"github.com/sysu-ecnc-dev/class-timetable/backend/internal/export"
	"github.com/sysu-ecnc-dev/class-timetable/backend/internal/seed"
	"github.com/sysu-ecnc-dev/class-timetable/backend/internal/timetable"
	"github.com/sysu-ecnc-dev/class-timetable/backend/internal/workbook"
)

var (
	sheetDir     string
	scheduleFile string
	metaOffset   int
	outPath      string

	indexKey  string
	indexKind string
	indexAll  bool
	useRoster bool

	seedDivisions int
	seedValue     int64
)

var rootCmd = &cobra.Command{
	Use:           "timetable",
	Short:         "班级课表提取与按教室、教师重新生成课表",
	SilenceUsage:  true,
}

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "提取所有工作表中的课程与元数据，以 JSON 输出",
	Args:  cobra.NoArgs,
	RunE:  runExtract,
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "按教室或教师生成课表，以 CSV 输出",
	Args:  cobra.NoArgs,
	RunE:  runIndex,
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "统计班级、课程、教师、教室，并输出扁平的元数据记录",
	Args:  cobra.NoArgs,
	RunE:  runSummary,
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "在 --dir 目录中生成随机的示例工作表",
	Args:  cobra.NoArgs,
	RunE:  runSeed,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&sheetDir, "dir", "d", ".", "存放工作表 CSV 文件的目录")
	rootCmd.PersistentFlags().StringVar(&scheduleFile, "schedule", "", "课表结构 YAML 文件，默认使用内置结构")
	rootCmd.PersistentFlags().IntVar(&metaOffset, "meta-offset", 0, "元数据块起始行，0 表示自动查找")
	rootCmd.PersistentFlags().StringVarP(&outPath, "out", "o", "", "输出文件（index --all 时为输出目录），默认输出到标准输出")

	indexCmd.Flags().StringVarP(&indexKey, "key", "k", "", "教室代码、教师简称或教师全称")
	indexCmd.Flags().StringVar(&indexKind, "kind", string(timetable.KeyClassroom), "索引类型：classroom 或 teacher")
	indexCmd.Flags().BoolVar(&indexAll, "all", false, "为每一个教室（或教师）生成课表")
	indexCmd.Flags().BoolVar(&useRoster, "roster", true, "使用元数据解析教师全称")

	seedCmd.Flags().IntVarP(&seedDivisions, "divisions", "n", 3, "要生成的班级数量")
	seedCmd.Flags().Int64Var(&seedValue, "seed", 1, "随机数种子")

	rootCmd.AddCommand(extractCmd, indexCmd, summaryCmd, seedCmd)
}

// loadWorkbook 读取目录中的所有工作表并提取
func loadWorkbook() (*config.ScheduleConfig, *timetable.WorkbookResult, error) {
	sc, err := config.LoadSchedule(scheduleFile)
	if err != nil {
		return nil, nil, err
	}

	sheets, err := workbook.NewReader(sc, metaOffset).ReadDir(sheetDir)
	if err != nil {
		return nil, nil, err
	}

	result, err := timetable.ExtractWorkbook(sc, sheets)
	if err != nil {
		return nil, nil, err
	}

	for _, d := range result.Diagnostics {
		slog.Warn("提取诊断", "kind", d.Kind, "location", d.Location.String(), "reason", d.Reason)
	}
	slog.Info("提取完成", "sheets", len(sheets), "entries", len(result.Entries), "records", len(result.Records))

	return sc, result, nil
}

// withOutput 打开输出目标，未指定 --out 时写到标准输出
func withOutput(path string, fn func(w io.Writer) error) error {
	if path == "" {
		return fn(os.Stdout)
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func runExtract(cmd *cobra.Command, args []string) error {
	_, result, err := loadWorkbook()
	if err != nil {
		return err
	}

	return withOutput(outPath, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	})
}

func runIndex(cmd *cobra.Command, args []string) error {
	kind, err := timetable.ParseKeyKind(indexKind)
	if err != nil {
		return err
	}
	if !indexAll && indexKey == "" {
		return fmt.Errorf("必须指定 --key 或 --all")
	}

	sc, result, err := loadWorkbook()
	if err != nil {
		return err
	}

	var roster *timetable.Roster
	if useRoster {
		roster = result.Roster()
	}

	if !indexAll {
		idx, err := timetable.BuildIndex(sc, result.Entries, roster, indexKey, kind)
		if err != nil {
			return err
		}
		logIndex(idx)
		return withOutput(outPath, func(w io.Writer) error {
			return workbook.WriteGrid(w, idx.Grid)
		})
	}

	indexes, err := timetable.BuildAll(sc, result.Entries, roster, kind)
	if err != nil {
		return err
	}

	dir := outPath
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, idx := range indexes {
		logIndex(idx)
		path := filepath.Join(dir, export.FileName(string(idx.Kind), idx.Key))
		if err := withOutput(path, func(w io.Writer) error {
			return workbook.WriteGrid(w, idx.Grid)
		}); err != nil {
			return err
		}
	}
	slog.Info("已生成全部课表", "kind", kind, "count", len(indexes), "dir", dir)

	return nil
}

func logIndex(idx *timetable.CrossIndex) {
	for _, d := range idx.Diagnostics {
		slog.Warn("索引诊断", "key", idx.Key, "kind", d.Kind, "location", d.Location.String(), "reason", d.Reason)
	}
	slog.Info("已生成课表", "kind", idx.Kind, "key", idx.Key, "matched", len(idx.Matched))
}

func runSummary(cmd *cobra.Command, args []string) error {
	_, result, err := loadWorkbook()
	if err != nil {
		return err
	}

	roster := result.Roster()
	summary := timetable.Summarize(result.Entries, roster)
	slog.Info("统计结果",
		"divisions", summary.DivisionCount,
		"courses", summary.CourseCount,
		"teachers", summary.TeacherCount,
		"classrooms", summary.ClassroomCount,
	)
	for _, course := range summary.Courses {
		for _, t := range course.Teachers {
			slog.Info("课程", "code", course.CourseCode, "course", course.Display(), "teacher", t.Display(), "divisions", t.Divisions)
		}
	}

	return withOutput(outPath, func(w io.Writer) error {
		return workbook.WriteSummaryRows(w, timetable.SummaryRows(roster))
	})
}

func runSeed(cmd *cobra.Command, args []string) error {
	if seedDivisions <= 0 {
		return fmt.Errorf("请输入合法的班级数量")
	}

	sc, err := config.LoadSchedule(scheduleFile)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(sheetDir, 0o755); err != nil {
		return err
	}

	sheets := seed.NewGenerator(sc, seedValue).Workbook(seedDivisions)
	for i := range sheets {
		path := filepath.Join(sheetDir, sheets[i].Division+".csv")
		if err := withOutput(path, func(w io.Writer) error {
			return workbook.WriteSheet(w, &sheets[i])
		}); err != nil {
			return err
		}
	}

	slog.Info("生成示例工作表成功", "count", len(sheets), "dir", sheetDir)
	return nil
}
