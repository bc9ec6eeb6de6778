package timetable

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/sysu-ecnc-dev/class-timetable/backend/internal/config"
	"github.com/sysu-ecnc-dev/class-timetable/backend/internal/domain"
)

// WorkbookResult 是整个工作簿的提取结果，各工作表的结果按工作表顺序拼接
type WorkbookResult struct {
	Entries     []domain.Entry        `json:"entries"`
	Records     []domain.RosterRecord `json:"records"`
	Diagnostics []domain.Diagnostic   `json:"diagnostics"`
}

// Roster 为这次提取结果建立元数据查找表
func (w *WorkbookResult) Roster() *Roster {
	return NewRoster(w.Records)
}

type sheetResult struct {
	extraction *Extraction
	records    []domain.RosterRecord
	diags      []domain.Diagnostic
	err        error
}

// ExtractWorkbook 对每张工作表独立地提取课程和元数据。
// 每张工作表在自己的 goroutine 中处理，结果只在最后按顺序拼接，工作表之间没有共享的可变状态
func ExtractWorkbook(sc *config.ScheduleConfig, sheets []domain.Sheet) (*WorkbookResult, error) {
	results := make([]sheetResult, len(sheets))

	wg := sync.WaitGroup{}
	for i := range sheets {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sheet := &sheets[i]

			extraction, err := Extract(sc, sheet)
			if err != nil {
				results[i].err = err
				return
			}
			records, diags := ResolveRoster(sheet.Meta, sheet.Division)

			results[i] = sheetResult{
				extraction: extraction,
				records:    records,
				diags:      diags,
			}
		}(i)
	}
	wg.Wait()

	out := &WorkbookResult{
		Entries:     []domain.Entry{},
		Records:     []domain.RosterRecord{},
		Diagnostics: []domain.Diagnostic{},
	}
	var errs []error
	for i, res := range results {
		if res.err != nil {
			errs = append(errs, res.err)
			continue
		}
		out.Entries = append(out.Entries, res.extraction.Entries...)
		out.Records = append(out.Records, res.records...)
		out.Diagnostics = append(out.Diagnostics, res.extraction.Diagnostics...)
		out.Diagnostics = append(out.Diagnostics, res.diags...)

		slog.Debug("已处理工作表", "division", sheets[i].Division, "entries", len(res.extraction.Entries), "records", len(res.records))
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return out, nil
}
