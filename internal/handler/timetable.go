package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/class-timetable/backend/internal/cache"
	"github.com/sysu-ecnc-dev/class-timetable/backend/internal/domain"
	"github.com/sysu-ecnc-dev/class-timetable/backend/internal/timetable"
)

const cacheTimeout = 2 * time.Second

func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	h.successResponse(w, r, "获取课表结构成功", h.schedule)
}

// extract 提取工作簿，相同内容的工作簿直接使用进程内缓存的结果
func (h *Handler) extract(sheets []domain.Sheet) (*timetable.WorkbookResult, string, error) {
	digest, err := cache.Digest(h.schedule, sheets)
	if err != nil {
		return nil, "", err
	}

	if result, ok := h.extractions.Get(digest); ok {
		return result, digest, nil
	}

	result, err := timetable.ExtractWorkbook(h.schedule, sheets)
	if err != nil {
		return nil, "", err
	}
	h.extractions.Add(digest, result)

	return result, digest, nil
}

// extractOrRespond 提取工作簿并在失败时写入响应，返回 false 表示已经响应
func (h *Handler) extractOrRespond(w http.ResponseWriter, r *http.Request, sheets []domain.Sheet) (*timetable.WorkbookResult, string, bool) {
	result, digest, err := h.extract(sheets)
	if err != nil {
		switch {
		case errors.Is(err, timetable.ErrEmptyGrid), errors.Is(err, timetable.ErrNoSlotColumns):
			h.badRequest(w, r, err)
		default:
			h.internalServerError(w, r, err)
		}
		return nil, "", false
	}
	return result, digest, true
}

func (h *Handler) CreateExtraction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Sheets []domain.Sheet `json:"sheets" validate:"required,min=1,dive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	result, _, ok := h.extractOrRespond(w, r, req.Sheets)
	if !ok {
		return
	}

	h.successResponse(w, r, "提取课表成功", result)
}

type indexRequest struct {
	Sheets    []domain.Sheet `json:"sheets" validate:"required,min=1,dive"`
	Key       string         `json:"key" validate:"required"`
	Kind      string         `json:"kind" validate:"required,oneof=classroom teacher"`
	UseRoster bool           `json:"useRoster"`
}

// indexResponse 中 diagnostics 是生成课表时的诊断，extractionDiagnostics 是提取工作簿时的诊断
type indexResponse struct {
	*timetable.CrossIndex
	Panel                 []domain.CourseGroup `json:"panel"`
	ExtractionDiagnostics []domain.Diagnostic  `json:"extractionDiagnostics"`
}

// buildIndex 生成索引课表，优先从 redis 中读取缓存
func (h *Handler) buildIndex(ctx context.Context, result *timetable.WorkbookResult, digest string, req indexRequest) (*indexResponse, error) {
	kind, err := timetable.ParseKeyKind(req.Kind)
	if err != nil {
		return nil, err
	}

	roster := result.Roster()
	var joined *timetable.Roster
	if req.UseRoster {
		joined = roster
	}

	cacheCtx, cancel := context.WithTimeout(ctx, cacheTimeout)
	defer cancel()

	idx, err := h.indexes.Get(cacheCtx, digest, kind, req.Key, req.UseRoster)
	if err != nil {
		// 缓存不可用时不影响结果，只记录日志
		slog.Warn("无法读取索引缓存", "error", err)
	}
	if idx == nil {
		idx, err = timetable.BuildIndex(h.schedule, result.Entries, joined, req.Key, kind)
		if err != nil {
			return nil, err
		}
		if err := h.indexes.Set(cacheCtx, digest, idx, req.UseRoster); err != nil {
			slog.Warn("无法写入索引缓存", "error", err)
		}
	}

	return &indexResponse{
		CrossIndex:            idx,
		Panel:                 timetable.Panel(idx.Matched, roster),
		ExtractionDiagnostics: result.Diagnostics,
	}, nil
}

func (h *Handler) CreateIndex(w http.ResponseWriter, r *http.Request) {
	var req indexRequest

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	result, digest, ok := h.extractOrRespond(w, r, req.Sheets)
	if !ok {
		return
	}

	resp, err := h.buildIndex(r.Context(), result, digest, req)
	if err != nil {
		switch {
		case errors.Is(err, timetable.ErrInvalidKey):
			h.badRequest(w, r, err)
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "生成课表成功", resp)
}

func (h *Handler) CreateSummary(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Sheets []domain.Sheet `json:"sheets" validate:"required,min=1,dive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	result, _, ok := h.extractOrRespond(w, r, req.Sheets)
	if !ok {
		return
	}

	roster := result.Roster()
	h.successResponse(w, r, "统计成功", map[string]any{
		"summary":     timetable.Summarize(result.Entries, roster),
		"rows":        timetable.SummaryRows(roster),
		"diagnostics": result.Diagnostics,
	})
}

func (h *Handler) CreateExport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		indexRequest
		To string `json:"to" validate:"required,email"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	result, digest, ok := h.extractOrRespond(w, r, req.Sheets)
	if !ok {
		return
	}

	resp, err := h.buildIndex(r.Context(), result, digest, req.indexRequest)
	if err != nil {
		switch {
		case errors.Is(err, timetable.ErrInvalidKey):
			h.badRequest(w, r, err)
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	msg := domain.ExportMessage{
		JobID: uuid.NewString(),
		To:    req.To,
		Key:   resp.Key,
		Kind:  string(resp.Kind),
		Grid:  resp.Grid,
		Panel: resp.Panel,
	}
	body, err := json.Marshal(msg)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 将导出任务发送到消息队列中，由导出 worker 渲染并发送邮件
	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	if err := h.exportChannel.PublishWithContext(
		ctx,
		"",
		h.config.RabbitMQ.ExportQueue,
		true,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    msg.JobID,
			Body:         body,
		},
	); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "导出任务已提交", map[string]string{"jobID": msg.JobID})
}
