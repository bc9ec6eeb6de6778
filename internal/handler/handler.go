package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/class-timetable/backend/internal/cache"
	"github.com/sysu-ecnc-dev/class-timetable/backend/internal/config"
)

// Publisher 是导出队列的发布端，*amqp.Channel 实现了这个接口
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type Handler struct {
	validate      *validator.Validate
	config        *config.Config
	schedule      *config.ScheduleConfig
	translator    ut.Translator
	exportChannel Publisher
	extractions   *cache.Extractions
	indexes       *cache.Indexes

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, sc *config.ScheduleConfig, exportCh Publisher, extractions *cache.Extractions, indexes *cache.Indexes) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:      validate,
		config:        cfg,
		schedule:      sc,
		translator:    trans,
		exportChannel: exportCh,
		extractions:   extractions,
		indexes:       indexes,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)
	h.Mux.Use(h.limitBody)

	h.Mux.Get("/healthz", h.Healthz)
	h.Mux.Get("/schedule", h.GetSchedule)

	h.Mux.Post("/extractions", h.CreateExtraction)
	h.Mux.Post("/indexes", h.CreateIndex)
	h.Mux.Post("/summaries", h.CreateSummary)

	// 没有配置导出队列时不提供导出功能
	if h.exportChannel != nil {
		h.Mux.Post("/exports", h.CreateExport)
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	h.successResponse(w, r, "服务正常", nil)
}
