package handler

import (
	"fmt"
	"io"
	"net/http"

	"AssetReport/internal/model"
	"AssetReport/internal/render"
	"AssetReport/internal/service"
	"AssetReport/pkg/common"
	"AssetReport/pkg/json"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	msgInvalidData     = "Invalid data format."
	msgStoreMissing    = "Config store not configured on server."
	pageStoreMissing   = "配置存储未配置，请检查 STORE_DRIVER 或 KV_REDIS_URL。"
	pageStoreReadError = "读取持仓配置失败，请稍后重试。"
	pageRenderError    = "生成报告失败，请稍后重试。"
)

// ReportHandler 报告页面与编辑接口
type ReportHandler struct {
	configs  *service.ConfigService
	reports  *service.ReportService
	renderer *render.Renderer
}

// NewReportHandler 创建报告处理器
func NewReportHandler(configs *service.ConfigService, reports *service.ReportService, renderer *render.Renderer) *ReportHandler {
	return &ReportHandler{
		configs:  configs,
		reports:  reports,
		renderer: renderer,
	}
}

// Page 完整报告页面
// GET / 以及所有未匹配的路径
func (h *ReportHandler) Page(c *gin.Context) {
	if !h.configs.Available() {
		h.errorPage(c, pageStoreMissing)
		return
	}

	cfg, err := h.configs.Load(c.Request.Context())
	if err != nil {
		logrus.Errorf("Failed to load config: %v", err)
		h.errorPage(c, pageStoreReadError)
		return
	}

	report := h.reports.BuildReport(c.Request.Context(), cfg)
	page, err := h.renderer.RenderPage(report)
	if err != nil {
		logrus.Errorf("Failed to render page: %v", err)
		h.errorPage(c, pageRenderError)
		return
	}

	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
}

// Update 整体替换持仓与负债并返回新的动态片段
// POST /api/update
func (h *ReportHandler) Update(c *gin.Context) {
	if !h.configs.Available() {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(msgStoreMissing))
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(msgInvalidData))
		return
	}

	cfg, err := decodeUpdate(body)
	if err != nil {
		logrus.Debugf("Rejected update: %v", err)
		c.JSON(model.ErrorCode(err), common.NewErrorResponse(msgInvalidData))
		return
	}

	if err := h.configs.Save(c.Request.Context(), cfg); err != nil {
		h.fail(c, model.ErrInternalError(fmt.Sprintf("save config: %v", err)))
		return
	}

	report := h.reports.BuildReport(c.Request.Context(), cfg)
	fragment, err := h.renderer.RenderFragment(report)
	if err != nil {
		h.fail(c, model.ErrInternalError(fmt.Sprintf("render fragment: %v", err)))
		return
	}

	c.JSON(http.StatusOK, model.UpdateResponse{
		Status:    "success",
		HTML:      fragment,
		Portfolio: cfg.Portfolio,
	})
}

// Health 健康检查
func (h *ReportHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// fail 记录错误详情，响应体只返回通用提示
func (h *ReportHandler) fail(c *gin.Context, err error) {
	logrus.Errorf("Update failed: %v", err)
	c.JSON(model.ErrorCode(err), common.NewFailureResponse())
}

func (h *ReportHandler) errorPage(c *gin.Context, message string) {
	page, err := h.renderer.RenderError(message)
	if err != nil {
		c.String(http.StatusInternalServerError, message)
		return
	}
	c.Data(http.StatusInternalServerError, "text/html; charset=utf-8", []byte(page))
}

// decodeUpdate 两个键都必须存在且不为 null
func decodeUpdate(body []byte) (*model.AssetConfig, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, model.ErrInvalidParameter("malformed body: " + err.Error())
	}

	rawPortfolio, rawLiabilities := fields["portfolio"], fields["liabilities"]
	if isAbsent(rawPortfolio) || isAbsent(rawLiabilities) {
		return nil, model.ErrInvalidParameter("portfolio and liabilities are required")
	}

	cfg := &model.AssetConfig{}
	if err := json.Unmarshal(rawPortfolio, &cfg.Portfolio); err != nil {
		return nil, model.ErrInvalidParameter(err.Error())
	}
	if err := json.Unmarshal(rawLiabilities, &cfg.Liabilities); err != nil {
		return nil, model.ErrInvalidParameter("liabilities must be a number")
	}
	if err := cfg.Portfolio.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func isAbsent(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}
