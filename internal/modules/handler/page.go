package handler

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stuproj/projectshelf/internal/infra/flash"
	"github.com/stuproj/projectshelf/internal/modules/model"
	"github.com/stuproj/projectshelf/internal/modules/service"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// PageHandler serves the HTML pages and form posts of the catalogue.
type PageHandler struct {
	projects service.ProjectService
	history  service.HistoryService
	export   service.ExportService
	flash    flash.Store
	maxBytes int64
	log      *zap.Logger
	now      func() time.Time
}

func NewPageHandler(
	projects service.ProjectService,
	history service.HistoryService,
	export service.ExportService,
	fl flash.Store,
	maxBytes int64,
	log *zap.Logger,
) *PageHandler {
	return &PageHandler{
		projects: projects,
		history:  history,
		export:   export,
		flash:    fl,
		maxBytes: maxBytes,
		log:      log,
		now:      time.Now,
	}
}

type pageData struct {
	Title   string
	Flashes []flash.Message

	Years  []string
	Logs   []*model.HistoryLog
	Groups []service.YearGroup

	Status  int
	Message string
}

type AddProjectReq struct {
	Name        string                `form:"name"`
	Author1     string                `form:"author1"`
	Author2     string                `form:"author2"`
	Level       string                `form:"level"`
	Description string                `form:"description"`
	YearSelect  string                `form:"year_select"`
	YearCustom  string                `form:"year_custom"`
	GithubLink  string                `form:"github_link"`
	FileReport  *multipart.FileHeader `form:"file_report"`
	FileManual  *multipart.FileHeader `form:"file_manual"`
	FileCode    *multipart.FileHeader `form:"file_code"`
}

func (r AddProjectReq) input() service.CreateProjectInput {
	return service.CreateProjectInput{
		Name:        r.Name,
		Author1:     r.Author1,
		Author2:     r.Author2,
		Level:       r.Level,
		Description: r.Description,
		YearSelect:  r.YearSelect,
		YearCustom:  r.YearCustom,
		GithubLink:  r.GithubLink,
		Report:      r.FileReport,
		Manual:      r.FileManual,
		Code:        r.FileCode,
	}
}

// Home renders the add-project form with the most recent activity.
func (h *PageHandler) Home(c *gin.Context) {
	logs, err := h.history.Recent(c.Request.Context(), service.RecentHistoryLimit)
	if err != nil {
		h.renderError(c, http.StatusInternalServerError, err)
		return
	}
	c.HTML(http.StatusOK, "index.html", pageData{
		Title:   "Add project",
		Flashes: h.takeFlashes(c),
		Years:   service.YearOptions(h.now()),
		Logs:    logs,
	})
}

// ListProjects renders every project grouped by year, newest year first.
func (h *PageHandler) ListProjects(c *gin.Context) {
	groups, err := h.projects.ListGrouped(c.Request.Context())
	if err != nil {
		h.renderError(c, http.StatusInternalServerError, err)
		return
	}
	c.HTML(http.StatusOK, "projects.html", pageData{
		Title:   "Projects",
		Flashes: h.takeFlashes(c),
		Groups:  groups,
	})
}

// History renders the full audit log, newest first.
func (h *PageHandler) History(c *gin.Context) {
	logs, err := h.history.List(c.Request.Context())
	if err != nil {
		h.renderError(c, http.StatusInternalServerError, err)
		return
	}
	c.HTML(http.StatusOK, "history.html", pageData{
		Title:   "History",
		Flashes: h.takeFlashes(c),
		Logs:    logs,
	})
}

// AddProject always redirects back to the form. The outcome is reported
// through a flash message.
func (h *PageHandler) AddProject(c *gin.Context) {
	if h.maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes)
	}

	req := AddProjectReq{}
	err := c.ShouldBind(&req)
	if err == nil {
		var p *model.Project
		p, err = h.projects.Create(c.Request.Context(), req.input())
		if err == nil {
			h.log.Sugar().Debugw("project added", "project_id", p.ID)
		}
	}

	if err != nil {
		h.log.Sugar().Warnw("add project failed", "err", err)
		h.addFlash(c, flash.CategoryError, "An error occurred: "+err.Error())
	} else {
		h.addFlash(c, flash.CategorySuccess, "Project saved successfully!")
	}
	c.Redirect(http.StatusFound, "/")
}

// DeleteProject removes a project and returns to the project list.
func (h *PageHandler) DeleteProject(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		h.renderError(c, http.StatusNotFound, nil)
		return
	}

	if _, err := h.projects.Delete(c.Request.Context(), uint(id)); err != nil {
		if errors.Is(err, service.ErrProjectNotFound) {
			h.renderError(c, http.StatusNotFound, nil)
			return
		}
		h.renderError(c, http.StatusInternalServerError, err)
		return
	}

	h.addFlash(c, flash.CategorySuccess, "Project deleted")
	c.Redirect(http.StatusFound, "/projects")
}

// ExportXLSX downloads the catalogue as a spreadsheet.
func (h *PageHandler) ExportXLSX(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.export.WriteCatalogue(c.Request.Context(), &buf); err != nil {
		h.renderError(c, http.StatusInternalServerError, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="projects.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// NotFound is installed as the router fallback.
func (h *PageHandler) NotFound(c *gin.Context) {
	h.renderError(c, http.StatusNotFound, nil)
}

func (h *PageHandler) takeFlashes(c *gin.Context) []flash.Message {
	msgs, err := h.flash.Take(c)
	if err != nil {
		h.log.Sugar().Warnw("read flash messages", "err", err)
	}
	return msgs
}

func (h *PageHandler) addFlash(c *gin.Context, category, text string) {
	if err := h.flash.Add(c, category, text); err != nil {
		h.log.Sugar().Warnw("store flash message", "err", err)
	}
}

func (h *PageHandler) renderError(c *gin.Context, status int, err error) {
	if err != nil {
		h.log.Sugar().Errorw("request failed", "path", c.Request.URL.Path, "err", err)
	}
	renderStatus(c, status)
}

func renderStatus(c *gin.Context, status int) {
	text := http.StatusText(status)
	c.HTML(status, "error.html", pageData{
		Title:   text,
		Status:  status,
		Message: text,
	})
}
