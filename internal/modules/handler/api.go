package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stuproj/projectshelf/internal/modules/model"
	"github.com/stuproj/projectshelf/internal/modules/serializer"
	"github.com/stuproj/projectshelf/internal/modules/service"
)

// APIHandler is the read-only JSON view of the catalogue.
type APIHandler struct {
	projects service.ProjectService
	history  service.HistoryService
}

func NewAPIHandler(projects service.ProjectService, history service.HistoryService) *APIHandler {
	return &APIHandler{projects: projects, history: history}
}

type ProjectIDReq struct {
	ID uint `uri:"id" binding:"required,min=1" example:"1"`
}

type ListHistoryReq struct {
	Limit int `form:"limit,default=0" json:"limit" binding:"min=0,max=1000" example:"20"`
}

// ListProjects godoc
//
//	@Summary		List projects
//	@Description	List every project grouped by year, newest year first
//	@Tags			project
//	@Produce		json
//	@Success		200	{object}	serializer.Response{data=[]service.YearGroup}
//	@Router			/projects [get]
func (h *APIHandler) ListProjects(c *gin.Context) {
	groups, err := h.projects.ListGrouped(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		return
	}
	if groups == nil {
		groups = []service.YearGroup{}
	}
	c.JSON(http.StatusOK, serializer.Response{Data: groups})
}

// GetProject godoc
//
//	@Summary		Get project
//	@Description	Get a single project by id
//	@Tags			project
//	@Produce		json
//	@Param			id	path		int	true	"Project ID"
//	@Success		200	{object}	serializer.Response{data=model.Project}
//	@Failure		404	{object}	serializer.Response
//	@Router			/projects/{id} [get]
func (h *APIHandler) GetProject(c *gin.Context) {
	req := ProjectIDReq{}
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	p, err := h.projects.Get(c.Request.Context(), req.ID)
	if err != nil {
		if errors.Is(err, service.ErrProjectNotFound) {
			c.JSON(http.StatusNotFound, serializer.NotFoundErr("project not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: p})
}

// ListHistory godoc
//
//	@Summary		List history
//	@Description	List audit log entries, newest first. A limit of 0 returns every entry.
//	@Tags			history
//	@Produce		json
//	@Param			limit	query		integer	false	"Maximum entries to return, default all. Max 1000."
//	@Success		200		{object}	serializer.Response{data=[]model.HistoryLog}
//	@Router			/history [get]
func (h *APIHandler) ListHistory(c *gin.Context) {
	req := ListHistoryReq{}
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	var (
		logs []*model.HistoryLog
		err  error
	)
	if req.Limit > 0 {
		logs, err = h.history.Recent(c.Request.Context(), req.Limit)
	} else {
		logs, err = h.history.List(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		return
	}
	if logs == nil {
		logs = []*model.HistoryLog{}
	}
	c.JSON(http.StatusOK, serializer.Response{Data: logs})
}
