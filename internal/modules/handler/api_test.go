package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stuproj/projectshelf/internal/modules/model"
	"github.com/stuproj/projectshelf/internal/modules/service"
)

func setupAPIRouter(projects *MockProjectService, history *MockHistoryService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewAPIHandler(projects, history)

	r := gin.New()
	r.GET("/api/projects", h.ListProjects)
	r.GET("/api/projects/:id", h.GetProject)
	r.GET("/api/history", h.ListHistory)
	return r
}

func TestAPIHandler_ListProjects(t *testing.T) {
	tests := []struct {
		name         string
		setup        func(*MockProjectService)
		expectedCode int
		expectedLen  int
	}{
		{
			name: "grouped",
			setup: func(m *MockProjectService) {
				m.On("ListGrouped", mock.Anything).Return([]service.YearGroup{
					{Year: "2024", Projects: []*model.Project{{ID: 2}}},
					{Year: "2023", Projects: []*model.Project{{ID: 1}}},
				}, nil).Once()
			},
			expectedCode: http.StatusOK,
			expectedLen:  2,
		},
		{
			name: "empty catalogue",
			setup: func(m *MockProjectService) {
				m.On("ListGrouped", mock.Anything).Return(nil, nil).Once()
			},
			expectedCode: http.StatusOK,
		},
		{
			name: "database error",
			setup: func(m *MockProjectService) {
				m.On("ListGrouped", mock.Anything).Return(nil, errors.New("db down")).Once()
			},
			expectedCode: http.StatusInternalServerError,
			expectedLen:  -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			projects := &MockProjectService{}
			tt.setup(projects)
			router := setupAPIRouter(projects, &MockHistoryService{})

			w := serve(router, httptest.NewRequest(http.MethodGet, "/api/projects", nil))
			assert.Equal(t, tt.expectedCode, w.Code)

			if tt.expectedLen >= 0 {
				var resp struct {
					Data []service.YearGroup `json:"data"`
				}
				require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &resp))
				assert.NotNil(t, resp.Data)
				assert.Len(t, resp.Data, tt.expectedLen)
			}
			projects.AssertExpectations(t)
		})
	}
}

func TestAPIHandler_GetProject(t *testing.T) {
	tests := []struct {
		name         string
		id           string
		setup        func(*MockProjectService)
		expectedCode int
	}{
		{
			name: "found",
			id:   "7",
			setup: func(m *MockProjectService) {
				m.On("Get", mock.Anything, uint(7)).Return(&model.Project{ID: 7, Name: "Seven"}, nil).Once()
			},
			expectedCode: http.StatusOK,
		},
		{
			name: "missing",
			id:   "8",
			setup: func(m *MockProjectService) {
				m.On("Get", mock.Anything, uint(8)).Return(nil, service.ErrProjectNotFound).Once()
			},
			expectedCode: http.StatusNotFound,
		},
		{
			name:         "invalid id",
			id:           "seven",
			setup:        func(*MockProjectService) {},
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			projects := &MockProjectService{}
			tt.setup(projects)
			router := setupAPIRouter(projects, &MockHistoryService{})

			w := serve(router, httptest.NewRequest(http.MethodGet, "/api/projects/"+tt.id, nil))
			assert.Equal(t, tt.expectedCode, w.Code)

			if tt.expectedCode == http.StatusOK {
				var resp struct {
					Data model.Project `json:"data"`
				}
				require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, "Seven", resp.Data.Name)
			}
			projects.AssertExpectations(t)
		})
	}
}

func TestAPIHandler_ListHistory(t *testing.T) {
	tests := []struct {
		name         string
		query        string
		setup        func(*MockHistoryService)
		expectedCode int
	}{
		{
			name:  "all entries",
			query: "",
			setup: func(m *MockHistoryService) {
				m.On("List", mock.Anything).Return([]*model.HistoryLog{{ID: 1}}, nil).Once()
			},
			expectedCode: http.StatusOK,
		},
		{
			name:  "limited",
			query: "?limit=3",
			setup: func(m *MockHistoryService) {
				m.On("Recent", mock.Anything, 3).Return([]*model.HistoryLog{{ID: 1}}, nil).Once()
			},
			expectedCode: http.StatusOK,
		},
		{
			name:         "negative limit",
			query:        "?limit=-1",
			setup:        func(*MockHistoryService) {},
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			history := &MockHistoryService{}
			tt.setup(history)
			router := setupAPIRouter(&MockProjectService{}, history)

			w := serve(router, httptest.NewRequest(http.MethodGet, "/api/history"+tt.query, nil))
			assert.Equal(t, tt.expectedCode, w.Code)
			history.AssertExpectations(t)
		})
	}
}
