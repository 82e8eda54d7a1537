package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strconv"
	"strings"
	"time"

	"github.com/stuproj/projectshelf/internal/modules/model"
	"github.com/stuproj/projectshelf/internal/modules/repo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// YearOther selects the free-form year field.
const YearOther = "other"

// yearOptionSpan is how many past years the year selector offers.
const yearOptionSpan = 5

type ProjectService interface {
	Create(ctx context.Context, in CreateProjectInput) (*model.Project, error)
	// Delete returns the removed project.
	Delete(ctx context.Context, id uint) (*model.Project, error)
	Get(ctx context.Context, id uint) (*model.Project, error)
	List(ctx context.Context) ([]*model.Project, error)
	ListGrouped(ctx context.Context) ([]YearGroup, error)
}

type CreateProjectInput struct {
	Name        string
	Author1     string
	Author2     string
	Level       string
	Description string
	YearSelect  string
	YearCustom  string
	GithubLink  string

	Report *multipart.FileHeader
	Manual *multipart.FileHeader
	Code   *multipart.FileHeader
}

type YearGroup struct {
	Year     string           `json:"year"`
	Projects []*model.Project `json:"projects"`
}

type projectService struct {
	projects repo.ProjectRepo
	tx       repo.Transactor
	history  HistoryService
	intake   FileIntake
	log      *zap.Logger
}

func NewProjectService(projects repo.ProjectRepo, tx repo.Transactor, history HistoryService, intake FileIntake, log *zap.Logger) ProjectService {
	return &projectService{
		projects: projects,
		tx:       tx,
		history:  history,
		intake:   intake,
		log:      log,
	}
}

// Create stores the attachments, then persists the project together with
// its history entry. Files already written are discarded when a later step
// fails.
func (s *projectService) Create(ctx context.Context, in CreateProjectInput) (_ *model.Project, err error) {
	for _, f := range []struct{ field, value string }{
		{"name", in.Name},
		{"author1", in.Author1},
		{"year_select", in.YearSelect},
	} {
		if strings.TrimSpace(f.value) == "" {
			return nil, fmt.Errorf("%w: %s", ErrMissingField, f.field)
		}
	}
	year := ResolveYear(in.YearSelect, in.YearCustom)
	if year == "" {
		return nil, fmt.Errorf("%w: year_custom", ErrMissingField)
	}

	var stored []string
	defer func() {
		if err != nil && len(stored) > 0 {
			s.intake.Discard(context.WithoutCancel(ctx), stored...)
		}
	}()
	save := func(label string, fh *multipart.FileHeader) (string, error) {
		name, err := s.intake.Save(ctx, fh)
		if err != nil {
			return "", fmt.Errorf("save %s: %w", label, err)
		}
		if name != "" {
			stored = append(stored, name)
		}
		return name, nil
	}

	p := &model.Project{
		Name:        in.Name,
		Author1:     in.Author1,
		Author2:     in.Author2,
		Level:       in.Level,
		Description: in.Description,
		Year:        year,
	}
	if strings.TrimSpace(p.Author2) == "" {
		p.Author2 = model.DefaultAuthor2
	}

	if p.FileReport, err = save("report", in.Report); err != nil {
		return nil, err
	}
	if p.FileManual, err = save("manual", in.Manual); err != nil {
		return nil, err
	}
	if link := strings.TrimSpace(in.GithubLink); link != "" {
		p.FileCode = model.LinkRef(link)
	} else {
		code, err := save("code", in.Code)
		if err != nil {
			return nil, err
		}
		if code != "" {
			p.FileCode = model.FileRef(code)
		}
	}

	var entry *model.HistoryLog
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.projects.Create(ctx, p); err != nil {
			return fmt.Errorf("create project record: %w", err)
		}
		var err error
		entry, err = s.history.LogAction(ctx, model.ActionCreate, p)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("project created", zap.Uint("project_id", p.ID), zap.String("year", p.Year))
	s.history.Announce(ctx, entry)
	return p, nil
}

func (s *projectService) Delete(ctx context.Context, id uint) (*model.Project, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var entry *model.HistoryLog
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.projects.Delete(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProjectNotFound
			}
			return fmt.Errorf("delete project record: %w", err)
		}
		var err error
		entry, err = s.history.LogAction(ctx, model.ActionDelete, p)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("project deleted", zap.Uint("project_id", p.ID))
	s.history.Announce(ctx, entry)
	return p, nil
}

func (s *projectService) Get(ctx context.Context, id uint) (*model.Project, error) {
	p, err := s.projects.Get(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *projectService) List(ctx context.Context) ([]*model.Project, error) {
	return s.projects.ListByYearDesc(ctx)
}

func (s *projectService) ListGrouped(ctx context.Context) ([]YearGroup, error) {
	items, err := s.projects.ListByYearDesc(ctx)
	if err != nil {
		return nil, err
	}
	return GroupByYear(items), nil
}

// ResolveYear returns the trimmed custom year when the "other" option is
// selected and the selected option otherwise.
func ResolveYear(selected, custom string) string {
	if selected == YearOther {
		return strings.TrimSpace(custom)
	}
	return selected
}

// GroupByYear partitions projects by exact year string. Groups appear in
// first-seen order and keep the relative order of their members.
func GroupByYear(items []*model.Project) []YearGroup {
	var groups []YearGroup
	index := make(map[string]int)
	for _, p := range items {
		i, ok := index[p.Year]
		if !ok {
			i = len(groups)
			index[p.Year] = i
			groups = append(groups, YearGroup{Year: p.Year})
		}
		groups[i].Projects = append(groups[i].Projects, p)
	}
	return groups
}

// YearOptions lists the selectable years, newest first, from the year of now
// back yearOptionSpan years.
func YearOptions(now time.Time) []string {
	y := now.Year()
	out := make([]string, 0, yearOptionSpan+1)
	for i := 0; i <= yearOptionSpan; i++ {
		out = append(out, strconv.Itoa(y-i))
	}
	return out
}
