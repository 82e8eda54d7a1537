package service

import (
	"context"
	"fmt"
	"io"

	"github.com/stuproj/projectshelf/internal/modules/model"
	"github.com/stuproj/projectshelf/internal/modules/repo"
	"github.com/tealeg/xlsx/v3"
)

var exportHeader = []string{"ID", "Year", "Name", "Author 1", "Author 2", "Level", "Description", "Report", "Manual", "Code", "Created At"}

type ExportService interface {
	// WriteCatalogue writes every project as one xlsx sheet, ordered like
	// the grouped project list.
	WriteCatalogue(ctx context.Context, w io.Writer) error
}

type exportService struct{ projects repo.ProjectRepo }

func NewExportService(projects repo.ProjectRepo) ExportService {
	return &exportService{projects: projects}
}

func (s *exportService) WriteCatalogue(ctx context.Context, w io.Writer) error {
	items, err := s.projects.ListByYearDesc(ctx)
	if err != nil {
		return err
	}

	wb := xlsx.NewFile()
	sh, err := wb.AddSheet("Projects")
	if err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}

	header := sh.AddRow()
	for _, h := range exportHeader {
		header.AddCell().SetString(h)
	}
	for _, p := range items {
		row := sh.AddRow()
		row.AddCell().SetInt(int(p.ID))
		for _, v := range []string{
			p.Year, p.Name, p.Author1, p.Author2, p.Level, p.Description,
			p.FileReport, p.FileManual, codeCell(p.FileCode),
		} {
			row.AddCell().SetString(v)
		}
		row.AddCell().SetString(p.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	return wb.Write(w)
}

func codeCell(c model.CodeRef) string {
	if !c.IsSet() {
		return ""
	}
	return string(c.Kind) + ": " + c.Value
}
