package model

import (
	"time"
)

// CodeKind tells how Project.FileCode should be interpreted.
type CodeKind string

const (
	CodeNone CodeKind = ""
	CodeLink CodeKind = "link"
	CodeFile CodeKind = "file"
)

// CodeRef points at a project's source code: either an external link or a
// file stored under the upload store.
type CodeRef struct {
	Kind  CodeKind `gorm:"type:varchar(10)" json:"kind,omitempty"`
	Value string   `gorm:"type:varchar(500)" json:"value,omitempty"`
}

func LinkRef(url string) CodeRef        { return CodeRef{Kind: CodeLink, Value: url} }
func FileRef(storedName string) CodeRef { return CodeRef{Kind: CodeFile, Value: storedName} }

func (c CodeRef) IsSet() bool  { return c.Kind != CodeNone && c.Value != "" }
func (c CodeRef) IsLink() bool { return c.Kind == CodeLink }
func (c CodeRef) IsFile() bool { return c.Kind == CodeFile }

// DefaultAuthor2 is stored when no second author is given.
const DefaultAuthor2 = "-"

type Project struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"type:varchar(200);not null" json:"name"`
	Author1     string `gorm:"type:varchar(100);not null" json:"author1"`
	Author2     string `gorm:"type:varchar(100)" json:"author2"`
	Level       string `gorm:"type:varchar(50)" json:"level"`
	Description string `gorm:"type:text" json:"description"`
	Year        string `gorm:"type:varchar(10);not null;index" json:"year"`

	FileReport string  `gorm:"type:varchar(200)" json:"file_report,omitempty"`
	FileManual string  `gorm:"type:varchar(200)" json:"file_manual,omitempty"`
	FileCode   CodeRef `gorm:"embedded;embeddedPrefix:file_code_" json:"file_code"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Project) TableName() string { return "projects" }
