package project

import (
	"context"
	"errors"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	appcfg "github.com/studyaid/core/internal/config"
	"github.com/studyaid/core/internal/models"
	"github.com/studyaid/core/internal/pkg/response"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const MaxTitleLength = 100

var (
	ErrProjectExists = errors.New("project with this id already exists")
	ErrTitleTooLong  = errors.New("title must be at most 100 characters")
)

// CreateProjectDTO is the /createPro body. Pointers let empty strings and a
// zero id through while still rejecting absent keys.
type CreateProjectDTO struct {
	ID            *int64  `json:"id"            binding:"required"`
	Title         *string `json:"title"         binding:"required"`
	StudyMaterial *string `json:"studyMaterial" binding:"required"`
}

type Service struct{ db *gorm.DB }

// NewService accepts a nil db; every call then fails with
// config.ErrDatabaseNotConfigured.
func NewService(db *gorm.DB) *Service { return &Service{db: db} }

func (s *Service) List(ctx context.Context) ([]models.StudyProjectModel, error) {
	if s.db == nil {
		return nil, appcfg.ErrDatabaseNotConfigured
	}
	items := []models.StudyProjectModel{}
	err := s.db.WithContext(ctx).Order("id ASC").Find(&items).Error
	return items, err
}

func (s *Service) Create(ctx context.Context, dto *CreateProjectDTO) (*models.StudyProjectModel, error) {
	if s.db == nil {
		return nil, appcfg.ErrDatabaseNotConfigured
	}
	if utf8.RuneCountInString(*dto.Title) > MaxTitleLength {
		return nil, ErrTitleTooLong
	}

	db := s.db.WithContext(ctx)
	var count int64
	if err := db.Model(&models.StudyProjectModel{}).Where("id = ?", *dto.ID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrProjectExists
	}

	p := models.StudyProjectModel{ID: *dto.ID, Title: *dto.Title, StudyMaterial: *dto.StudyMaterial}
	if err := db.Create(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrProjectExists
		}
		return nil, err
	}
	return &p, nil
}

// Import upserts rows by id and returns how many were written.
func (s *Service) Import(ctx context.Context, rows []models.StudyProjectModel) (int, error) {
	if s.db == nil {
		return 0, appcfg.ErrDatabaseNotConfigured
	}
	if len(rows) == 0 {
		return 0, nil
	}
	for _, r := range rows {
		if utf8.RuneCountInString(r.Title) > MaxTitleLength {
			return 0, ErrTitleTooLong
		}
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
		CreateInBatches(&rows, 100).Error
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

// RegisterRoutes mounts the project routes. createMW runs before create when non-nil.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, createMW gin.HandlerFunc) {
	rg.GET("/projects", h.list)
	if createMW != nil {
		rg.POST("/createPro", createMW, h.create)
	} else {
		rg.POST("/createPro", h.create)
	}
}

// GET /projects
func (h *Handler) list(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, items)
}

// POST /createPro
func (h *Handler) create(c *gin.Context) {
	var dto CreateProjectDTO
	if !response.BindJSON(c, &dto) {
		return
	}
	p, err := h.svc.Create(c.Request.Context(), &dto)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, p)
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, appcfg.ErrDatabaseNotConfigured):
		response.ServiceUnavailable(c, "Database not configured")
	case errors.Is(err, ErrProjectExists):
		response.Conflict(c, err.Error())
	case errors.Is(err, ErrTitleTooLong):
		response.BadRequest(c, err.Error())
	default:
		response.InternalError(c, err)
	}
}
