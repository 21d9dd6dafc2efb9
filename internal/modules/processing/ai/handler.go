package ai

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/studyaid/core/internal/pkg/response"
)

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

// RegisterRoutes mounts the generators. limitMW guards every route when non-nil.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, limitMW gin.HandlerFunc) {
	handlers := func(fn gin.HandlerFunc) []gin.HandlerFunc {
		if limitMW == nil {
			return []gin.HandlerFunc{fn}
		}
		return []gin.HandlerFunc{limitMW, fn}
	}

	rg.POST("/blurt", handlers(h.blurt)...)
	rg.POST("/flashcards", handlers(h.flashcards)...)
	rg.POST("/mnemonics", handlers(h.mnemonics)...)
}

// POST /blurt
func (h *Handler) blurt(c *gin.Context) {
	var dto blurtDTO
	if !response.BindJSON(c, &dto) {
		return
	}

	result, err := h.svc.Blurt(c.Request.Context(), dto.Value.StudyMaterial, *dto.Answer)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Result(c, result)
}

// POST /flashcards
func (h *Handler) flashcards(c *gin.Context) {
	var dto studyDTO
	if !response.BindJSON(c, &dto) {
		return
	}

	result, err := h.svc.Flashcards(c.Request.Context(), dto.Value.StudyMaterial)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Result(c, result)
}

// POST /mnemonics
func (h *Handler) mnemonics(c *gin.Context) {
	var dto studyDTO
	if !response.BindJSON(c, &dto) {
		return
	}

	title := DefaultMnemonicsTitle
	if dto.Value.Title != nil {
		title = *dto.Value.Title
	}
	result, err := h.svc.Mnemonics(c.Request.Context(), dto.Value.StudyMaterial, title)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Result(c, result)
}

func (h *Handler) fail(c *gin.Context, err error) {
	if errors.Is(err, ErrProviderNotConfigured) {
		response.ServiceUnavailable(c, err.Error())
		return
	}
	response.InternalError(c, err)
}
