package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/kursadbilgin/registration-engine/internal/domain"
)

type LanguageRepository interface {
	List(ctx context.Context) ([]domain.IsoLanguage, error)
	GetByCode(ctx context.Context, code string) (*domain.IsoLanguage, error)
}

type LanguageHandler struct {
	languages LanguageRepository
}

func NewLanguageHandler(languages LanguageRepository) (*LanguageHandler, error) {
	if languages == nil {
		return nil, fmt.Errorf("language repository is required")
	}
	return &LanguageHandler{languages: languages}, nil
}

func RegisterLanguageRoutes(router fiber.Router, languages LanguageRepository) error {
	h, err := NewLanguageHandler(languages)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Get("/languages", h.ListLanguages)
	v1.Get("/languages/:code", h.GetLanguage)

	return nil
}

type languageResponse struct {
	Code      string            `json:"code"`
	ShortCode string            `json:"shortCode"`
	Label     string            `json:"label"`
	Labels    map[string]string `json:"labels"`
}

// ListLanguages returns every ISO language. The label is given in the ui
// language named by ?lang=, English by default.
func (h *LanguageHandler) ListLanguages(c *fiber.Ctx) error {
	languages, err := h.languages.List(c.UserContext())
	if err != nil {
		return err
	}

	lang := uiLanguage(c)
	data := make([]languageResponse, 0, len(languages))
	for _, language := range languages {
		data = append(data, toLanguageResponse(language, lang))
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": data,
	})
}

func (h *LanguageHandler) GetLanguage(c *fiber.Ctx) error {
	code := strings.TrimSpace(c.Params("code"))
	if len(code) != 3 {
		return fmt.Errorf("%w: language code must have 3 letters", domain.ErrValidation)
	}

	language, err := h.languages.GetByCode(c.UserContext(), code)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(toLanguageResponse(*language, uiLanguage(c)))
}

func uiLanguage(c *fiber.Ctx) string {
	if lang := strings.ToLower(strings.TrimSpace(c.Query("lang"))); lang != "" {
		return lang
	}
	return domain.DefaultLanguage
}

func toLanguageResponse(language domain.IsoLanguage, lang string) languageResponse {
	labels := language.Labels
	if labels == nil {
		labels = map[string]string{}
	}
	return languageResponse{
		Code:      language.Code,
		ShortCode: language.ShortCode,
		Label:     language.Label(lang),
		Labels:    labels,
	}
}
