package handler

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/kursadbilgin/registration-engine/internal/domain"
	"github.com/kursadbilgin/registration-engine/internal/observability"
	"github.com/kursadbilgin/registration-engine/internal/ratelimit"
	"go.uber.org/zap"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type RegistrationService interface {
	Register(ctx context.Context, req domain.RegistrationRequest, site domain.SiteConfig) (*domain.RegistrationResult, error)
}

// SiteConfigSource supplies the site configuration each registration runs
// against.
type SiteConfigSource interface {
	SiteConfig(ctx context.Context) (domain.SiteConfig, error)
}

type RegistrationHandler struct {
	service RegistrationService
	sites   SiteConfigSource
}

func NewRegistrationHandler(service RegistrationService, sites SiteConfigSource) (*RegistrationHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("registration service is required")
	}
	if sites == nil {
		return nil, fmt.Errorf("site config source is required")
	}
	return &RegistrationHandler{service: service, sites: sites}, nil
}

func RegisterRegistrationRoutes(
	router fiber.Router,
	service RegistrationService,
	sites SiteConfigSource,
	limiter ratelimit.RateLimiter,
	metrics *observability.Metrics,
	logger *zap.Logger,
) error {
	h, err := NewRegistrationHandler(service, sites)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Post("/registrations", RateLimitMiddleware(limiter, metrics, logger), h.Register)

	return nil
}

// Limits mirror the domain.Max*Length constants.
type registrationRequest struct {
	Surname         string `json:"surname" validate:"required,max=255"`
	Name            string `json:"name" validate:"required,max=255"`
	Email           string `json:"email" validate:"required,max=128"`
	Profile         string `json:"profile" validate:"required,max=32"`
	Address         string `json:"address" validate:"max=255"`
	City            string `json:"city" validate:"max=255"`
	State           string `json:"state" validate:"max=32"`
	Zip             string `json:"zip" validate:"max=16"`
	Country         string `json:"country" validate:"max=128"`
	Organisation    string `json:"org" validate:"max=255"`
	Kind            string `json:"kind" validate:"max=16"`
	Template        string `json:"template" validate:"max=128"`
	ProfileTemplate string `json:"profileTemplate" validate:"max=128"`
	Language        string `json:"language" validate:"omitempty,len=3"`
}

type registrationResponse struct {
	Surname  string `json:"surname"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Username string `json:"username,omitempty"`
	Result   string `json:"result,omitempty"`
}

func (h *RegistrationHandler) Register(c *fiber.Ctx) error {
	var req registrationRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return validationError(err)
	}

	ctx := c.UserContext()
	site, err := h.sites.SiteConfig(ctx)
	if err != nil {
		return err
	}

	result, err := h.service.Register(ctx, req.toDomain(), site)
	if err != nil {
		return err
	}

	return c.Status(statusForOutcome(result.Outcome)).JSON(toRegistrationResponse(result))
}

func (r registrationRequest) toDomain() domain.RegistrationRequest {
	return domain.RegistrationRequest{
		Surname:         r.Surname,
		Name:            r.Name,
		Email:           r.Email,
		Profile:         r.Profile,
		Address:         r.Address,
		City:            r.City,
		State:           r.State,
		Zip:             r.Zip,
		Country:         r.Country,
		Organisation:    r.Organisation,
		Kind:            r.Kind,
		Template:        r.Template,
		ProfileTemplate: r.ProfileTemplate,
		Language:        r.Language,
	}
}

func toRegistrationResponse(result *domain.RegistrationResult) registrationResponse {
	resp := registrationResponse{
		Surname: result.Surname,
		Name:    result.Name,
		Email:   result.Email,
	}
	if result.Succeeded() {
		resp.Username = result.Username
	} else {
		resp.Result = result.Outcome.String()
	}
	return resp
}

// statusForOutcome maps a terminal outcome to its HTTP status. A failed
// profile request still created the account.
func statusForOutcome(outcome domain.Outcome) int {
	switch outcome {
	case domain.OutcomeSuccess, domain.OutcomeProfileRequestFailed:
		return fiber.StatusCreated
	case domain.OutcomeDuplicateIdentity:
		return fiber.StatusConflict
	case domain.OutcomeDeliveryFailed:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			messages = append(messages, fe.Field()+" is required")
		case "len":
			messages = append(messages, fmt.Sprintf("%s must be %s characters", fe.Field(), fe.Param()))
		case "max":
			messages = append(messages, fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
		default:
			messages = append(messages, fe.Field()+" is invalid")
		}
	}
	return fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(messages, ", "))
}
