package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/inspikalu/sol-capsule/capsule"
	"github.com/inspikalu/sol-capsule/models"

	log "github.com/sirupsen/logrus"
)

type CapsuleCreator interface {
	Create(ctx context.Context, session capsule.Session, request models.CapsuleRequest) (*models.PipelineResult, error)
	Resume(ctx context.Context, session capsule.Session, runID string) (*models.PipelineResult, error)
	Store() capsule.RunStore
}

type CapsuleRegistry interface {
	ListByOwner(owner string) ([]models.Capsule, error)
	ListMarketplace() ([]models.Capsule, error)
	ToggleListing(address string, wallet string, price *float64) (*models.Capsule, error)
	Unlock(wallet string, address string) (*models.Capsule, error)
}

// HealthReporter returns the health of the running services.
type HealthReporter func() []models.ServiceHealth

type Handler struct {
	pipeline       CapsuleCreator
	registry       CapsuleRegistry
	session        capsule.Session
	health         HealthReporter
	maxUploadBytes int64
}

func NewHandler(pipeline CapsuleCreator, registry CapsuleRegistry, session capsule.Session, health HealthReporter, maxUploadBytes int64) *Handler {
	return &Handler{
		pipeline:       pipeline,
		registry:       registry,
		session:        session,
		health:         health,
		maxUploadBytes: maxUploadBytes,
	}
}

const multipartMemory = 32 << 20

func (h *Handler) readRequest(c *gin.Context) (models.CapsuleRequest, string, error) {
	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil {
		return models.CapsuleRequest{}, "", err
	}

	request := models.CapsuleRequest{
		Description: c.PostForm("description"),
		Tags:        c.PostForm("tags"),
	}

	if value := c.PostForm("isPublic"); value != "" {
		isPublic, err := strconv.ParseBool(value)
		if err != nil {
			return request, "", &capsule.PreconditionError{Message: "isPublic must be true or false"}
		}
		request.IsPublic = isPublic
	}

	if value := c.PostForm("releaseDate"); value != "" {
		releaseDate, err := time.ParseInLocation(models.ReleaseDateLayout, value, time.UTC)
		if err != nil {
			return request, "", &capsule.PreconditionError{Message: "releaseDate must be formatted as YYYY-MM-DD"}
		}
		request.ReleaseDate = releaseDate
	}

	header, err := c.FormFile("file")
	if err != nil && !errors.Is(err, http.ErrMissingFile) {
		return request, "", err
	}
	if err == nil {
		file, err := header.Open()
		if err != nil {
			return request, "", err
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			return request, "", err
		}
		request.File = &models.CapsuleFile{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		}
	}

	return request, c.PostForm("owner"), nil
}

func (h *Handler) CreateCapsule(c *gin.Context) {
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}

	request, owner, err := h.readRequest(c)
	if err != nil {
		log.Debug("[API] Error reading capsule request: ", err)
		var tooLarge *http.MaxBytesError
		var precondition *capsule.PreconditionError
		switch {
		case errors.As(err, &tooLarge):
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large"})
		case errors.As(err, &precondition):
			respondError(c, err)
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid capsule request: " + err.Error()})
		}
		return
	}

	if request.File != nil {
		if _, err := capsule.ValidateFile(request.File); err != nil {
			respondError(c, err)
			return
		}
	}

	session := h.session
	session.Owner = owner

	result, err := h.pipeline.Create(c.Request.Context(), session, request)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *Handler) ResumeRun(c *gin.Context) {
	result, err := h.pipeline.Resume(c.Request.Context(), h.session, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) GetRun(c *gin.Context) {
	run, err := h.pipeline.Store().Find(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}

func (h *Handler) ListCapsules(c *gin.Context) {
	capsules, err := h.registry.ListByOwner(c.Param("address"))
	if err != nil {
		log.Error("[API] Error listing capsules: ", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list capsules"})
		return
	}
	c.JSON(http.StatusOK, capsules)
}

type toggleListingRequest struct {
	WalletAddress string   `json:"walletAddress" binding:"required"`
	Price         *float64 `json:"price"`
}

func (h *Handler) ToggleListing(c *gin.Context) {
	var body toggleListingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "walletAddress is required"})
		return
	}

	updated, err := h.registry.ToggleListing(c.Param("address"), body.WalletAddress, body.Price)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) UnlockCapsule(c *gin.Context) {
	unlocked, err := h.registry.Unlock(c.Param("address"), c.Param("nft"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, unlocked)
}

func (h *Handler) Marketplace(c *gin.Context) {
	capsules, err := h.registry.ListMarketplace()
	if err != nil {
		log.Error("[API] Error listing marketplace: ", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list marketplace"})
		return
	}
	c.JSON(http.StatusOK, capsules)
}

func (h *Handler) HealthCheck(c *gin.Context) {
	services := []models.ServiceHealth{}
	if h.health != nil {
		services = append(services, h.health()...)
	}
	healthy := true
	for _, service := range services {
		healthy = healthy && service.Healthy
	}
	c.JSON(http.StatusOK, gin.H{"healthy": healthy, "services": services})
}
