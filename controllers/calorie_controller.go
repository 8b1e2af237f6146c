package controllers

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/ye11ow-banana/main-be/logger"
	"github.com/ye11ow-banana/main-be/middlewares"
	"github.com/ye11ow-banana/main-be/repositories"
	"github.com/ye11ow-banana/main-be/services"
	"github.com/ye11ow-banana/main-be/utils"
)

const maxIngestImageBytes = 15 << 20

type ingester interface {
	Ingest(ctx context.Context, image []byte, mime, userText string) (*services.IngestResult, error)
}

type dayCreator interface {
	CreateDay(ctx context.Context, in services.DayCreation) error
}

type dayReader interface {
	List(ctx context.Context, userID uuid.UUID, f repositories.DayFilter, p utils.Pagination) (*services.DayPage, error)
	SortBys() []services.SortByOption
	DateRange(ctx context.Context, userID uuid.UUID) (*services.DateRange, error)
	UpdateMeasurements(ctx context.Context, userID, dayID uuid.UUID, in services.MeasurementUpdate) (*services.DayView, error)
}

type trendReader interface {
	Items(ctx context.Context, userID uuid.UUID, typ services.TrendType, start, end time.Time) ([]services.TrendItem, error)
}

type CalorieController struct {
	log      *logger.Logger
	ingest   ingester
	creation dayCreator
	days     dayReader
	trends   trendReader
}

func NewCalorieController(log *logger.Logger, ingest ingester, creation dayCreator, days dayReader, trends trendReader) *CalorieController {
	return &CalorieController{log: log, ingest: ingest, creation: creation, days: days, trends: trends}
}

// Ingest reads a multipart "image" (required) and optional "text" field.
func (cc *CalorieController) Ingest(c *gin.Context) {
	fh, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "image file is required", "field": "image"})
		return
	}
	if fh.Size > maxIngestImageBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image is too large"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		badRequest(c, err)
		return
	}
	data, err := io.ReadAll(f)
	_ = f.Close()
	if err != nil {
		badRequest(c, err)
		return
	}
	mtype := mimetype.Detect(data)
	if !mtype.Is("image/png") && !mtype.Is("image/jpeg") && !mtype.Is("image/webp") && !mtype.Is("image/gif") {
		respondError(c, cc.log, services.ErrUnsupportedImageType)
		return
	}

	res, err := cc.ingest.Ingest(c.Request.Context(), data, mtype.String(), c.PostForm("text"))
	if err != nil {
		respondError(c, cc.log, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type createDayRequest struct {
	Date               string                        `json:"date" binding:"required"`
	AdditionalCalories map[uuid.UUID]decimal.Decimal `json:"additional_calories"`
	Products           []services.DayProductInput    `json:"products" binding:"dive"`
}

func (cc *CalorieController) CreateDay(c *gin.Context) {
	var req createDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	date, err := utils.ParseDate(req.Date)
	if err != nil {
		respondError(c, cc.log, &services.ValidationError{Field: "date", Value: req.Date, Reason: "expected YYYY-MM-DD"})
		return
	}

	err = cc.creation.CreateDay(c.Request.Context(), services.DayCreation{
		Date:               date,
		AdditionalCalories: req.AdditionalCalories,
		Products:           req.Products,
	})
	if err != nil {
		respondError(c, cc.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "created"})
}

func (cc *CalorieController) ListDays(c *gin.Context) {
	user := middlewares.CurrentUser(c)
	start, err := optionalDate(c, "start_date")
	if err != nil {
		respondError(c, cc.log, err)
		return
	}
	end, err := optionalDate(c, "end_date")
	if err != nil {
		respondError(c, cc.log, err)
		return
	}

	page, err := cc.days.List(c.Request.Context(), user.ID, repositories.DayFilter{
		Start:  start,
		End:    end,
		SortBy: repositories.DaySortBy(c.Query("sort_by")),
	}, pagination(c))
	if err != nil {
		respondError(c, cc.log, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (cc *CalorieController) SortBys(c *gin.Context) {
	c.JSON(http.StatusOK, cc.days.SortBys())
}

type updateDayRequest struct {
	BodyWeight *decimal.Decimal `json:"body_weight"`
	BodyFat    *decimal.Decimal `json:"body_fat"`
}

func (cc *CalorieController) UpdateDay(c *gin.Context) {
	dayID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	var req updateDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	day, err := cc.days.UpdateMeasurements(c.Request.Context(), middlewares.CurrentUser(c).ID, dayID, services.MeasurementUpdate{
		BodyWeight: req.BodyWeight,
		BodyFat:    req.BodyFat,
	})
	if err != nil {
		respondError(c, cc.log, err)
		return
	}
	c.JSON(http.StatusOK, day)
}

func (cc *CalorieController) DateRange(c *gin.Context) {
	rng, err := cc.days.DateRange(c.Request.Context(), middlewares.CurrentUser(c).ID)
	if err != nil {
		respondError(c, cc.log, err)
		return
	}
	c.JSON(http.StatusOK, rng)
}

// TrendItems defaults a missing bound to the user's date range.
func (cc *CalorieController) TrendItems(c *gin.Context) {
	user := middlewares.CurrentUser(c)
	start, err := optionalDate(c, "start_date")
	if err != nil {
		respondError(c, cc.log, err)
		return
	}
	end, err := optionalDate(c, "end_date")
	if err != nil {
		respondError(c, cc.log, err)
		return
	}
	if start.IsZero() || end.IsZero() {
		rng, err := cc.days.DateRange(c.Request.Context(), user.ID)
		if err != nil {
			respondError(c, cc.log, err)
			return
		}
		if start.IsZero() {
			start, _ = utils.ParseDate(rng.StartDate)
		}
		if end.IsZero() {
			end, _ = utils.ParseDate(rng.EndDate)
		}
	}

	items, err := cc.trends.Items(c.Request.Context(), user.ID, services.TrendType(c.DefaultQuery("type", "weight")), start, end)
	if err != nil {
		respondError(c, cc.log, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func optionalDate(c *gin.Context, key string) (time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := utils.ParseDate(raw)
	if err != nil {
		return time.Time{}, &services.ValidationError{Field: key, Value: raw, Reason: "expected YYYY-MM-DD"}
	}
	return t, nil
}

func pagination(c *gin.Context) utils.Pagination {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", strconv.Itoa(utils.DefaultPerPage)))
	return utils.NewPagination(page, min(perPage, 100))
}
