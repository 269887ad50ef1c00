package http

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nutridiary/backend/internal/domain"
	"github.com/nutridiary/backend/internal/usecase"
	"github.com/rs/zerolog/log"
)

// maxImageBytes matches the largest inline image the classifier accepts
const maxImageBytes = 5 << 20

// Dependencies are the use cases served over HTTP. Recognition may be nil.
type Dependencies struct {
	Foods       *usecase.FoodService
	Diary       *usecase.DiaryService
	Goals       *usecase.GoalsService
	Recipes     *usecase.RecipeService
	Recognition *usecase.RecognitionService
	Units       *usecase.UnitConverter
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	foods       *usecase.FoodService
	diary       *usecase.DiaryService
	goals       *usecase.GoalsService
	recipes     *usecase.RecipeService
	recognition *usecase.RecognitionService
	units       *usecase.UnitConverter
}

// NewHandler creates a new HTTP handler
func NewHandler(deps Dependencies) *Handler {
	units := deps.Units
	if units == nil {
		units = usecase.NewUnitConverter(usecase.UnitConfig{})
	}
	return &Handler{
		foods:       deps.Foods,
		diary:       deps.Diary,
		goals:       deps.Goals,
		recipes:     deps.Recipes,
		recognition: deps.Recognition,
		units:       units,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "nutridiary-backend",
		"version": "1.0.0",
	})
}

// SearchFoods handles GET /foods/search?q=&limit=
func (h *Handler) SearchFoods(c *gin.Context) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.foods.Search(c.Request.Context(), c.Query("q"), domain.SearchOptions{
		Limit:   limit,
		OwnerID: ownerID(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetFoodByBarcode handles GET /foods/barcode/:code
func (h *Handler) GetFoodByBarcode(c *gin.Context) {
	food, err := h.foods.FindByBarcode(c.Request.Context(), c.Param("code"), ownerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, food)
}

// GetFood handles GET /foods/:id
func (h *Handler) GetFood(c *gin.Context) {
	food, err := h.foods.GetFood(c.Request.Context(), c.Param("id"), ownerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, food)
}

// CreateFood handles POST /foods
func (h *Handler) CreateFood(c *gin.Context) {
	var input domain.CustomFoodInput
	if !bindJSON(c, &input) {
		return
	}
	food, err := h.foods.CreateCustomFood(c.Request.Context(), ownerID(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, food)
}

// UpdateFood handles PUT /foods/:id
func (h *Handler) UpdateFood(c *gin.Context) {
	var input domain.CustomFoodInput
	if !bindJSON(c, &input) {
		return
	}
	food, err := h.foods.UpdateCustomFood(c.Request.Context(), ownerID(c), c.Param("id"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, food)
}

// DeleteFood handles DELETE /foods/:id
func (h *Handler) DeleteFood(c *gin.Context) {
	if err := h.foods.DeleteCustomFood(c.Request.Context(), ownerID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type convertRequest struct {
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit" binding:"required"`
	Food   string  `json:"food,omitempty"`
	FoodID string  `json:"foodId,omitempty"`
}

// ConvertUnits handles POST /units/convert
func (h *Handler) ConvertUnits(c *gin.Context) {
	var req convertRequest
	if !bindJSON(c, &req) {
		return
	}

	name := req.Food
	if req.FoodID != "" {
		food, err := h.foods.GetFood(c.Request.Context(), req.FoodID, ownerID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		name = strings.TrimSpace(food.Name + " " + food.NameLocalized)
	}

	unit := usecase.ParseUnit(req.Unit)
	c.JSON(http.StatusOK, gin.H{
		"amount": req.Amount,
		"unit":   unit,
		"grams":  h.units.ToGrams(req.Amount, unit, name),
	})
}

type labelsRequest struct {
	Predictions []domain.Prediction `json:"predictions" binding:"required,dive"`
}

// MapLabels handles POST /recognition/labels
func (h *Handler) MapLabels(c *gin.Context) {
	if h.recognition == nil {
		respondError(c, domain.ErrClassifierUnavailable)
		return
	}
	var req labelsRequest
	if !bindJSON(c, &req) {
		return
	}
	matches, err := h.recognition.MapLabels(c.Request.Context(), ownerID(c), req.Predictions)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"matches": matches})
}

type imageRequest struct {
	Image string `json:"image" binding:"required"`
}

// RecognizeImage handles POST /recognition/image. The image is either a
// multipart "image" file or a JSON base64 string, optionally a data URI.
func (h *Handler) RecognizeImage(c *gin.Context) {
	if h.recognition == nil {
		respondError(c, domain.ErrClassifierUnavailable)
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImageBytes*2)

	image, err := readImage(c)
	if err != nil {
		respondError(c, err)
		return
	}

	matches, err := h.recognition.RecognizeImage(c.Request.Context(), ownerID(c), image)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"matches": matches})
}

func readImage(c *gin.Context) ([]byte, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		header, err := c.FormFile("image")
		if err != nil {
			return nil, fmt.Errorf("%w: image file is required", domain.ErrInvalidRequest)
		}
		if header.Size > maxImageBytes {
			return nil, fmt.Errorf("%w: image larger than %d bytes", domain.ErrInvalidRequest, maxImageBytes)
		}
		f, err := header.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
		}
		defer f.Close()
		return io.ReadAll(f)
	}

	var req imageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}
	return decodeImage(req.Image)
}

// decodeImage accepts plain base64 or a data URI such as
// "data:image/jpeg;base64,...".
func decodeImage(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		comma := strings.IndexByte(s, ',')
		if comma < 0 || !strings.HasSuffix(s[:comma], ";base64") {
			return nil, fmt.Errorf("%w: malformed data URI", domain.ErrInvalidRequest)
		}
		s = s[comma+1:]
	}
	image, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: image is not valid base64", domain.ErrInvalidRequest)
	}
	if len(image) == 0 {
		return nil, fmt.Errorf("%w: image is empty", domain.ErrInvalidRequest)
	}
	if len(image) > maxImageBytes {
		return nil, fmt.Errorf("%w: image larger than %d bytes", domain.ErrInvalidRequest, maxImageBytes)
	}
	return image, nil
}

// AnalyzeRecipe handles POST /recipes/analyze
func (h *Handler) AnalyzeRecipe(c *gin.Context) {
	var input domain.RecipeInput
	if !bindJSON(c, &input) {
		return
	}
	analysis, err := h.recipes.Analyze(c.Request.Context(), ownerID(c), input.Ingredients)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, analysis)
}

// SaveRecipe handles POST /recipes/save
func (h *Handler) SaveRecipe(c *gin.Context) {
	var input domain.RecipeInput
	if !bindJSON(c, &input) {
		return
	}
	food, analysis, err := h.recipes.SaveAsCustomFood(c.Request.Context(), ownerID(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"food": food, "analysis": analysis})
}

// GetGoals handles GET /goals
func (h *Handler) GetGoals(c *gin.Context) {
	goals, err := h.goals.GetGoals(c.Request.Context(), ownerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, goals)
}

// SaveGoals handles PUT /goals
func (h *Handler) SaveGoals(c *gin.Context) {
	var input domain.DailyGoals
	if !bindJSON(c, &input) {
		return
	}
	goals, err := h.goals.SaveGoals(c.Request.Context(), ownerID(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, goals)
}

// GetDiaryDay handles GET /diary/:date
func (h *Handler) GetDiaryDay(c *gin.Context) {
	day, err := h.diary.GetDay(c.Request.Context(), ownerID(c), c.Param("date"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, day)
}

// AddDiaryEntry handles POST /diary/:date/entries
func (h *Handler) AddDiaryEntry(c *gin.Context) {
	var input domain.EntryInput
	if !bindJSON(c, &input) {
		return
	}
	entry, err := h.diary.AddEntry(c.Request.Context(), ownerID(c), c.Param("date"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// UpdateDiaryEntry handles PUT /entries/:id
func (h *Handler) UpdateDiaryEntry(c *gin.Context) {
	var update domain.EntryUpdate
	if !bindJSON(c, &update) {
		return
	}
	entry, err := h.diary.UpdateEntry(c.Request.Context(), ownerID(c), c.Param("id"), update)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// RemoveDiaryEntry handles DELETE /entries/:id
func (h *Handler) RemoveDiaryEntry(c *gin.Context) {
	if err := h.diary.RemoveEntry(c.Request.Context(), ownerID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ClearDiaryDay handles DELETE /diary/:date
func (h *Handler) ClearDiaryDay(c *gin.Context) {
	removed, err := h.diary.ClearDay(c.Request.Context(), ownerID(c), c.Param("date"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

// ClearDiaryMeal handles DELETE /diary/:date/:slot
func (h *Handler) ClearDiaryMeal(c *gin.Context) {
	slot := domain.MealSlot(c.Param("slot"))
	removed, err := h.diary.ClearMeal(c.Request.Context(), ownerID(c), c.Param("date"), slot)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

// DailyReport handles GET /reports/daily/:date
func (h *Handler) DailyReport(c *gin.Context) {
	report, err := h.goals.DailyReport(c.Request.Context(), ownerID(c), c.Param("date"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// PeriodReport handles GET /reports/period?from=&to=
func (h *Handler) PeriodReport(c *gin.Context) {
	report, err := h.goals.PeriodReport(c.Request.Context(), ownerID(c), c.Query("from"), c.Query("to"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return false
	}
	return true
}

func queryInt(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", domain.ErrInvalidRequest, key)
	}
	return v, nil
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrFoodNotFound), errors.Is(err, domain.ErrEntryNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrDuplicateBarcode):
		return http.StatusConflict
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrExternalUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrClassifierUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	_ = c.Error(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("component", "http").Str("path", c.FullPath()).Msg("request failed")
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
