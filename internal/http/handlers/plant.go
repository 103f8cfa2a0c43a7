package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/sprout-backend/internal/http/response"
	"github.com/yungbote/sprout-backend/internal/platform/apierr"
	"github.com/yungbote/sprout-backend/internal/platform/dbctx"
	"github.com/yungbote/sprout-backend/internal/services"
)

type PlantHandler struct {
	plantService services.PlantService
}

func NewPlantHandler(plantService services.PlantService) *PlantHandler {
	return &PlantHandler{plantService: plantService}
}

type surveyBody struct {
	Location       string   `json:"location"`
	SunlightHours  *float64 `json:"sunlightHours"`
	AvailableSpace string   `json:"availableSpace"`
	PlantName      string   `json:"plantName"`
}

func (b surveyBody) request() (services.SurveyRequest, error) {
	if b.SunlightHours == nil {
		return services.SurveyRequest{}, apierr.Validation("sunlightHours is required", nil)
	}
	return services.SurveyRequest{
		Location:       b.Location,
		SunlightHours:  *b.SunlightHours,
		AvailableSpace: b.AvailableSpace,
		PlantName:      b.PlantName,
	}, nil
}

func bindSurvey(c *gin.Context) (services.SurveyRequest, bool) {
	var body surveyBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, apierr.Validation("invalid request body", err))
		return services.SurveyRequest{}, false
	}
	req, err := body.request()
	if err != nil {
		response.RespondError(c, err)
		return services.SurveyRequest{}, false
	}
	return req, true
}

func dbcFrom(c *gin.Context) dbctx.Context {
	return dbctx.Context{Ctx: c.Request.Context()}
}

// POST /api/plants/recommendations
func (h *PlantHandler) Recommend(c *gin.Context) {
	req, ok := bindSurvey(c)
	if !ok {
		return
	}
	plants, err := h.plantService.Recommend(dbcFrom(c), req)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, "Recommendations generated", plants)
}

// POST /api/plants/custom
func (h *PlantHandler) CreateCustom(c *gin.Context) {
	req, ok := bindSurvey(c)
	if !ok {
		return
	}
	p, err := h.plantService.CreateCustom(dbcFrom(c), req)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, "Plant created", p)
}

// GET /api/plants
func (h *PlantHandler) List(c *gin.Context) {
	plants, err := h.plantService.List(dbcFrom(c))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, "Plants retrieved", plants)
}

// GET /api/plants/active
func (h *PlantHandler) ListActive(c *gin.Context) {
	plants, err := h.plantService.ListActive(dbcFrom(c))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, "Active plants retrieved", plants)
}

// GET /api/plants/:id
func (h *PlantHandler) Get(c *gin.Context) {
	p, err := h.plantService.Get(dbcFrom(c), c.Param("id"))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, "Plant retrieved", p)
}

// PATCH /api/plants/:id/activate
func (h *PlantHandler) ToggleActive(c *gin.Context) {
	p, err := h.plantService.ToggleActive(dbcFrom(c), c.Param("id"))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	msg := "Plant deactivated"
	if p.IsActive {
		msg = "Plant activated"
	}
	response.RespondOK(c, msg, p)
}

// PATCH /api/plants/:id/steps/:stepId/complete
func (h *PlantHandler) CompleteStep(c *gin.Context) {
	p, err := h.plantService.CompleteStep(dbcFrom(c), c.Param("id"), c.Param("stepId"))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, "Step completed", p)
}

// POST /api/plants/:id/diagnose
// body: { "imageBase64": "..." }
func (h *PlantHandler) Diagnose(c *gin.Context) {
	var body struct {
		ImageBase64 string `json:"imageBase64"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, apierr.Validation("invalid request body", err))
		return
	}
	out, err := h.plantService.Diagnose(dbcFrom(c), c.Param("id"), body.ImageBase64)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	msg := "Plant looks healthy"
	if out.Diagnosis != nil && out.Diagnosis.NeedsTreatment {
		msg = "Treatment steps added"
	}
	response.RespondOK(c, msg, out)
}

// GET /api/plants/:id/diagnoses
func (h *PlantHandler) ListDiagnoses(c *gin.Context) {
	out, err := h.plantService.ListDiagnoses(dbcFrom(c), c.Param("id"))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, "Diagnoses retrieved", out)
}
