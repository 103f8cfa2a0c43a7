package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/sprout-backend/internal/data/repos"
	"github.com/yungbote/sprout-backend/internal/domain/plant"
	types "github.com/yungbote/sprout-backend/internal/domain/user"
	"github.com/yungbote/sprout-backend/internal/modules/garden/growthplan"
	"github.com/yungbote/sprout-backend/internal/modules/garden/ownership"
	"github.com/yungbote/sprout-backend/internal/modules/garden/prompts"
	"github.com/yungbote/sprout-backend/internal/modules/garden/ranking"
	"github.com/yungbote/sprout-backend/internal/modules/garden/sequence"
	"github.com/yungbote/sprout-backend/internal/observability"
	"github.com/yungbote/sprout-backend/internal/platform/apierr"
	"github.com/yungbote/sprout-backend/internal/platform/ctxutil"
	"github.com/yungbote/sprout-backend/internal/platform/dbctx"
	"github.com/yungbote/sprout-backend/internal/platform/gcp"
	"github.com/yungbote/sprout-backend/internal/platform/llm"
	"github.com/yungbote/sprout-backend/internal/platform/logger"
	"github.com/yungbote/sprout-backend/internal/realtime/bus"
)

const maxSunlightHours = 24

// SurveyRequest is the body of a recommendation request. PlantName is only used
// for custom plans.
type SurveyRequest struct {
	Location       string  `json:"location"`
	SunlightHours  float64 `json:"sunlightHours"`
	AvailableSpace string  `json:"availableSpace"`
	PlantName      string  `json:"plantName,omitempty"`
}

// DiagnosisOutcome is the result of a photo diagnosis: the stored record and the
// plant with any remediation steps merged in.
type DiagnosisOutcome struct {
	Diagnosis *plant.Diagnosis `json:"diagnosis"`
	Plant     *plant.Plant     `json:"plant"`
}

type PlantService interface {
	Recommend(dbc dbctx.Context, req SurveyRequest) ([]*plant.Plant, error)
	CreateCustom(dbc dbctx.Context, req SurveyRequest) (*plant.Plant, error)
	List(dbc dbctx.Context) ([]*plant.Plant, error)
	ListActive(dbc dbctx.Context) ([]*plant.Plant, error)
	Get(dbc dbctx.Context, rawID string) (*plant.Plant, error)
	ToggleActive(dbc dbctx.Context, rawID string) (*plant.Plant, error)
	CompleteStep(dbc dbctx.Context, rawID, rawStepID string) (*plant.Plant, error)
	Diagnose(dbc dbctx.Context, rawID, imageBase64 string) (*DiagnosisOutcome, error)
	ListDiagnoses(dbc dbctx.Context, rawID string) ([]*plant.Diagnosis, error)
}

// PlantServiceDeps wires the plant service. Detector, Archive, Events and Metrics
// are optional.
type PlantServiceDeps struct {
	DB        *gorm.DB
	Log       *logger.Logger
	Repos     repos.Set
	Generator llm.Generator
	Prompts   *prompts.Catalog
	Detector  gcp.PlantDetector
	Archive   gcp.ImageArchive
	Events    bus.Bus
	Metrics   *observability.Metrics

	RecommendationLimit int
	RemediationPolicy   sequence.Policy
}

type plantService struct {
	db       *gorm.DB
	log      *logger.Logger
	repos    repos.Set
	guard    *ownership.Guard
	gen      llm.Generator
	prompts  *prompts.Catalog
	detector gcp.PlantDetector
	archive  gcp.ImageArchive
	events   bus.Bus
	metrics  *observability.Metrics
	limit    int
	policy   sequence.Policy
	clock    func() time.Time
}

func NewPlantService(deps PlantServiceDeps) (PlantService, error) {
	if deps.DB == nil || deps.Generator == nil || deps.Prompts == nil {
		return nil, fmt.Errorf("plant service requires a db, a generator and a prompt catalog")
	}
	limit := deps.RecommendationLimit
	if limit <= 0 || limit > ranking.MaxResults {
		limit = ranking.MaxResults
	}
	policy := deps.RemediationPolicy
	if policy == "" {
		policy = sequence.PolicyHead
	}
	return &plantService{
		db:       deps.DB,
		log:      deps.Log.With("service", "PlantService"),
		repos:    deps.Repos,
		guard:    ownership.NewGuard(plantMembership{plants: deps.Repos.Plant, userPlant: deps.Repos.UserPlant}),
		gen:      deps.Generator,
		prompts:  deps.Prompts,
		detector: deps.Detector,
		archive:  deps.Archive,
		events:   deps.Events,
		metrics:  deps.Metrics,
		limit:    limit,
		policy:   policy,
		clock:    time.Now,
	}, nil
}

func (s *plantService) Recommend(dbc dbctx.Context, req SurveyRequest) ([]*plant.Plant, error) {
	rd, err := principal(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	survey, err := validateSurvey(req)
	if err != nil {
		return nil, err
	}

	prompt, err := s.prompts.Render(prompts.Recommendations, prompts.SurveyInput{
		Location:       survey.Location,
		SunlightHours:  survey.SunlightHours,
		AvailableSpace: survey.AvailableSpace,
		Limit:          s.limit,
	})
	if err != nil {
		return nil, apierr.Internal("could not build the recommendation prompt", err)
	}
	raw, err := s.generate(dbc.Ctx, llm.Request{Kind: prompts.Recommendations, System: prompt.System, User: prompt.User, JSON: true})
	if err != nil {
		return nil, err
	}
	res, err := growthplan.Parse(raw, growthplan.ShapeArray)
	if err != nil {
		return nil, s.parseFailure(prompts.Recommendations, err)
	}
	if len(res.Candidates) == 0 {
		return nil, s.parseFailure(prompts.Recommendations, &growthplan.ParseError{Kind: growthplan.ErrMissingField, Field: "plants"})
	}

	ranked := ranking.Rank(res.Candidates, func(c growthplan.Candidate) string { return c.SuccessRate }, s.limit)
	plants, err := materialize(dbc.Ctx, ranked)
	if err != nil {
		return nil, apierr.Internal("could not prepare plant plans", err)
	}

	var owner *types.User
	err = s.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		txc := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}
		u, err := s.repos.User.EnsureByExternalID(txc, rd.ExternalID, emailPtr(rd.Email))
		if err != nil {
			return fmt.Errorf("ensure user: %w", err)
		}
		if err := s.repos.User.UpdateSurvey(txc, u.ID, survey); err != nil {
			return fmt.Errorf("update survey: %w", err)
		}
		if _, err := s.repos.Plant.Create(txc, plants); err != nil {
			return fmt.Errorf("create plants: %w", err)
		}
		if err := s.repos.UserPlant.Append(txc, u.ID, plantIDs(plants)); err != nil {
			return fmt.Errorf("link plants: %w", err)
		}
		owner = u
		return nil
	})
	if err != nil {
		s.log.Error("persist recommendations failed", "external_id", rd.ExternalID, "error", err)
		return nil, apierr.Internal("could not save recommendations", err)
	}

	s.metrics.AddPlantsCreated(plant.SourceRecommendation, len(plants))
	s.publish(dbc.Ctx, bus.EventPlantsRecommended, owner.ID, plants, map[string]any{"count": len(plants)})
	return plants, nil
}

func (s *plantService) CreateCustom(dbc dbctx.Context, req SurveyRequest) (*plant.Plant, error) {
	rd, err := principal(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	survey, err := validateSurvey(req)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.PlantName)
	if name == "" {
		return nil, apierr.Validation("plantName is required", nil)
	}

	prompt, err := s.prompts.Render(prompts.Custom, prompts.SurveyInput{
		Location:       survey.Location,
		SunlightHours:  survey.SunlightHours,
		AvailableSpace: survey.AvailableSpace,
		PlantName:      name,
	})
	if err != nil {
		return nil, apierr.Internal("could not build the plant prompt", err)
	}
	raw, err := s.generate(dbc.Ctx, llm.Request{Kind: prompts.Custom, System: prompt.System, User: prompt.User, JSON: true})
	if err != nil {
		return nil, err
	}
	res, err := growthplan.Parse(raw, growthplan.ShapeObject)
	if err != nil {
		return nil, s.parseFailure(prompts.Custom, err)
	}
	if res.Rejected {
		s.log.Info("custom plant rejected", "plant_name", name, "reason", res.RejectionReason)
		return nil, apierr.Rejected(res.RejectionReason)
	}

	c := res.Candidates[0]
	p := newPlant(c, plant.SourceCustom)
	p.Location = &survey.Location
	p.SunlightHours = &survey.SunlightHours
	p.AvailableSpace = &survey.AvailableSpace

	var owner *types.User
	err = s.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		txc := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}
		u, err := s.repos.User.EnsureByExternalID(txc, rd.ExternalID, emailPtr(rd.Email))
		if err != nil {
			return fmt.Errorf("ensure user: %w", err)
		}
		if _, err := s.repos.Plant.Create(txc, []*plant.Plant{p}); err != nil {
			return fmt.Errorf("create plant: %w", err)
		}
		if err := s.repos.UserPlant.Append(txc, u.ID, []uuid.UUID{p.ID}); err != nil {
			return fmt.Errorf("link plant: %w", err)
		}
		owner = u
		return nil
	})
	if err != nil {
		s.log.Error("persist custom plant failed", "external_id", rd.ExternalID, "error", err)
		return nil, apierr.Internal("could not save the plant", err)
	}

	s.metrics.AddPlantsCreated(plant.SourceCustom, 1)
	s.publish(dbc.Ctx, bus.EventPlantCreated, owner.ID, []*plant.Plant{p}, map[string]any{"name": p.Name})
	return p, nil
}

func (s *plantService) List(dbc dbctx.Context) ([]*plant.Plant, error) {
	return s.listOwned(dbc, false)
}

func (s *plantService) ListActive(dbc dbctx.Context) ([]*plant.Plant, error) {
	return s.listOwned(dbc, true)
}

func (s *plantService) listOwned(dbc dbctx.Context, activeOnly bool) ([]*plant.Plant, error) {
	rd, err := principal(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	u, err := s.repos.User.GetByExternalID(dbc, rd.ExternalID)
	if err != nil {
		return nil, apierr.Internal("could not load plants", err)
	}
	if u == nil {
		return []*plant.Plant{}, nil
	}
	plants, err := s.repos.Plant.ListByUser(dbc, u.ID, activeOnly)
	if err != nil {
		return nil, apierr.Internal("could not load plants", err)
	}
	return plants, nil
}

func (s *plantService) Get(dbc dbctx.Context, rawID string) (*plant.Plant, error) {
	id, err := s.authorize(dbc, rawID)
	if err != nil {
		return nil, err
	}
	p, err := s.repos.Plant.GetByID(dbc, id)
	if err != nil {
		return nil, apierr.Internal("could not load plant", err)
	}
	if p == nil {
		return nil, apierr.NotFound("plant not found")
	}
	return p, nil
}

func (s *plantService) ToggleActive(dbc dbctx.Context, rawID string) (*plant.Plant, error) {
	id, err := s.authorize(dbc, rawID)
	if err != nil {
		return nil, err
	}
	var out *plant.Plant
	err = s.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		txc := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}
		p, err := s.repos.Plant.GetByIDForUpdate(txc, id)
		if err != nil {
			return err
		}
		if p == nil {
			return apierr.NotFound("plant not found")
		}
		p.IsActive = !p.IsActive
		if err := s.repos.Plant.SetActive(txc, id, p.IsActive); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, s.mutationError("toggle active", id, err)
	}
	s.publishForOwner(dbc, bus.EventPlantActivated, out, map[string]any{"isActive": out.IsActive})
	return out, nil
}

func (s *plantService) CompleteStep(dbc dbctx.Context, rawID, rawStepID string) (*plant.Plant, error) {
	id, err := s.authorize(dbc, rawID)
	if err != nil {
		return nil, err
	}
	stepID, err := strconv.Atoi(strings.TrimSpace(rawStepID))
	if err != nil || stepID <= 0 {
		return nil, apierr.Validation("stepId must be a positive integer", err)
	}

	var (
		out     *plant.Plant
		changed bool
	)
	err = s.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		txc := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}
		p, err := s.repos.Plant.GetByIDForUpdate(txc, id)
		if err != nil {
			return err
		}
		if p == nil {
			return apierr.NotFound("plant not found")
		}
		steps, ch, err := sequence.Complete(p.Steps, stepID)
		if errors.Is(err, sequence.ErrStepNotFound) {
			return apierr.NotFound("step not found")
		}
		if err != nil {
			return err
		}
		if ch {
			if err := s.repos.Plant.UpdateSteps(txc, id, steps); err != nil {
				return err
			}
		}
		p.Steps = steps
		out, changed = p, ch
		return nil
	})
	if err != nil {
		return nil, s.mutationError("complete step", id, err)
	}
	if changed {
		s.publishForOwner(dbc, bus.EventStepCompleted, out, map[string]any{"stepId": stepID})
	}
	return out, nil
}

func (s *plantService) ListDiagnoses(dbc dbctx.Context, rawID string) ([]*plant.Diagnosis, error) {
	id, err := s.authorize(dbc, rawID)
	if err != nil {
		return nil, err
	}
	out, err := s.repos.Diagnosis.ListByPlant(dbc, id)
	if err != nil {
		return nil, apierr.Internal("could not load diagnoses", err)
	}
	return out, nil
}

func (s *plantService) authorize(dbc dbctx.Context, rawID string) (uuid.UUID, error) {
	externalID := ""
	if rd := ctxutil.GetRequestData(dbc.Ctx); rd != nil {
		externalID = rd.ExternalID
	}
	return s.guard.Authorize(dbc, externalID, rawID)
}

func (s *plantService) generate(ctx context.Context, req llm.Request) (string, error) {
	raw, err := s.gen.Generate(ctx, req)
	if err == nil {
		return raw, nil
	}
	switch {
	case errors.Is(err, llm.ErrUpstreamAuth):
		return "", apierr.UpstreamAuth(err)
	case errors.Is(err, llm.ErrEmptyResponse):
		s.metrics.IncParseFailure("empty_response")
		return "", apierr.UpstreamParse(err)
	default:
		return "", apierr.Internal("the AI provider request failed", err)
	}
}

func (s *plantService) parseFailure(kind string, err error) error {
	s.metrics.IncParseFailure(parseKind(err))
	s.log.Warn("unusable generator response", "kind", kind, "error", err)
	return apierr.UpstreamParse(err)
}

func (s *plantService) mutationError(op string, id uuid.UUID, err error) error {
	var ae *apierr.Error
	if errors.As(err, &ae) {
		return ae
	}
	s.log.Error(op+" failed", "plant_id", id, "error", err)
	return apierr.Internal("could not update plant", err)
}

func (s *plantService) publishForOwner(dbc dbctx.Context, typ string, p *plant.Plant, data map[string]any) {
	if s.events == nil {
		return
	}
	rd := ctxutil.GetRequestData(dbc.Ctx)
	if rd == nil {
		return
	}
	u, err := s.repos.User.GetByExternalID(dbc, rd.ExternalID)
	if err != nil || u == nil {
		return
	}
	s.publish(dbc.Ctx, typ, u.ID, []*plant.Plant{p}, data)
}

func (s *plantService) publish(ctx context.Context, typ string, userID uuid.UUID, plants []*plant.Plant, data map[string]any) {
	if s.events == nil {
		return
	}
	ids := make([]string, 0, len(plants))
	for _, p := range plants {
		ids = append(ids, p.ID.String())
	}
	ev := bus.Event{Type: typ, UserID: userID.String(), PlantIDs: ids, Data: data, At: s.clock().UTC()}
	if err := s.events.Publish(ctx, ev); err != nil {
		s.log.Warn("publish plant event failed", "event", typ, "error", err)
	}
}

// materialize builds one plant per candidate concurrently. Any failure fails the
// whole batch; order follows the input.
func materialize(ctx context.Context, candidates []growthplan.Candidate) ([]*plant.Plant, error) {
	out := make([]*plant.Plant, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	for i, c := range candidates {
		i, c := i, c
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p := newPlant(c, plant.SourceRecommendation)
			p.ID = uuid.New()
			if err := p.EncodeSteps(); err != nil {
				return fmt.Errorf("candidate %q: %w", c.Name, err)
			}
			out[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func newPlant(c growthplan.Candidate, source string) *plant.Plant {
	return &plant.Plant{
		Name:            c.Name,
		Description:     c.Description,
		SuccessRate:     c.SuccessRate,
		DifficultyLevel: c.DifficultyLevel,
		Steps:           sequence.Number(c.Steps),
		IsValid:         true,
		Source:          source,
	}
}

func principal(ctx context.Context) (*ctxutil.RequestData, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || strings.TrimSpace(rd.ExternalID) == "" {
		return nil, apierr.Unauthenticated("authentication required")
	}
	return rd, nil
}

func validateSurvey(req SurveyRequest) (types.Survey, error) {
	s := types.Survey{
		Location:       strings.TrimSpace(req.Location),
		SunlightHours:  req.SunlightHours,
		AvailableSpace: strings.TrimSpace(req.AvailableSpace),
	}
	switch {
	case s.Location == "":
		return s, apierr.Validation("location is required", nil)
	case s.AvailableSpace == "":
		return s, apierr.Validation("availableSpace is required", nil)
	case s.SunlightHours < 0 || s.SunlightHours > maxSunlightHours:
		return s, apierr.Validation("sunlightHours must be between 0 and 24", nil)
	}
	return s, nil
}

func parseKind(err error) string {
	switch {
	case errors.Is(err, growthplan.ErrNoStructureFound):
		return "no_structure"
	case errors.Is(err, growthplan.ErrMalformedJSON):
		return "malformed_json"
	case errors.Is(err, growthplan.ErrUnexpectedShape):
		return "unexpected_shape"
	case errors.Is(err, growthplan.ErrMissingField):
		return "missing_field"
	default:
		return "other"
	}
}

func plantIDs(plants []*plant.Plant) []uuid.UUID {
	ids := make([]uuid.UUID, len(plants))
	for i, p := range plants {
		ids[i] = p.ID
	}
	return ids
}

func emailPtr(email string) *string {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil
	}
	return &email
}
