package services

import (
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/sprout-backend/internal/domain/plant"
	"github.com/yungbote/sprout-backend/internal/modules/garden/growthplan"
	"github.com/yungbote/sprout-backend/internal/modules/garden/prompts"
	"github.com/yungbote/sprout-backend/internal/modules/garden/sequence"
	"github.com/yungbote/sprout-backend/internal/platform/apierr"
	"github.com/yungbote/sprout-backend/internal/platform/ctxutil"
	"github.com/yungbote/sprout-backend/internal/platform/dbctx"
	"github.com/yungbote/sprout-backend/internal/platform/gcp"
	"github.com/yungbote/sprout-backend/internal/platform/imageprep"
	"github.com/yungbote/sprout-backend/internal/platform/llm"
	"github.com/yungbote/sprout-backend/internal/realtime/bus"
)

const notAPlantReason = "the image does not appear to show a plant"

// Diagnose analyses a plant photo and, when treatment is needed, merges the
// remediation steps into the plant's timeline after the last completed step.
func (s *plantService) Diagnose(dbc dbctx.Context, rawID, imageBase64 string) (*DiagnosisOutcome, error) {
	id, err := s.authorize(dbc, rawID)
	if err != nil {
		return nil, err
	}
	img, err := imageprep.FromBase64(imageBase64)
	if err != nil {
		return nil, imageError(err)
	}

	if s.detector != nil {
		check, err := s.detector.DetectPlant(dbc.Ctx, img.Bytes)
		switch {
		case err != nil:
			// the vision check is advisory; the generator still gets the photo
			s.log.Warn("plant detection failed", "plant_id", id, "error", err)
		case !check.IsPlant:
			s.log.Info("diagnosis image is not a plant", "plant_id", id, "labels", check.Labels)
			return nil, apierr.Rejected(notAPlantReason)
		}
	}

	current, err := s.repos.Plant.GetByID(dbc, id)
	if err != nil {
		return nil, apierr.Internal("could not load plant", err)
	}
	if current == nil {
		return nil, apierr.NotFound("plant not found")
	}
	owner, err := s.repos.User.GetByExternalID(dbc, ctxutil.GetRequestData(dbc.Ctx).ExternalID)
	if err != nil || owner == nil {
		return nil, apierr.Internal("could not load profile", err)
	}

	prompt, err := s.prompts.Render(prompts.Diagnosis, prompts.DiagnosisInput{
		PlantName:      current.Name,
		CompletedSteps: completedTitles(current.Steps),
	})
	if err != nil {
		return nil, apierr.Internal("could not build the diagnosis prompt", err)
	}
	raw, err := s.generate(dbc.Ctx, llm.Request{
		Kind:   prompts.Diagnosis,
		System: prompt.System,
		User:   prompt.User,
		Images: []llm.Image{{Bytes: img.Bytes, MimeType: img.MimeType}},
		JSON:   true,
	})
	if err != nil {
		return nil, err
	}
	res, err := growthplan.ParseDiagnosis(raw)
	if err != nil {
		return nil, s.parseFailure(prompts.Diagnosis, err)
	}
	if res.Rejected {
		return nil, apierr.Rejected(res.RejectionReason)
	}

	var (
		out   *plant.Plant
		added []int
		rec   *plant.Diagnosis
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
		if res.Diagnosis.NeedsTreatment && len(res.Diagnosis.Steps) > 0 {
			merged := sequence.InsertRemediation(p.Steps, res.Diagnosis.Steps, s.policy)
			added = newStepIDs(p.Steps, merged)
			if err := s.repos.Plant.UpdateSteps(txc, id, merged); err != nil {
				return err
			}
			p.Steps = merged
		}
		ids, err := json.Marshal(nonNil(added))
		if err != nil {
			return err
		}
		rec, err = s.repos.Diagnosis.Create(txc, &plant.Diagnosis{
			PlantID:        id,
			UserID:         owner.ID,
			Summary:        res.Diagnosis.Summary,
			NeedsTreatment: res.Diagnosis.NeedsTreatment,
			AddedStepIDs:   datatypes.JSON(ids),
		})
		if err != nil {
			return fmt.Errorf("create diagnosis: %w", err)
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, s.mutationError("diagnose", id, err)
	}
	s.archiveImage(dbc, rec, img)

	if len(added) > 0 {
		s.publish(dbc.Ctx, bus.EventPlantRemediated, owner.ID, []*plant.Plant{out}, map[string]any{"addedStepIds": added})
	}
	return &DiagnosisOutcome{Diagnosis: rec, Plant: out}, nil
}

// archiveImage stores the normalized photo once the diagnosis is committed and
// links it to the record. Failures are logged and the record keeps no key.
func (s *plantService) archiveImage(dbc dbctx.Context, rec *plant.Diagnosis, img *imageprep.Image) {
	if s.archive == nil {
		return
	}
	key := gcp.DiagnosisImageKey(rec.PlantID, s.clock(), img.Ext())
	if err := s.archive.Put(dbc.Ctx, key, img.Bytes, img.MimeType); err != nil {
		s.log.Warn("archive diagnosis image failed", "plant_id", rec.PlantID, "error", err)
		return
	}
	if err := s.repos.Diagnosis.SetImageObjectKey(dbc, rec.ID, key); err != nil {
		s.log.Warn("link archived diagnosis image failed", "diagnosis_id", rec.ID, "key", key, "error", err)
		return
	}
	rec.ImageObjectKey = key
}

func imageError(err error) error {
	switch {
	case errors.Is(err, imageprep.ErrEmpty):
		return apierr.Validation("imageBase64 is required", err)
	case errors.Is(err, imageprep.ErrTooLarge):
		return apierr.Validation("image is too large", err)
	case errors.Is(err, imageprep.ErrUnsupported):
		return apierr.Validation("image format is not supported", err)
	default:
		return apierr.Validation("imageBase64 is not a valid image", err)
	}
}

func completedTitles(steps []plant.GrowthStep) []string {
	var out []string
	for _, st := range steps {
		if st.IsCompleted {
			out = append(out, st.Title)
		}
	}
	return out
}

func newStepIDs(before, after []plant.GrowthStep) []int {
	seen := make(map[int]struct{}, len(before))
	for _, st := range before {
		seen[st.ID] = struct{}{}
	}
	var out []int
	for _, st := range after {
		if _, ok := seen[st.ID]; !ok {
			out = append(out, st.ID)
		}
	}
	return out
}

func nonNil(ids []int) []int {
	if ids == nil {
		return []int{}
	}
	return ids
}
