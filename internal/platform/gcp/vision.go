package gcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	vision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"
	gax "github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/yungbote/sprout-backend/internal/platform/ctxutil"
	"github.com/yungbote/sprout-backend/internal/platform/logger"
)

// PlantCheck is the outcome of a label scan.
type PlantCheck struct {
	IsPlant bool
	Labels  []string
}

// PlantDetector decides whether an image shows a plant before we spend a
// generation call on it.
type PlantDetector interface {
	DetectPlant(ctx context.Context, img []byte) (*PlantCheck, error)
	Close() error
}

type annotator interface {
	BatchAnnotateImages(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest, opts ...gax.CallOption) (*visionpb.BatchAnnotateImagesResponse, error)
	Close() error
}

var plantLabels = []string{
	"plant", "leaf", "flower", "houseplant", "flowerpot", "herb", "tree", "shrub",
	"vegetable", "succulent", "grass", "botany", "garden", "seedling", "fern", "moss",
}

const minLabelScore = 0.6

type visionDetector struct {
	log    *logger.Logger
	client annotator
}

func NewPlantDetector(ctx context.Context, log *logger.Logger, opts ...option.ClientOption) (PlantDetector, error) {
	c, err := vision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("vision client: %w", err)
	}
	return newPlantDetector(log, c), nil
}

func newPlantDetector(log *logger.Logger, c annotator) *visionDetector {
	return &visionDetector{log: log.With("service", "gcp.PlantDetector"), client: c}
}

func (d *visionDetector) Close() error {
	if d == nil || d.client == nil {
		return nil
	}
	return d.client.Close()
}

func (d *visionDetector) DetectPlant(ctx context.Context, img []byte) (*PlantCheck, error) {
	ctx = ctxutil.Default(ctx)
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req := &visionpb.BatchAnnotateImagesRequest{Requests: []*visionpb.AnnotateImageRequest{{
		Image:    &visionpb.Image{Content: img},
		Features: []*visionpb.Feature{{Type: visionpb.Feature_LABEL_DETECTION, MaxResults: 15}},
	}}}
	resp, err := d.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		if st, ok := status.FromError(err); ok && st.Code() == codes.InvalidArgument {
			// Vision could not decode the image; treat it as not a plant.
			return &PlantCheck{}, nil
		}
		return nil, fmt.Errorf("vision BatchAnnotateImages: %w", err)
	}
	if resp == nil || len(resp.Responses) == 0 || resp.Responses[0] == nil {
		return &PlantCheck{}, nil
	}
	r0 := resp.Responses[0]
	if r0.Error != nil && r0.Error.Message != "" {
		return nil, fmt.Errorf("vision annotate error: %s", r0.Error.Message)
	}

	check := classifyLabels(r0.LabelAnnotations)
	d.log.Debug("plant label scan", "is_plant", check.IsPlant, "labels", strings.Join(check.Labels, ","))
	return check, nil
}

func classifyLabels(anns []*visionpb.EntityAnnotation) *PlantCheck {
	check := &PlantCheck{}
	for _, a := range anns {
		if a == nil {
			continue
		}
		desc := strings.ToLower(strings.TrimSpace(a.Description))
		check.Labels = append(check.Labels, desc)
		if a.Score < minLabelScore {
			continue
		}
		for _, want := range plantLabels {
			if desc == want || strings.Contains(desc, want) {
				check.IsPlant = true
				break
			}
		}
	}
	return check
}
