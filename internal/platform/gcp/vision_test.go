package gcp

import (
	"context"
	"errors"
	"testing"

	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"
	gax "github.com/googleapis/gax-go/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/yungbote/sprout-backend/internal/platform/logger"
)

type fakeAnnotator struct {
	resp *visionpb.BatchAnnotateImagesResponse
	err  error
	req  *visionpb.BatchAnnotateImagesRequest
}

func (f *fakeAnnotator) BatchAnnotateImages(_ context.Context, req *visionpb.BatchAnnotateImagesRequest, _ ...gax.CallOption) (*visionpb.BatchAnnotateImagesResponse, error) {
	f.req = req
	return f.resp, f.err
}

func (f *fakeAnnotator) Close() error { return nil }

func labels(pairs ...any) *visionpb.BatchAnnotateImagesResponse {
	var anns []*visionpb.EntityAnnotation
	for i := 0; i < len(pairs); i += 2 {
		anns = append(anns, &visionpb.EntityAnnotation{Description: pairs[i].(string), Score: pairs[i+1].(float32)})
	}
	return &visionpb.BatchAnnotateImagesResponse{Responses: []*visionpb.AnnotateImageResponse{{LabelAnnotations: anns}}}
}

func TestDetectPlant(t *testing.T) {
	cases := []struct {
		name string
		resp *visionpb.BatchAnnotateImagesResponse
		want bool
	}{
		{"houseplant", labels("Houseplant", float32(0.95), "Pot", float32(0.8)), true},
		{"low score ignored", labels("Leaf", float32(0.3), "Car", float32(0.9)), false},
		{"no plant", labels("Car", float32(0.97), "Wheel", float32(0.9)), false},
		{"empty", &visionpb.BatchAnnotateImagesResponse{}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := &fakeAnnotator{resp: tc.resp}
			d := newPlantDetector(logger.Nop(), f)
			got, err := d.DetectPlant(context.Background(), []byte{0xff})
			if err != nil {
				t.Fatalf("DetectPlant: %v", err)
			}
			if got.IsPlant != tc.want {
				t.Fatalf("IsPlant = %v, want %v (labels %v)", got.IsPlant, tc.want, got.Labels)
			}
			if f.req.Requests[0].Features[0].Type != visionpb.Feature_LABEL_DETECTION {
				t.Fatalf("expected label detection request")
			}
		})
	}
}

func TestDetectPlant_Errors(t *testing.T) {
	bad := &fakeAnnotator{err: status.Error(codes.InvalidArgument, "bad image")}
	got, err := newPlantDetector(logger.Nop(), bad).DetectPlant(context.Background(), nil)
	if err != nil || got.IsPlant {
		t.Fatalf("invalid image should be a non-plant, got %+v %v", got, err)
	}

	down := &fakeAnnotator{err: status.Error(codes.Unavailable, "down")}
	if _, err := newPlantDetector(logger.Nop(), down).DetectPlant(context.Background(), nil); err == nil {
		t.Fatalf("expected error when vision is unavailable")
	}

	other := &fakeAnnotator{err: errors.New("boom")}
	if _, err := newPlantDetector(logger.Nop(), other).DetectPlant(context.Background(), nil); err == nil {
		t.Fatalf("expected error")
	}
}
