package ctxutil

import (
	"context"
	"testing"
)

func TestRequestDataRoundTrip(t *testing.T) {
	ctx := WithRequestData(context.Background(), &RequestData{ExternalID: "uid-1"})
	rd := GetRequestData(ctx)
	if rd == nil || rd.ExternalID != "uid-1" {
		t.Fatalf("unexpected request data: %+v", rd)
	}
	if GetRequestData(context.Background()) != nil {
		t.Fatal("expected nil request data on bare context")
	}
}

func TestTraceDataRoundTrip(t *testing.T) {
	ctx := WithTraceData(context.Background(), &TraceData{TraceID: "t", RequestID: "r"})
	td := GetTraceData(ctx)
	if td == nil || td.TraceID != "t" || td.RequestID != "r" {
		t.Fatalf("unexpected trace data: %+v", td)
	}
}
