package growthplan

// Diagnosis is the generator's assessment of a plant photo.
type Diagnosis struct {
	Summary        string
	NeedsTreatment bool
	Steps          []StepDraft
}

// DiagnosisResult mirrors Result: either a diagnosis or a rejection (the photo
// does not show a plant).
type DiagnosisResult struct {
	Diagnosis       *Diagnosis
	Rejected        bool
	RejectionReason string
}

const defaultImageRejection = "the image does not appear to show a plant"

// ParseDiagnosis validates a single-object diagnosis response:
//
//	{"isPlant": true, "diagnosis": "...", "needsTreatment": true, "steps": [...]}
//
// steps are only required when needsTreatment is true.
func ParseDiagnosis(raw string) (*DiagnosisResult, error) {
	payload, err := decodePayload(raw, ShapeObject)
	if err != nil {
		return nil, err
	}
	obj := payload.(map[string]any)

	if v, ok := obj["isPlant"]; ok {
		if b, known := toBool(v); known && !b {
			reason := rejectionReason(obj)
			if reason == defaultRejection {
				reason = defaultImageRejection
			}
			return &DiagnosisResult{Rejected: true, RejectionReason: reason}, nil
		}
	}

	summary, ok := textField(obj, "diagnosis")
	if !ok {
		return nil, missing("diagnosis")
	}
	needs := false
	if v, ok := obj["needsTreatment"]; ok {
		b, known := toBool(v)
		if !known {
			return nil, shapeErr("needsTreatment is %s, want boolean", jsonKind(v))
		}
		needs = b
	}

	d := &Diagnosis{Summary: summary, NeedsTreatment: needs}
	if needs {
		steps, err := stepsFrom(obj, "steps")
		if err != nil {
			return nil, err
		}
		if len(steps) == 0 {
			return nil, missing("steps")
		}
		d.Steps = steps
	}
	return &DiagnosisResult{Diagnosis: d}, nil
}
