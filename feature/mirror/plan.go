package mirror

// ActionType is the decision taken for a single file.
type ActionType string

const (
	// ActionUpload uploads a new or changed file.
	ActionUpload ActionType = "upload"
	// ActionSkip leaves an unchanged object alone.
	ActionSkip ActionType = "skip"
	// ActionIgnore marks a local entry that cannot be uploaded.
	ActionIgnore ActionType = "ignore"
)

// Action is a planned operation for one file.
type Action struct {
	Type   ActionType `json:"type"`
	Key    string     `json:"key,omitempty"`
	Path   string     `json:"path"`
	Size   int64      `json:"size"`
	Reason string     `json:"reason"`
}

// PlanSummary provides aggregate counts for a plan.
type PlanSummary struct {
	Uploads     int   `json:"uploads"`
	UploadBytes int64 `json:"upload_bytes"`
	Skips       int   `json:"skips"`
	Ignored     int   `json:"ignored"`
}

// Plan lists the actions a push would perform, in walk order.
type Plan struct {
	Actions []Action    `json:"actions"`
	Summary PlanSummary `json:"summary"`
}

func (p *Plan) add(a Action) {
	p.Actions = append(p.Actions, a)
	switch a.Type {
	case ActionUpload:
		p.Summary.Uploads++
		p.Summary.UploadBytes += a.Size
	case ActionSkip:
		p.Summary.Skips++
	case ActionIgnore:
		p.Summary.Ignored++
	}
}
