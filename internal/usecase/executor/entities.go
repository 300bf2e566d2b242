package executor

type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

func (a Action) Valid() bool { return a == ActionApprove || a == ActionReject }

type Input struct {
	ChangeIDs   []string `json:"changeIds"`
	Action      Action   `json:"action"`
	ReviewNotes *string  `json:"reviewNotes"`
}

type RecordResult struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type Result struct {
	Success      bool           `json:"success"`
	Message      string         `json:"message"`
	Results      []RecordResult `json:"results"`
	SuccessCount int            `json:"-"`
	FailureCount int            `json:"-"`
}
