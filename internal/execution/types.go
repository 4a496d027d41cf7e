package execution

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

type ActionStatus string

type StepStatus string

type StepType string

const (
	ActionStatusPlanned   ActionStatus = "planned"
	ActionStatusRunning   ActionStatus = "running"
	ActionStatusCompleted ActionStatus = "completed"
	ActionStatusFailed    ActionStatus = "failed"
)

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusSkipped   StepStatus = "skipped"
	StepStatusSubmitted StepStatus = "submitted"
	StepStatusConfirmed StepStatus = "confirmed"
	StepStatusFailed    StepStatus = "failed"
)

const (
	StepTypeApproval StepType = "approval"
	StepTypeSwap     StepType = "swap"
	StepTypeTransfer StepType = "transfer"
	StepTypeDeploy   StepType = "deploy"
)

// Intent names recorded in the journal.
const (
	IntentTransfer = "transfer"
	IntentSwap     = "swap"
	IntentDeploy   = "deploy"
)

type ActionStep struct {
	StepID      string     `json:"step_id"`
	Type        StepType   `json:"type"`
	Status      StepStatus `json:"status"`
	Description string     `json:"description,omitempty"`
	Target      string     `json:"target,omitempty"`
	Value       string     `json:"value,omitempty"`
	GasLimit    uint64     `json:"gas_limit,omitempty"`
	TxHash      string     `json:"tx_hash,omitempty"`
	ExplorerURL string     `json:"explorer_url,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// Action is one journaled intent and the on-chain steps it produced.
type Action struct {
	ActionID    string            `json:"action_id"`
	IntentType  string            `json:"intent_type"`
	Provider    string            `json:"provider,omitempty"`
	Status      ActionStatus      `json:"status"`
	Network     string            `json:"network"`
	ChainID     string            `json:"chain_id"`
	FromAddress string            `json:"from_address,omitempty"`
	ToAddress   string            `json:"to_address,omitempty"`
	TokenIn     string            `json:"token_in,omitempty"`
	TokenOut    string            `json:"token_out,omitempty"`
	InputAmount string            `json:"input_amount,omitempty"`
	SlippageBps int64             `json:"slippage_bps,omitempty"`
	Result      string            `json:"result,omitempty"`
	Error       string            `json:"error,omitempty"`
	CreatedAt   string            `json:"created_at"`
	UpdatedAt   string            `json:"updated_at"`
	Steps       []ActionStep      `json:"steps"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

func NewActionID() string {
	return "act_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

func NewAction(intentType, network, chainID string) Action {
	now := time.Now().UTC().Format(time.RFC3339)
	return Action{
		ActionID:   NewActionID(),
		IntentType: intentType,
		Status:     ActionStatusPlanned,
		Network:    network,
		ChainID:    chainID,
		CreatedAt:  now,
		UpdatedAt:  now,
		Steps:      []ActionStep{},
	}
}

func (a *Action) Touch() {
	a.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
}

// AddStep appends a pending step and returns its index.
func (a *Action) AddStep(stepType StepType, description string) int {
	a.Steps = append(a.Steps, ActionStep{
		StepID:      string(stepType) + "-" + strconv.Itoa(len(a.Steps)+1),
		Type:        stepType,
		Status:      StepStatusPending,
		Description: description,
	})
	a.Touch()
	return len(a.Steps) - 1
}

func (a *Action) Fail(msg string) {
	a.Status = ActionStatusFailed
	a.Error = msg
	for i := range a.Steps {
		if a.Steps[i].Status == StepStatusPending || a.Steps[i].Status == StepStatusSubmitted {
			a.Steps[i].Status = StepStatusFailed
			if a.Steps[i].Error == "" {
				a.Steps[i].Error = msg
			}
			break
		}
	}
	a.Touch()
}

func (a *Action) Complete(result string) {
	a.Status = ActionStatusCompleted
	a.Result = result
	a.Touch()
}

// PlainLine summarises the action for history listings.
func (a Action) PlainLine() string {
	parts := []string{a.ActionID, a.IntentType, string(a.Status), a.Network}
	if a.InputAmount != "" {
		parts = append(parts, "amount="+a.InputAmount)
	}
	for i := len(a.Steps) - 1; i >= 0; i-- {
		if a.Steps[i].TxHash != "" {
			parts = append(parts, "tx="+a.Steps[i].TxHash)
			break
		}
	}
	if a.Error != "" {
		parts = append(parts, "error="+strconv.Quote(a.Error))
	}
	return strings.Join(parts, " ")
}
