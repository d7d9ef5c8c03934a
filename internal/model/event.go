package model

// TaskCompletedEvent is published once per applied completion, after the
// transaction commits.
type TaskCompletedEvent struct {
	UserID       string `json:"user_id"`
	TaskKind     string `json:"task_kind"`
	TaskID       string `json:"task_id"`
	Direction    string `json:"direction"`
	GoldDelta    int64  `json:"gold_delta"`
	RewardLocked bool   `json:"reward_locked"`
	CompletedAt  string `json:"completed_at"`
}
