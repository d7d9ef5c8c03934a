package model

type CreateHabitRequest struct {
	Title      string `json:"title"`
	Notes      string `json:"notes"`
	Type       string `json:"type"`
	Difficulty string `json:"difficulty"`
}

type CreateHabitResponse Task

type CreateDailyRequest struct {
	Title      string `json:"title"`
	Notes      string `json:"notes"`
	Difficulty string `json:"difficulty"`
}

type CreateDailyResponse Task

type CreateTodoRequest struct {
	Title      string `json:"title"`
	Notes      string `json:"notes"`
	Difficulty string `json:"difficulty"`

	// DueDate is RFC3339, empty means no due date.
	DueDate string `json:"due_date"`
}

type CreateTodoResponse Task

type GetTaskRequest struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

type GetTaskResponse struct {
	Task    Task       `json:"task"`
	History []DailyLog `json:"history,omitempty"`
}

type GetTasksRequest struct {
	Kind string `json:"kind"`
}

type GetTasksResponse struct {
	Tasks []Task `json:"tasks"`
}

type DeleteTaskRequest struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

type DeleteTaskResponse struct{}

type PauseHabitRequest struct {
	ID     string `json:"id"`
	Paused bool   `json:"paused"`
}

type PauseHabitResponse Task

type CompleteTaskRequest struct {
	Kind      string `json:"kind"`
	ID        string `json:"id"`
	Direction string `json:"direction"`
	Notes     string `json:"notes"`
}

type CompleteTaskResponse struct {
	Task Task `json:"task"`

	// Delta is the currency actually applied, negative for a debit.
	Delta        Balance `json:"delta"`
	Balance      Balance `json:"balance"`
	RewardLocked bool    `json:"reward_locked"`
}
