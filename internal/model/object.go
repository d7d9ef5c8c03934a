package model

type AccessToken struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ShortUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Balance struct {
	Gold int64 `json:"gold"`
	Gems int64 `json:"gems"`
}

type Task struct {
	ID         string `json:"id"`
	Kind       string `json:"kind"`
	UserID     string `json:"user_id"`
	Title      string `json:"title"`
	Notes      string `json:"notes"`
	Difficulty string `json:"difficulty"`
	CreatedAt  string `json:"created_at"`

	// Habit
	Type            string `json:"type,omitempty"`
	IsPaused        bool   `json:"is_paused"`
	PositiveCounter int64  `json:"positive_counter"`
	NegativeCounter int64  `json:"negative_counter"`

	// Daily and todo
	Completed       bool   `json:"completed"`
	LastCompletedAt string `json:"last_completed_at,omitempty"`
	CompletedAt     string `json:"completed_at,omitempty"`
	DueDate         string `json:"due_date,omitempty"`

	CurrentStreak     int    `json:"current_streak"`
	LongestStreak     int    `json:"longest_streak"`
	RewardLockedUntil string `json:"reward_locked_until,omitempty"`
}

type DailyLog struct {
	ID        string `json:"id"`
	Date      string `json:"date"`
	Notes     string `json:"notes"`
	CreatedAt string `json:"created_at"`
}

type LedgerEntry struct {
	ID        string `json:"id"`
	TaskKind  string `json:"task_kind"`
	TaskID    string `json:"task_id"`
	Gold      int64  `json:"gold"`
	Gems      int64  `json:"gems"`
	Reason    string `json:"reason"`
	CreatedAt string `json:"created_at"`
}

type Challenge struct {
	ID           string    `json:"id"`
	Creator      ShortUser `json:"creator"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Goal         string    `json:"goal"`
	IsPublic     bool      `json:"is_public"`
	Participants int64     `json:"participants"`
	CreatedAt    string    `json:"created_at"`
}

type UserChallenge struct {
	ID          string     `json:"id"`
	User        ShortUser  `json:"user"`
	ChallengeID string     `json:"challenge_id"`
	Challenge   *Challenge `json:"challenge,omitempty"`
	Progress    int64      `json:"progress"`
	Completed   bool       `json:"completed"`
	JoinedAt    string     `json:"joined_at"`
}

type Group struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsPublic    bool   `json:"is_public"`
	CreatedBy   string `json:"created_by"`
	Members     int64  `json:"members"`
	CreatedAt   string `json:"created_at"`
}

type GroupMember struct {
	ID       string    `json:"id"`
	GroupID  string    `json:"group_id"`
	User     ShortUser `json:"user"`
	Role     string    `json:"role"`
	Status   string    `json:"status"`
	JoinedAt string    `json:"joined_at"`
}

type GroupMessage struct {
	ID        string    `json:"id"`
	GroupID   string    `json:"group_id"`
	User      ShortUser `json:"user"`
	Content   string    `json:"content"`
	CreatedAt string    `json:"created_at"`
}
