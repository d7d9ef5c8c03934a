package model

type CreateChallengeRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Goal        string `json:"goal"`
	IsPublic    bool   `json:"is_public"`
}

type CreateChallengeResponse Challenge

type GetChallengeRequest struct {
	ID string `json:"id"`
}

type GetChallengeResponse struct {
	Challenge    Challenge       `json:"challenge"`
	Participants []UserChallenge `json:"participants"`
}

type GetPublicChallengesRequest struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

type GetPublicChallengesResponse struct {
	Challenges []Challenge `json:"challenges"`
}

type GetMyChallengesRequest struct{}

type GetMyChallengesResponse struct {
	UserChallenges []UserChallenge `json:"user_challenges"`
}

type JoinChallengeRequest struct {
	ChallengeID string `json:"challenge_id"`
}

type JoinChallengeResponse UserChallenge

type UpdateChallengeProgressRequest struct {
	ID       string `json:"id"`
	Progress int64  `json:"progress"`

	// Completed keeps its current value when omitted.
	Completed *bool `json:"completed"`
}

type UpdateChallengeProgressResponse UserChallenge

type LeaveChallengeRequest struct {
	ID string `json:"id"`
}

type LeaveChallengeResponse struct{}
