package testutil

import (
	"context"
	"database/sql"

	"github.com/habitquest/backend/internal/entity"
	"github.com/habitquest/backend/internal/repository"
)

var (
	// Users
	User1 = &entity.User{Base: entity.Base{ID: "user1"}, Name: "user1", Timezone: "UTC"}
	User2 = &entity.User{Base: entity.Base{ID: "user2"}, Name: "user2", Timezone: "Asia/Ho_Chi_Minh"}
	User3 = &entity.User{Base: entity.Base{ID: "user3"}, Name: "user3"}
	User4 = &entity.User{Base: entity.Base{ID: "user4"}, Name: "user4", Gold: 10, Gems: 2}
	Users = []*entity.User{User1, User2, User3, User4}

	// Tasks of user1
	Habit1 = &entity.Habit{
		Base:       entity.Base{ID: "habit1"},
		UserID:     User1.ID,
		Title:      "Drink water",
		Type:       entity.HabitPositive,
		Difficulty: entity.DifficultyTrivial,
	}
	Habit2 = &entity.Habit{
		Base:       entity.Base{ID: "habit2"},
		UserID:     User1.ID,
		Title:      "Doom scrolling",
		Type:       entity.HabitNegative,
		Difficulty: entity.DifficultyMedium,
	}
	Habit3 = &entity.Habit{
		Base:       entity.Base{ID: "habit3"},
		UserID:     User1.ID,
		Title:      "Take the stairs",
		Type:       entity.HabitBoth,
		Difficulty: entity.DifficultyEasy,
	}
	Daily1 = &entity.Daily{
		Base:       entity.Base{ID: "daily1"},
		UserID:     User1.ID,
		Title:      "Workout",
		Difficulty: entity.DifficultyHard,
	}
	Todo1 = &entity.Todo{
		Base:       entity.Base{ID: "todo1"},
		UserID:     User1.ID,
		Title:      "File taxes",
		Difficulty: entity.DifficultyEasy,
	}

	// Challenges
	Challenge1 = &entity.Challenge{
		Base:      entity.Base{ID: "challenge1"},
		CreatorID: User1.ID,
		Title:     "30 days of running",
		Goal:      "Run every day",
		IsPublic:  true,
	}
	Challenge2 = &entity.Challenge{
		Base:      entity.Base{ID: "challenge2"},
		CreatorID: User2.ID,
		Title:     "Read a book",
		Goal:      "One chapter a day",
		IsPublic:  false,
	}

	// Groups
	Group1 = &entity.Group{
		Base:      entity.Base{ID: "group1"},
		CreatedBy: User1.ID,
		Name:      "Early birds",
		IsPublic:  true,
	}
	Group2 = &entity.Group{
		Base:      entity.Base{ID: "group2"},
		CreatedBy: User2.ID,
		Name:      "Night owls",
		IsPublic:  false,
	}

	// Group1: user1 owner, user2 admin, user3 member.
	// Group2: user2 owner, user4 pending.
	Member1Group1 = &entity.GroupMember{
		ID:      "member1_group1",
		UserID:  User1.ID,
		GroupID: Group1.ID,
		Role:    entity.RoleOwner,
		Status:  entity.MembershipActive,
		OwnerOf: sql.NullString{Valid: true, String: Group1.ID},
	}
	Member2Group1 = &entity.GroupMember{
		ID:      "member2_group1",
		UserID:  User2.ID,
		GroupID: Group1.ID,
		Role:    entity.RoleAdmin,
		Status:  entity.MembershipActive,
	}
	Member3Group1 = &entity.GroupMember{
		ID:      "member3_group1",
		UserID:  User3.ID,
		GroupID: Group1.ID,
		Role:    entity.RoleMember,
		Status:  entity.MembershipActive,
	}
	Member2Group2 = &entity.GroupMember{
		ID:      "member2_group2",
		UserID:  User2.ID,
		GroupID: Group2.ID,
		Role:    entity.RoleOwner,
		Status:  entity.MembershipActive,
		OwnerOf: sql.NullString{Valid: true, String: Group2.ID},
	}
	Member4Group2 = &entity.GroupMember{
		ID:      "member4_group2",
		UserID:  User4.ID,
		GroupID: Group2.ID,
		Role:    entity.RoleMember,
		Status:  entity.MembershipPending,
	}
	GroupMembers = []*entity.GroupMember{
		Member1Group1, Member2Group1, Member3Group1, Member2Group2, Member4Group2,
	}
)

// CreateFixtureDb inserts copies of the fixtures above, so tests can mutate
// the stored rows without touching the package variables.
func CreateFixtureDb(ctx context.Context) {
	InsertUsers(ctx)
	InsertTasks(ctx)
	InsertChallenges(ctx)
	InsertGroups(ctx)
}

func InsertUsers(ctx context.Context) {
	userRepo := repository.NewUserRepository()
	for _, u := range Users {
		user := *u
		if err := userRepo.Create(ctx, &user); err != nil {
			panic(err)
		}
	}
}

func InsertTasks(ctx context.Context) {
	habitRepo := repository.NewHabitRepository()
	for _, h := range []*entity.Habit{Habit1, Habit2, Habit3} {
		habit := *h
		if err := habitRepo.Create(ctx, &habit); err != nil {
			panic(err)
		}
	}

	daily := *Daily1
	if err := repository.NewDailyRepository().Create(ctx, &daily); err != nil {
		panic(err)
	}

	todo := *Todo1
	if err := repository.NewTodoRepository().Create(ctx, &todo); err != nil {
		panic(err)
	}
}

func InsertChallenges(ctx context.Context) {
	challengeRepo := repository.NewChallengeRepository()
	for _, c := range []*entity.Challenge{Challenge1, Challenge2} {
		challenge := *c
		if err := challengeRepo.Create(ctx, &challenge); err != nil {
			panic(err)
		}
	}
}

func InsertGroups(ctx context.Context) {
	groupRepo := repository.NewGroupRepository()
	for _, g := range []*entity.Group{Group1, Group2} {
		group := *g
		if err := groupRepo.Create(ctx, &group); err != nil {
			panic(err)
		}
	}

	groupMemberRepo := repository.NewGroupMemberRepository()
	for _, m := range GroupMembers {
		member := *m
		if err := groupMemberRepo.Create(ctx, &member); err != nil {
			panic(err)
		}
	}
}
