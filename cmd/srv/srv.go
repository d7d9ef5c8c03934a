package main

import (
	"context"
	"net/http"

	"github.com/habitquest/backend/config"
	"github.com/habitquest/backend/internal/domain"
	"github.com/habitquest/backend/internal/repository"
	"github.com/habitquest/backend/pkg/idutil"
	"github.com/habitquest/backend/pkg/logger"
	"github.com/habitquest/backend/pkg/pubsub"
	"github.com/habitquest/backend/pkg/router"
	"github.com/habitquest/backend/pkg/xredis"
	"github.com/urfave/cli/v2"
	"gorm.io/gorm"
)

type srv struct {
	app *cli.App
	ctx context.Context

	configs *config.Configs
	logger  logger.Logger
	db      *gorm.DB

	redisClient xredis.Client
	idGenerator idutil.Generator
	publisher   pubsub.Publisher

	userRepo          repository.UserRepository
	habitRepo         repository.HabitRepository
	dailyRepo         repository.DailyRepository
	todoRepo          repository.TodoRepository
	ledgerEntryRepo   repository.LedgerEntryRepository
	challengeRepo     repository.ChallengeRepository
	userChallengeRepo repository.UserChallengeRepository
	groupRepo         repository.GroupRepository
	groupMemberRepo   repository.GroupMemberRepository
	groupMessageRepo  repository.GroupMessageRepository

	economyLedger   *domain.EconomyLedger
	taskDomain      domain.TaskDomain
	ledgerDomain    domain.LedgerDomain
	challengeDomain domain.ChallengeDomain
	groupDomain     domain.GroupDomain

	router *router.Router
	server *http.Server
}
