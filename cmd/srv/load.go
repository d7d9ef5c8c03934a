package main

import (
	"context"
	"fmt"
	"log"

	"github.com/habitquest/backend/config"
	"github.com/habitquest/backend/internal/domain"
	"github.com/habitquest/backend/internal/repository"
	"github.com/habitquest/backend/pkg/idutil"
	"github.com/habitquest/backend/pkg/kafka"
	"github.com/habitquest/backend/pkg/logger"
	"github.com/habitquest/backend/pkg/pubsub"
	"github.com/habitquest/backend/pkg/xcontext"
	"github.com/habitquest/backend/pkg/xredis"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func (s *srv) loadConfig(path string) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	s.configs = &cfg
	s.ctx = xcontext.WithConfigs(context.Background(), cfg)
	return nil
}

func (s *srv) loadLogger() {
	s.logger = logger.NewLogger(logger.ParseLevel(s.configs.LogLevel))
	s.ctx = xcontext.WithLogger(s.ctx, s.logger)
}

func (s *srv) newDatabase() *gorm.DB {
	dbCfg := s.configs.Database

	var dialector gorm.Dialector
	switch dbCfg.Driver {
	case "mysql":
		dialector = mysql.New(mysql.Config{
			DSN:                       dbCfg.ConnectionString(),
			DefaultStringSize:         256,
			DisableDatetimePrecision:  true,
			DontSupportRenameIndex:    true,
			DontSupportRenameColumn:   true,
			SkipInitializeWithVersion: false,
		})
	case "postgres":
		dialector = postgres.Open(dbCfg.ConnectionString())
	case "sqlite":
		dialector = sqlite.Open(dbCfg.ConnectionString())
	default:
		log.Fatalf("unsupported database driver %s", dbCfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormLogLevel(dbCfg.LogLevel)),
	})
	if err != nil {
		log.Fatalf("cannot open database: %v", err)
	}

	return db
}

func gormLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "info":
		return gormlogger.Info
	case "warn":
		return gormlogger.Warn
	case "error":
		return gormlogger.Error
	default:
		return gormlogger.Silent
	}
}

func (s *srv) loadDatabase() {
	s.db = s.newDatabase()
	s.ctx = xcontext.WithDB(s.ctx, s.db)
}

func (s *srv) loadRedisClient() {
	if !s.configs.Redis.Enable {
		s.logger.Infof("Redis is disabled, public lists are not cached")
		s.redisClient = xredis.NewNopClient()
		return
	}

	var err error
	s.redisClient, err = xredis.NewClient(s.ctx)
	if err != nil {
		log.Fatalf("cannot connect to redis: %v", err)
	}
}

func (s *srv) loadPublisher() {
	kafkaCfg := s.configs.Kafka
	if !kafkaCfg.Enable {
		s.publisher = pubsub.NewNopPublisher()
		return
	}

	publisher, err := kafka.NewPublisher(kafkaCfg.ClientID, kafkaCfg.Brokers)
	if err != nil {
		log.Fatalf("cannot connect to kafka: %v", err)
	}

	s.publisher = publisher
}

func (s *srv) loadIDGenerator() {
	node, err := idutil.NewGenerator(s.configs.Snowflake.Node)
	if err != nil {
		log.Fatalf("cannot create id generator: %v", err)
	}

	s.idGenerator = node
}

func (s *srv) loadRepos() {
	s.userRepo = repository.NewUserRepository()
	s.habitRepo = repository.NewHabitRepository()
	s.dailyRepo = repository.NewDailyRepository()
	s.todoRepo = repository.NewTodoRepository()
	s.ledgerEntryRepo = repository.NewLedgerEntryRepository()
	s.challengeRepo = repository.NewChallengeRepository()
	s.userChallengeRepo = repository.NewUserChallengeRepository()
	s.groupRepo = repository.NewGroupRepository()
	s.groupMemberRepo = repository.NewGroupMemberRepository()
	s.groupMessageRepo = repository.NewGroupMessageRepository()
}

func (s *srv) loadDomains() {
	s.economyLedger = domain.NewEconomyLedger(s.userRepo, s.ledgerEntryRepo, s.idGenerator)
	s.taskDomain = domain.NewTaskDomain(
		s.userRepo, s.habitRepo, s.dailyRepo, s.todoRepo, s.economyLedger, s.publisher)
	s.ledgerDomain = domain.NewLedgerDomain(s.userRepo, s.ledgerEntryRepo)
	s.challengeDomain = domain.NewChallengeDomain(s.challengeRepo, s.userChallengeRepo, s.redisClient)
	s.groupDomain = domain.NewGroupDomain(s.groupRepo, s.groupMemberRepo, s.groupMessageRepo)
}

func (s *srv) address() string {
	return fmt.Sprintf("%s:%s", s.configs.ApiServer.Host, s.configs.ApiServer.Port)
}
