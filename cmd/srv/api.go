package main

import (
	"net/http"

	"github.com/habitquest/backend/internal/middleware"
	"github.com/habitquest/backend/pkg/prometheus"
	"github.com/habitquest/backend/pkg/router"
	"github.com/urfave/cli/v2"
)

func (s *srv) startApi(*cli.Context) error {
	s.loadLogger()
	s.loadDatabase()
	s.loadRedisClient()
	s.loadIDGenerator()
	s.loadPublisher()
	s.loadRepos()
	s.loadDomains()
	s.loadRouter()

	s.server = &http.Server{
		Addr:    s.address(),
		Handler: s.router.Handler(),
	}

	s.logger.Infof("Starting server on %s", s.address())
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	s.logger.Infof("Server stop")
	return nil
}

func (s *srv) loadRouter() {
	s.router = router.New(s.db, *s.configs, s.logger)
	s.router.Before(middleware.WithStartTime())
	s.router.AddCloser(middleware.Logger())
	s.router.AddCloser(middleware.Prometheus())
	s.router.Raw(http.MethodGet, "/metrics", prometheus.NewHandler())

	// Every API needs an access token.
	authRouter := s.router.Branch()
	authRouter.Before(middleware.NewAuthVerifier(s.configs.Auth.TokenSecret).Middleware())
	{
		// Task API
		router.POST(authRouter, "/createHabit", s.taskDomain.CreateHabit)
		router.POST(authRouter, "/createDaily", s.taskDomain.CreateDaily)
		router.POST(authRouter, "/createTodo", s.taskDomain.CreateTodo)
		router.GET(authRouter, "/getTask", s.taskDomain.Get)
		router.GET(authRouter, "/getTasks", s.taskDomain.GetList)
		router.POST(authRouter, "/deleteTask", s.taskDomain.Delete)
		router.POST(authRouter, "/pauseHabit", s.taskDomain.PauseHabit)
		router.POST(authRouter, "/completeTask", s.taskDomain.Complete)

		// Economy API
		router.GET(authRouter, "/getBalance", s.ledgerDomain.GetBalance)
		router.GET(authRouter, "/getLedger", s.ledgerDomain.GetLedger)

		// Challenge API
		router.POST(authRouter, "/createChallenge", s.challengeDomain.Create)
		router.GET(authRouter, "/getChallenge", s.challengeDomain.Get)
		router.GET(authRouter, "/getPublicChallenges", s.challengeDomain.GetPublicList)
		router.GET(authRouter, "/getMyChallenges", s.challengeDomain.GetMyList)
		router.POST(authRouter, "/joinChallenge", s.challengeDomain.Join)
		router.POST(authRouter, "/updateChallengeProgress", s.challengeDomain.UpdateProgress)
		router.POST(authRouter, "/leaveChallenge", s.challengeDomain.Leave)

		// Group API
		router.POST(authRouter, "/createGroup", s.groupDomain.Create)
		router.GET(authRouter, "/getGroup", s.groupDomain.Get)
		router.GET(authRouter, "/getPublicGroups", s.groupDomain.GetPublicList)
		router.GET(authRouter, "/getGroupMembers", s.groupDomain.GetMembers)
		router.POST(authRouter, "/joinGroup", s.groupDomain.Join)
		router.POST(authRouter, "/approveMember", s.groupDomain.Approve)
		router.POST(authRouter, "/rejectMember", s.groupDomain.Reject)
		router.POST(authRouter, "/changeMemberRole", s.groupDomain.ChangeRole)
		router.POST(authRouter, "/leaveGroup", s.groupDomain.Leave)
		router.POST(authRouter, "/removeMember", s.groupDomain.Remove)
		router.POST(authRouter, "/postGroupMessage", s.groupDomain.PostMessage)
		router.GET(authRouter, "/getGroupMessages", s.groupDomain.GetMessages)
	}
}
