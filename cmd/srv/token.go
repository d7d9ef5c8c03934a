package main

import (
	"errors"
	"fmt"

	"github.com/habitquest/backend/internal/entity"
	"github.com/habitquest/backend/internal/model"
	"github.com/habitquest/backend/internal/repository"
	"github.com/habitquest/backend/pkg/jwt"
	"github.com/urfave/cli/v2"
	"gorm.io/gorm"
)

// issueToken prints an access token for a user. Login flows are out of the
// service, so this is how local users and operators get a token.
func (s *srv) issueToken(cctx *cli.Context) error {
	s.loadLogger()
	s.loadDatabase()

	userRepo := repository.NewUserRepository()
	userID := cctx.String("user")
	user, err := userRepo.GetByID(s.ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = &entity.User{
			Base:     entity.Base{ID: userID},
			Name:     cctx.String("name"),
			Timezone: cctx.String("timezone"),
		}
		if user.Name == "" {
			user.Name = userID
		}

		err = userRepo.Create(s.ctx, user)
		if err == nil {
			s.logger.Infof("Created user %s", userID)
		}
	}
	if err != nil {
		return err
	}

	expiration := cctx.Duration("expiration")
	if expiration == 0 {
		expiration = s.configs.Auth.AccessToken.Expiration
	}

	engine := jwt.NewEngine[model.AccessToken](s.configs.Auth.TokenSecret, expiration)
	token, err := engine.Generate(user.ID, model.AccessToken{ID: user.ID, Name: user.Name})
	if err != nil {
		return err
	}

	fmt.Println(token)
	return nil
}
