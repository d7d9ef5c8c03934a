package domain

import (
	"context"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"github.com/habitquest/backend/internal/common"
	"github.com/habitquest/backend/internal/entity"
	"github.com/habitquest/backend/internal/model"
	"github.com/habitquest/backend/internal/repository"
	"github.com/habitquest/backend/pkg/errorx"
	"github.com/habitquest/backend/pkg/xcontext"
	"github.com/habitquest/backend/pkg/xredis"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type ChallengeDomain interface {
	Create(context.Context, *model.CreateChallengeRequest) (*model.CreateChallengeResponse, error)
	Get(context.Context, *model.GetChallengeRequest) (*model.GetChallengeResponse, error)
	GetPublicList(context.Context, *model.GetPublicChallengesRequest) (*model.GetPublicChallengesResponse, error)
	GetMyList(context.Context, *model.GetMyChallengesRequest) (*model.GetMyChallengesResponse, error)
	Join(context.Context, *model.JoinChallengeRequest) (*model.JoinChallengeResponse, error)
	UpdateProgress(context.Context, *model.UpdateChallengeProgressRequest) (*model.UpdateChallengeProgressResponse, error)
	Leave(context.Context, *model.LeaveChallengeRequest) (*model.LeaveChallengeResponse, error)
}

type challengeDomain struct {
	challengeRepo     repository.ChallengeRepository
	userChallengeRepo repository.UserChallengeRepository
	redisClient       xredis.Client
}

func NewChallengeDomain(
	challengeRepo repository.ChallengeRepository,
	userChallengeRepo repository.UserChallengeRepository,
	redisClient xredis.Client,
) ChallengeDomain {
	return &challengeDomain{
		challengeRepo:     challengeRepo,
		userChallengeRepo: userChallengeRepo,
		redisClient:       redisClient,
	}
}

func (d *challengeDomain) Create(
	ctx context.Context, req *model.CreateChallengeRequest,
) (*model.CreateChallengeResponse, error) {
	if err := checkTitle(req.Title); err != nil {
		return nil, err
	}

	challenge := &entity.Challenge{
		Base:        entity.Base{ID: uuid.NewString()},
		CreatorID:   xcontext.RequestUserID(ctx),
		Title:       req.Title,
		Description: req.Description,
		Goal:        req.Goal,
		IsPublic:    req.IsPublic,
	}

	if err := d.challengeRepo.Create(ctx, challenge); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create challenge: %v", err)
		return nil, errorx.Unknown
	}

	if challenge.IsPublic {
		d.invalidatePublicList(ctx)
	}

	return (*model.CreateChallengeResponse)(ptr(model.ConvertChallenge(challenge, 0))), nil
}

// Get returns a challenge with its participants. A private challenge is only
// visible to its creator and its participants.
func (d *challengeDomain) Get(
	ctx context.Context, req *model.GetChallengeRequest,
) (*model.GetChallengeResponse, error) {
	challenge, err := d.challengeRepo.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found challenge")
		}

		xcontext.Logger(ctx).Errorf("Cannot get challenge: %v", err)
		return nil, errorx.Unknown
	}

	participants, err := d.userChallengeRepo.GetListByChallengeID(ctx, challenge.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get participants: %v", err)
		return nil, errorx.Unknown
	}

	userID := xcontext.RequestUserID(ctx)
	visible := challenge.IsPublic || challenge.CreatorID == userID
	result := []model.UserChallenge{}
	for i := range participants {
		if participants[i].UserID == userID {
			visible = true
		}
		result = append(result, model.ConvertUserChallenge(&participants[i], nil))
	}

	if !visible {
		return nil, errorx.New(errorx.PermissionDenied, "The challenge is private")
	}

	return &model.GetChallengeResponse{
		Challenge:    model.ConvertChallenge(challenge, int64(len(participants))),
		Participants: result,
	}, nil
}

func (d *challengeDomain) GetPublicList(
	ctx context.Context, req *model.GetPublicChallengesRequest,
) (*model.GetPublicChallengesResponse, error) {
	offset, limit, err := checkPagination(ctx, req.Offset, req.Limit)
	if err != nil {
		return nil, err
	}

	// The version is read before the database, a page computed from rows
	// older than a later change lands under a key nobody reads anymore.
	key := ""
	version, err := d.publicListVersion(ctx)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot get version of public challenges: %v", err)
	} else {
		key = common.RedisKeyPublicChallenges(version, offset, limit)
		var cached []model.Challenge
		err = d.redisClient.GetObj(ctx, key, &cached)
		if err == nil {
			return &model.GetPublicChallengesResponse{Challenges: cached}, nil
		}

		if !errors.Is(err, redis.Nil) {
			xcontext.Logger(ctx).Warnf("Cannot get public challenges from cache: %v", err)
		}
	}

	challenges, err := d.challengeRepo.GetPublicList(ctx, offset, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get public challenges: %v", err)
		return nil, errorx.Unknown
	}

	result := []model.Challenge{}
	for i := range challenges {
		result = append(result, model.ConvertChallenge(&challenges[i].Challenge, challenges[i].Participants))
	}

	if key != "" {
		ttl := xcontext.Configs(ctx).Cache.ChallengeListTTL
		if err := d.redisClient.SetObj(ctx, key, result, ttl); err != nil {
			xcontext.Logger(ctx).Warnf("Cannot cache public challenges: %v", err)
		}
	}

	return &model.GetPublicChallengesResponse{Challenges: result}, nil
}

func (d *challengeDomain) GetMyList(
	ctx context.Context, req *model.GetMyChallengesRequest,
) (*model.GetMyChallengesResponse, error) {
	userChallenges, err := d.userChallengeRepo.GetListByUserID(ctx, xcontext.RequestUserID(ctx))
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get user challenges: %v", err)
		return nil, errorx.Unknown
	}

	result := []model.UserChallenge{}
	for i := range userChallenges {
		challenge := model.ConvertChallenge(&userChallenges[i].Challenge, 0)
		result = append(result, model.ConvertUserChallenge(&userChallenges[i], &challenge))
	}

	return &model.GetMyChallengesResponse{UserChallenges: result}, nil
}

// Join creates the participation of the request user. A private challenge is
// hidden from lists and reads, but its id is an invitation: anyone who knows
// it may join. Uniqueness comes from the storage, so a concurrent second join
// fails with AlreadyExists.
func (d *challengeDomain) Join(
	ctx context.Context, req *model.JoinChallengeRequest,
) (*model.JoinChallengeResponse, error) {
	userChallenge := &entity.UserChallenge{
		ID:          uuid.NewString(),
		UserID:      xcontext.RequestUserID(ctx),
		ChallengeID: req.ChallengeID,
		Progress:    0,
		Completed:   false,
	}

	var challenge *entity.Challenge
	err := xcontext.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		challenge, err = d.challengeRepo.GetByID(ctx, req.ChallengeID)
		if err != nil {
			return err
		}

		err = d.userChallengeRepo.Create(ctx, userChallenge)
		if err != nil {
			if repository.IsDuplicated(err) {
				return errorx.New(errorx.AlreadyExists, "User already joined the challenge")
			}

			return err
		}

		return nil
	})
	if err != nil {
		return nil, storageError(ctx, err, "Not found challenge", "join challenge")
	}

	common.PromCounters[common.ParticipationTotal].WithLabelValues("challenge", "join").Inc()
	if challenge.IsPublic {
		d.invalidatePublicList(ctx)
	}

	modelChallenge := model.ConvertChallenge(challenge, 0)
	return (*model.JoinChallengeResponse)(ptr(model.ConvertUserChallenge(userChallenge, &modelChallenge))), nil
}

func (d *challengeDomain) UpdateProgress(
	ctx context.Context, req *model.UpdateChallengeProgressRequest,
) (*model.UpdateChallengeProgressResponse, error) {
	if req.Progress < 0 {
		return nil, errorx.New(errorx.BadRequest, "Progress must not be negative")
	}

	var userChallenge *entity.UserChallenge
	err := xcontext.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		userChallenge, err = d.getOwnUserChallenge(ctx, req.ID)
		if err != nil {
			return err
		}

		completed := userChallenge.Completed
		if req.Completed != nil {
			completed = *req.Completed
		}

		if userChallenge.Progress == req.Progress && userChallenge.Completed == completed {
			return nil
		}

		if err := d.userChallengeRepo.UpdateProgress(ctx, userChallenge.ID, req.Progress, completed); err != nil {
			return err
		}

		userChallenge.Progress = req.Progress
		userChallenge.Completed = completed
		return nil
	})
	if err != nil {
		return nil, storageError(ctx, err, "Not found user challenge", "update challenge progress")
	}

	return (*model.UpdateChallengeProgressResponse)(ptr(model.ConvertUserChallenge(userChallenge, nil))), nil
}

func (d *challengeDomain) Leave(
	ctx context.Context, req *model.LeaveChallengeRequest,
) (*model.LeaveChallengeResponse, error) {
	err := xcontext.WithTransaction(ctx, func(ctx context.Context) error {
		userChallenge, err := d.getOwnUserChallenge(ctx, req.ID)
		if err != nil {
			return err
		}

		return d.userChallengeRepo.DeleteByID(ctx, userChallenge.ID)
	})
	if err != nil {
		return nil, storageError(ctx, err, "Not found user challenge", "leave challenge")
	}

	common.PromCounters[common.ParticipationTotal].WithLabelValues("challenge", "leave").Inc()
	d.invalidatePublicList(ctx)

	return &model.LeaveChallengeResponse{}, nil
}

func (d *challengeDomain) getOwnUserChallenge(ctx context.Context, id string) (*entity.UserChallenge, error) {
	userChallenge, err := d.userChallengeRepo.GetByIDForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}

	if userChallenge.UserID != xcontext.RequestUserID(ctx) {
		return nil, errorx.New(errorx.PermissionDenied, "User does not own the participation")
	}

	return userChallenge, nil
}

func (d *challengeDomain) publicListVersion(ctx context.Context) (int64, error) {
	s, err := d.redisClient.Get(ctx, common.RedisKeyPublicChallengesVersion)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}

		return 0, err
	}

	return strconv.ParseInt(s, 10, 64)
}

// invalidatePublicList moves readers to a new version of the list and drops
// the cached pages. Cache errors are not fatal, the entries expire by
// themselves.
func (d *challengeDomain) invalidatePublicList(ctx context.Context) {
	if _, err := d.redisClient.Incr(ctx, common.RedisKeyPublicChallengesVersion); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot bump version of public challenges: %v", err)
	}

	keys, err := d.redisClient.Keys(ctx, common.RedisPatternPublicChallenges)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot list cached public challenges: %v", err)
		return
	}

	if err := d.redisClient.Del(ctx, keys...); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot invalidate cached public challenges: %v", err)
	}
}
