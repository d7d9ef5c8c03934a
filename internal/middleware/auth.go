package middleware

import (
	"context"
	"strings"

	"github.com/habitquest/backend/internal/model"
	"github.com/habitquest/backend/pkg/errorx"
	"github.com/habitquest/backend/pkg/jwt"
	"github.com/habitquest/backend/pkg/router"
	"github.com/habitquest/backend/pkg/xcontext"
)

type AuthVerifier struct {
	verifier *jwt.Verifier[model.AccessToken]
}

func NewAuthVerifier(tokenSecret string) *AuthVerifier {
	return &AuthVerifier{verifier: jwt.NewVerifier[model.AccessToken](tokenSecret)}
}

// Middleware puts the user id carried by the access token into the context.
// The token comes from the Authorization header or, if absent, from the
// access token cookie.
func (a *AuthVerifier) Middleware() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		token := getAccessToken(ctx)
		if token == "" {
			return nil, errorx.New(errorx.Unauthenticated, "You need to authenticate before")
		}

		info, err := a.verifier.Verify(token)
		if err != nil || info.ID == "" {
			return nil, errorx.New(errorx.Unauthenticated, "Invalid access token")
		}

		return xcontext.WithRequestUserID(ctx, info.ID), nil
	}
}

func getAccessToken(ctx context.Context) string {
	req := xcontext.HTTPRequest(ctx)
	if req == nil {
		return ""
	}

	authorization := req.Header.Get("Authorization")
	auth, token, found := strings.Cut(authorization, " ")
	if found {
		if auth == "Bearer" {
			return token
		}
		return ""
	}

	cookie, err := req.Cookie(xcontext.Configs(ctx).Auth.AccessToken.Name)
	if err != nil {
		return ""
	}

	return cookie.Value
}
