package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/habitquest/backend/config"
	"github.com/habitquest/backend/internal/model"
	"github.com/habitquest/backend/pkg/errorx"
	"github.com/habitquest/backend/pkg/jwt"
	"github.com/habitquest/backend/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

func newRequestContext(req *http.Request) context.Context {
	ctx := xcontext.WithConfigs(context.Background(), config.Default())
	return xcontext.WithHTTPRequest(ctx, req)
}

func TestAuthVerifier_Middleware(t *testing.T) {
	engine := jwt.NewEngine[model.AccessToken]("secret", time.Minute)
	token, err := engine.Generate("user1", model.AccessToken{ID: "user1", Name: "user1"})
	require.NoError(t, err)

	otherEngine := jwt.NewEngine[model.AccessToken]("other", time.Minute)
	forged, err := otherEngine.Generate("user1", model.AccessToken{ID: "user1"})
	require.NoError(t, err)

	middleware := NewAuthVerifier("secret").Middleware()

	testCases := []struct {
		name    string
		setup   func(req *http.Request)
		want    string
		wantErr bool
	}{
		{
			name:  "bearer header",
			setup: func(req *http.Request) { req.Header.Set("Authorization", "Bearer "+token) },
			want:  "user1",
		},
		{
			name: "cookie",
			setup: func(req *http.Request) {
				req.AddCookie(&http.Cookie{Name: config.Default().Auth.AccessToken.Name, Value: token})
			},
			want: "user1",
		},
		{
			name:    "no token",
			setup:   func(req *http.Request) {},
			wantErr: true,
		},
		{
			name:    "wrong scheme",
			setup:   func(req *http.Request) { req.Header.Set("Authorization", "Basic "+token) },
			wantErr: true,
		},
		{
			name:    "wrong secret",
			setup:   func(req *http.Request) { req.Header.Set("Authorization", "Bearer "+forged) },
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/getBalance", nil)
			tc.setup(req)

			ctx, err := middleware(newRequestContext(req))
			if tc.wantErr {
				require.True(t, errorx.Is(err, errorx.Unauthenticated))
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.want, xcontext.RequestUserID(ctx))
		})
	}
}
