package router

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/habitquest/backend/pkg/errorx"
	"github.com/habitquest/backend/pkg/xcontext"
	"github.com/mitchellh/mapstructure"
)

func wrapHandler[Request, Response any](
	router *Router,
	method string,
	handler HandlerFunc[Request, Response],
) gin.HandlerFunc {
	befores := router.befores
	closers := router.closers

	return func(gctx *gin.Context) {
		ctx := router.newContext(gctx.Request)

		var resp *Response
		ctx, err := runBefores(ctx, befores)
		if err == nil {
			req := new(Request)
			if err = bind(gctx, method, req); err == nil {
				resp, err = handler(ctx, req)
			}
		}

		if err != nil {
			ctx = xcontext.WithError(ctx, err)
			writeError(gctx, err)
		} else {
			writeResponse(gctx, resp)
		}

		for _, closer := range closers {
			closer(ctx)
		}
	}
}

func runBefores(ctx context.Context, befores []MiddlewareFunc) (context.Context, error) {
	for _, before := range befores {
		newCtx, err := before(ctx)
		if err != nil {
			return ctx, err
		}

		if newCtx != nil {
			ctx = newCtx
		}
	}

	return ctx, nil
}

// bind fills req from the query string of a GET request or from the JSON body
// of a POST request. Both use the json tags of the request struct.
func bind(gctx *gin.Context, method string, req any) error {
	switch method {
	case http.MethodGet:
		query := map[string]any{}
		for key, values := range gctx.Request.URL.Query() {
			if len(values) > 0 {
				query[key] = values[0]
			}
		}

		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			TagName:          "json",
			WeaklyTypedInput: true,
			Result:           req,
		})
		if err != nil {
			return err
		}

		if err := decoder.Decode(query); err != nil {
			return errorx.New(errorx.BadRequest, "Invalid query: %v", err)
		}

	case http.MethodPost:
		if err := gctx.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
			return errorx.New(errorx.BadRequest, "Invalid body: %v", err)
		}

	default:
		return errorx.New(errorx.NotImplemented, "Unsupported method %s", method)
	}

	return nil
}
