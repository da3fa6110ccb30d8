package api

import (
	"io"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
)

// requestBodyMaxSize bounds request payloads; collections are rewritten
// wholesale so oversized bodies are never legitimate.
const requestBodyMaxSize = 1 << 20

// decodeBody decodes a JSON request body into v, rejecting unknown fields.
func decodeBody(c echo.Context, v any) error {
	lr := io.LimitReader(c.Request().Body, requestBodyMaxSize)
	dec := sonic.ConfigStd.NewDecoder(lr)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
