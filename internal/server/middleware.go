package server

import (
	"bytes"
	"io"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	// RequestIDHeader carries the per-request ID on responses.
	RequestIDHeader = "X-Request-ID"

	requestIDLogField = "request_id"

	// maxLoggedBody caps how much of a request body lands in the log;
	// memory uploads can be large.
	maxLoggedBody = 4 * 1024
)

// RequestID assigns each request a snowflake ID, stores it on the gin
// context, and echoes it in the response header. An ID supplied by the
// caller is kept.
func RequestID(node *snowflake.Node) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id := ctx.GetHeader(RequestIDHeader)
		if id == "" {
			id = node.Generate().String()
		}
		ctx.Set(RequestIDHeader, id)
		ctx.Header(RequestIDHeader, id)
		ctx.Next()
	}
}

// Logger logs every request with method, latency, client IP, path, and a
// truncated copy of the body, tagged with the request ID.
func Logger(ctx *gin.Context) {
	start := time.Now().UTC()
	path := ctx.Request.URL.Path

	var bodyBytes []byte
	if ctx.Request.Body != nil {
		bodyBytes, _ = io.ReadAll(ctx.Request.Body)
		ctx.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
	}
	request := string(bodyBytes)
	if len(request) > maxLoggedBody {
		request = request[:maxLoggedBody] + "...(truncated)"
	}

	ip := ctx.ClientIP()

	ctx.Next()

	latency := time.Now().UTC().Sub(start)
	entry := logrus.NewEntry(logrus.StandardLogger())
	if requestID, ok := ctx.Get(RequestIDHeader); ok {
		entry = entry.WithField(requestIDLogField, requestID)
	}
	entry.Infof("%s| %s| %s| %s| %d |request: %s",
		ctx.Request.Method, latency, ip, path, ctx.Writer.Status(), request)
}
