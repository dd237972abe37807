package grpc

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"github.com/gnuhannes/my-private-finances/internal/logging"
)

// LoggingInterceptor returns a unary server interceptor that logs the start
// and outcome of each call with its duration, and converts domain errors
// into gRPC status errors. Internal errors are logged with their cause; the
// client only sees a generic message.
func LoggingInterceptor(logger logrus.FieldLogger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		name := methodName(info.FullMethod)
		logData := logging.NewLogData(logger)
		logData.AddData("method", info.FullMethod)

		logger.Debugf("Handler.%v.Start", name)

		endTimer := logData.AddTiming("duration_ms")
		resp, err := handler(ctx, req)
		endTimer()

		if err != nil {
			mapped := mapError(err)
			logData.AddData("code", status.Code(mapped).String())
			logData.Log().WithError(err).Errorf("Handler.%v.Error", name)
			return nil, mapped
		}

		logData.Log().Infof("Handler.%v.Complete", name)
		return resp, nil
	}
}

func methodName(fullMethod string) string {
	if i := strings.LastIndex(fullMethod, "/"); i >= 0 {
		return fullMethod[i+1:]
	}
	return fullMethod
}
