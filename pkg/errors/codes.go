package errors

import (
	"net/http"

	"google.golang.org/grpc/codes"
)

// 에러 코드. 응답 본문과 로그의 error_code 필드에 그대로 노출됩니다.
const (
	ErrInternal        = "INTERNAL"
	ErrNotFound        = "NOT_FOUND"
	ErrInvalidArgument = "INVALID_ARGUMENT"
	ErrUnauthenticated = "UNAUTHENTICATED"
	ErrUnauthorized    = "UNAUTHORIZED"
	ErrConflict        = "CONFLICT"
	ErrTimeout         = "TIMEOUT"
	ErrNotImplemented  = "NOT_IMPLEMENTED"
	// 결제 프로바이더가 구성되지 않아 처리할 수 없는 경우
	ErrUnavailable = "UNAVAILABLE"
	ErrRateLimited = "RATE_LIMITED"
)

type statusPair struct {
	http int
	grpc codes.Code
}

var statusByCode = map[string]statusPair{
	ErrInternal:        {http.StatusInternalServerError, codes.Internal},
	ErrNotFound:        {http.StatusNotFound, codes.NotFound},
	ErrInvalidArgument: {http.StatusBadRequest, codes.InvalidArgument},
	ErrUnauthenticated: {http.StatusUnauthorized, codes.Unauthenticated},
	ErrUnauthorized:    {http.StatusForbidden, codes.PermissionDenied},
	ErrConflict:        {http.StatusConflict, codes.AlreadyExists},
	ErrTimeout:         {http.StatusGatewayTimeout, codes.DeadlineExceeded},
	ErrNotImplemented:  {http.StatusNotImplemented, codes.Unimplemented},
	ErrUnavailable:     {http.StatusServiceUnavailable, codes.Unavailable},
	ErrRateLimited:     {http.StatusTooManyRequests, codes.ResourceExhausted},
}

// GetCodeMapping 은 에러 코드의 HTTP 상태와 gRPC 코드를 반환합니다.
// 알 수 없는 코드는 INTERNAL 로 취급합니다.
func GetCodeMapping(code string) (int, codes.Code) {
	pair, ok := statusByCode[code]
	if !ok {
		pair = statusByCode[ErrInternal]
	}
	return pair.http, pair.grpc
}

func httpStatusToCode(status int) string {
	for code, pair := range statusByCode {
		if pair.http == status {
			return code
		}
	}
	return ErrInternal
}
