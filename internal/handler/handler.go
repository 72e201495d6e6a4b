package handler

import (
	"log"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"appointment-booking-api/internal/service"
)

type Handler struct {
	sched    *service.Scheduler
	accounts *service.Accounts
}

var _ BookingServer = (*Handler)(nil)

func New(sched *service.Scheduler, accounts *service.Accounts) *Handler {
	return &Handler{sched: sched, accounts: accounts}
}

// toStatus maps service errors onto gRPC codes. Internal errors are logged
// and replaced with a generic message.
func toStatus(err error) error {
	var code codes.Code
	switch service.KindOf(err) {
	case service.KindNotFound:
		code = codes.NotFound
	case service.KindInvalidState:
		code = codes.FailedPrecondition
	case service.KindValidation:
		code = codes.InvalidArgument
	case service.KindConflict:
		code = codes.AlreadyExists
	case service.KindUnauthorized:
		code = codes.Unauthenticated
	case service.KindForbidden:
		code = codes.PermissionDenied
	default:
		log.Printf("grpc: %v", err)
		return status.Error(codes.Internal, "internal error")
	}
	return status.Error(code, err.Error())
}
