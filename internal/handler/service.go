package handler

import (
	"context"

	"google.golang.org/grpc"

	"appointment-booking-api/internal/middleware"
	"appointment-booking-api/internal/model"
)

const ServiceName = "booking.v1.BookingService"

const (
	MethodSignup               = "Signup"
	MethodLogin                = "Login"
	MethodBookAppointment      = "BookAppointment"
	MethodListAvailable        = "ListAvailable"
	MethodListUserAppointments = "ListUserAppointments"
	MethodCancelAppointment    = "CancelAppointment"
	MethodGetAppointment       = "GetAppointment"
	MethodListAllAppointments  = "ListAllAppointments"
	MethodCreateAppointment    = "CreateAppointment"
	MethodUpdateAppointment    = "UpdateAppointment"
	MethodDeleteAppointment    = "DeleteAppointment"
)

// FullMethod returns the path gRPC routes a method by.
func FullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

type BookingServer interface {
	Signup(context.Context, *SignupRequest) (*SignupResponse, error)
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	BookAppointment(context.Context, *BookRequest) (*StatusResponse, error)
	ListAvailable(context.Context, *Empty) (*AppointmentList, error)
	ListUserAppointments(context.Context, *UserAppointmentsRequest) (*AppointmentList, error)
	CancelAppointment(context.Context, *AppointmentID) (*StatusResponse, error)
	GetAppointment(context.Context, *AppointmentID) (*AppointmentResponse, error)
	ListAllAppointments(context.Context, *Empty) (*SummaryList, error)
	CreateAppointment(context.Context, *SlotRequest) (*AppointmentResponse, error)
	UpdateAppointment(context.Context, *SlotRequest) (*AppointmentResponse, error)
	DeleteAppointment(context.Context, *AppointmentID) (*StatusResponse, error)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BookingServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodSignup, BookingServer.Signup),
		unary(MethodLogin, BookingServer.Login),
		unary(MethodBookAppointment, BookingServer.BookAppointment),
		unary(MethodListAvailable, BookingServer.ListAvailable),
		unary(MethodListUserAppointments, BookingServer.ListUserAppointments),
		unary(MethodCancelAppointment, BookingServer.CancelAppointment),
		unary(MethodGetAppointment, BookingServer.GetAppointment),
		unary(MethodListAllAppointments, BookingServer.ListAllAppointments),
		unary(MethodCreateAppointment, BookingServer.CreateAppointment),
		unary(MethodUpdateAppointment, BookingServer.UpdateAppointment),
		unary(MethodDeleteAppointment, BookingServer.DeleteAppointment),
	},
	Streams: []grpc.StreamDesc{},
}

func unary[Req, Resp any](name string, call func(BookingServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(BookingServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(srv.(BookingServer), ctx, req.(*Req))
			})
		},
	}
}

func Register(s grpc.ServiceRegistrar, srv BookingServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// Policy lists the role each protected method requires.
func Policy() middleware.Policy {
	return middleware.Policy{
		FullMethod(MethodCancelAppointment):   model.RoleUser,
		FullMethod(MethodListAllAppointments): model.RoleAdmin,
		FullMethod(MethodCreateAppointment):   model.RoleAdmin,
		FullMethod(MethodUpdateAppointment):   model.RoleAdmin,
		FullMethod(MethodDeleteAppointment):   model.RoleAdmin,
	}
}

// RateLimited lists the credential methods throttled per client.
func RateLimited() map[string]bool {
	return map[string]bool{
		FullMethod(MethodSignup): true,
		FullMethod(MethodLogin):  true,
	}
}
