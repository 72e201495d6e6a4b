package handler

import (
	"context"

	"google.golang.org/grpc"
)

// Client calls BookingService over any connection.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	if err := cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Signup(ctx context.Context, in *SignupRequest, opts ...grpc.CallOption) (*SignupResponse, error) {
	return invoke[SignupResponse](ctx, c.cc, MethodSignup, in, opts)
}

func (c *Client) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	return invoke[LoginResponse](ctx, c.cc, MethodLogin, in, opts)
}

func (c *Client) BookAppointment(ctx context.Context, in *BookRequest, opts ...grpc.CallOption) (*StatusResponse, error) {
	return invoke[StatusResponse](ctx, c.cc, MethodBookAppointment, in, opts)
}

func (c *Client) ListAvailable(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*AppointmentList, error) {
	return invoke[AppointmentList](ctx, c.cc, MethodListAvailable, in, opts)
}

func (c *Client) ListUserAppointments(ctx context.Context, in *UserAppointmentsRequest, opts ...grpc.CallOption) (*AppointmentList, error) {
	return invoke[AppointmentList](ctx, c.cc, MethodListUserAppointments, in, opts)
}

func (c *Client) CancelAppointment(ctx context.Context, in *AppointmentID, opts ...grpc.CallOption) (*StatusResponse, error) {
	return invoke[StatusResponse](ctx, c.cc, MethodCancelAppointment, in, opts)
}

func (c *Client) GetAppointment(ctx context.Context, in *AppointmentID, opts ...grpc.CallOption) (*AppointmentResponse, error) {
	return invoke[AppointmentResponse](ctx, c.cc, MethodGetAppointment, in, opts)
}

func (c *Client) ListAllAppointments(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*SummaryList, error) {
	return invoke[SummaryList](ctx, c.cc, MethodListAllAppointments, in, opts)
}

func (c *Client) CreateAppointment(ctx context.Context, in *SlotRequest, opts ...grpc.CallOption) (*AppointmentResponse, error) {
	return invoke[AppointmentResponse](ctx, c.cc, MethodCreateAppointment, in, opts)
}

func (c *Client) UpdateAppointment(ctx context.Context, in *SlotRequest, opts ...grpc.CallOption) (*AppointmentResponse, error) {
	return invoke[AppointmentResponse](ctx, c.cc, MethodUpdateAppointment, in, opts)
}

func (c *Client) DeleteAppointment(ctx context.Context, in *AppointmentID, opts ...grpc.CallOption) (*StatusResponse, error) {
	return invoke[StatusResponse](ctx, c.cc, MethodDeleteAppointment, in, opts)
}
