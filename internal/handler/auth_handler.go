package handler

import (
	"context"

	"appointment-booking-api/internal/service"
)

func (h *Handler) Signup(ctx context.Context, req *SignupRequest) (*SignupResponse, error) {
	u, err := h.accounts.Signup(ctx, service.SignupRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return &SignupResponse{UserID: u.ID, Email: u.Email, Role: u.Role, Message: "user registered"}, nil
}

func (h *Handler) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	res, err := h.accounts.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, toStatus(err)
	}
	return &LoginResponse{Token: res.Token, Email: res.Email, Role: res.Role}, nil
}
