package token

import (
	"certifica/internal/platform/middleware"
)

// ServiceAdapter bridges the token service to the middleware validator interface.
type ServiceAdapter struct {
	service *Service
}

func NewServiceAdapter(service *Service) *ServiceAdapter {
	return &ServiceAdapter{service: service}
}

func (a *ServiceAdapter) Validate(tokenString string) (*middleware.OperatorInfo, error) {
	claims, err := a.service.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return &middleware.OperatorInfo{Operator: claims.Operator}, nil
}
