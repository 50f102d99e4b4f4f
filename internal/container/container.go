package container

import (
	"go.uber.org/zap"

	app "vision-overlay/internal/application"
	"vision-overlay/internal/domain/port"
)

type Container struct {
	UserService       *app.UserService
	InspectionService *app.InspectionService
	Detector          port.DetectionClient
	Logger            *zap.Logger
}

func New(userRepo port.UserRepository, deps app.InspectionDeps, opts app.RenderOptions, logger *zap.Logger) *Container {
	if logger == nil {
		logger = zap.NewNop()
	}
	userService := app.NewUserService(userRepo)
	inspectionService := app.NewInspectionService(userService, deps, opts, logger)

	return &Container{
		UserService:       userService,
		InspectionService: inspectionService,
		Detector:          deps.Detector,
		Logger:            logger,
	}
}
