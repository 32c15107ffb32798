package service

import (
	"github.com/mino-dev/mino-web/internal/billing"
	"github.com/mino-dev/mino-web/internal/repository"
)

type Services struct {
	User    *UserService
	Project *ProjectService
	Canvas  *CanvasService
	Frame   *FrameService
}

func NewServices(repos *repository.Repositories, provisioner billing.CustomerProvisioner) *Services {
	return &Services{
		User:    NewUserService(repos.User, provisioner),
		Project: NewProjectService(repos.Project, repos.Canvas, repos.Branch),
		Canvas:  NewCanvasService(repos.Canvas, repos.Project, repos.UserCanvas),
		Frame:   NewFrameService(repos.Frame, repos.Canvas, repos.Project, repos.Branch),
	}
}
