package reading

import (
	"github.com/carlosvidal/aquabill/internal/reading/repository"
	"github.com/carlosvidal/aquabill/internal/reading/service"
	"go.uber.org/fx"
)

var Module = fx.Module("reading.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
