package rates

import (
	"github.com/carlosvidal/aquabill/internal/rates/service"
	"go.uber.org/fx"
)

var Module = fx.Module("rates.service",
	fx.Provide(service.NewService),
)
