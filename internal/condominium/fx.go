package condominium

import (
	"github.com/carlosvidal/aquabill/internal/condominium/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("condominium",
	fx.Provide(repository.Provide),
)
