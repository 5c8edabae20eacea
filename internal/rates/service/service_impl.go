package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/carlosvidal/aquabill/internal/config"
	ratesdomain "github.com/carlosvidal/aquabill/internal/rates/domain"
	"github.com/carlosvidal/aquabill/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Billing *config.BillingConfigHolder
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	billing     *config.BillingConfigHolder
	settingrepo repository.Repository[ratesdomain.Setting]
}

func NewService(p ServiceParam) ratesdomain.Resolver {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("rates.service"),

		billing:     p.Billing,
		settingrepo: repository.ProvideStore[ratesdomain.Setting](p.DB),
	}
}

func (s *Service) Resolve(ctx context.Context) (ratesdomain.WaterRates, error) {
	settings, err := s.settingrepo.Find(ctx, &ratesdomain.Setting{})
	if err != nil {
		return ratesdomain.WaterRates{}, err
	}

	values := make(map[string]string, len(settings))
	for _, setting := range settings {
		values[setting.Key] = setting.Value
	}

	rates := ratesdomain.WaterRates{
		BasicRate: s.billing.Get().DefaultBasicRate,
	}

	if v, ok := parseRate(values[ratesdomain.KeyBasicRate]); ok && v > 0 {
		rates.BasicRate = v
	}
	if v, ok := parseRate(values[ratesdomain.KeyFixedCharge]); ok && v >= 0 {
		rates.FixedCharge = &v
	}
	if v, ok := parseRate(values[ratesdomain.KeyMinimumConsumption]); ok && v >= 0 {
		rates.MinimumConsumption = &v
	}

	return rates, nil
}

func parseRate(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
