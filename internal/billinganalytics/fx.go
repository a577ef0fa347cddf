package billinganalytics

import (
	"github.com/smallbiznis/billinginsights/internal/billinganalytics/repository"
	"github.com/smallbiznis/billinginsights/internal/billinganalytics/service"
	"github.com/smallbiznis/billinginsights/internal/currency"
	"go.uber.org/fx"
)

var Module = fx.Module("billinganalytics.service",
	fx.Provide(
		repository.NewRepository,
		service.NewService,
		currency.NewFormatter,
	),
)
