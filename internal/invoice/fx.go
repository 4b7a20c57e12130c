package invoice

import (
	"github.com/smallbiznis/invoicing/internal/invoice/action"
	"github.com/smallbiznis/invoicing/internal/invoice/repository"
	"github.com/smallbiznis/invoicing/internal/invoice/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
	fx.Provide(action.New),
)
