package estimatecli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/okian/playervalue/internal/adapters/regression"
	service "github.com/okian/playervalue/internal/app"
	"github.com/okian/playervalue/internal/domain/encoding"
	"github.com/okian/playervalue/internal/domain/player"
	"github.com/okian/playervalue/internal/domain/types"
	"github.com/okian/playervalue/internal/domain/valuation"
	"github.com/okian/playervalue/pkg/logger"
)

// Run estimates the configured player and writes the result to out.
func Run(ctx context.Context, cfg *Config, out io.Writer) error {
	in, err := cfg.Input()
	if err != nil {
		return err
	}

	logger.Get().Debug(ctx, "estimating",
		logger.String("position", string(in.Position)),
		logger.String("team", in.Team),
		logger.String("url", cfg.BaseURL),
	)

	var est types.Estimate
	if cfg.BaseURL != "" {
		est, err = newHTTPClient(cfg.BaseURL, cfg.Timeout).Estimate(ctx, in)
	} else {
		est, err = estimateLocally(ctx, cfg, in)
	}
	if err != nil {
		return err
	}

	if cfg.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(est)
	}
	_, err = fmt.Fprintf(out, "Predicted Market Value: %s\n", est.Display)
	return err
}

func estimateLocally(ctx context.Context, cfg *Config, in *player.RawPlayerInput) (types.Estimate, error) {
	table, err := encoding.Load(cfg.TeamEncodingPath)
	if err != nil {
		return types.Estimate{}, err
	}
	model, err := regression.Load(cfg.ModelPath)
	if err != nil {
		return types.Estimate{}, err
	}
	svc := service.New(
		service.WithTable(table),
		service.WithPredictor(valuation.NewPredictor(model)),
		service.WithLogger(logger.Named("estimate")),
	)
	if err := svc.Start(ctx); err != nil {
		return types.Estimate{}, err
	}
	defer svc.Stop()
	return svc.Estimate(ctx, in)
}
