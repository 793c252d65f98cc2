package main

import (
	"context"
	"io"
	"os"
	"time"

	"sherk_portal/internal/config"
	"sherk_portal/internal/logger"
	"sherk_portal/internal/service"
)

func export(ctx context.Context, cfg *config.Config, out string) error {
	b, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	stakes, profiles, err := b.serviceStores()
	if err != nil {
		return err
	}

	var audit *service.AuditService
	if b.pool != nil {
		audit = service.NewAuditService(b.pool)
	} else {
		audit = service.NewAuditService(nil)
	}

	if out == "" {
		out = service.ExportFileName(time.Now())
	}
	var w io.Writer = os.Stdout
	if out != "-" {
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	n, err := service.NewAdminService(audit).Export(ctx, "cli", stakes, profiles, w)
	if err != nil {
		return err
	}
	logger.Info("export written", "file", out, "rows", n)
	return nil
}
