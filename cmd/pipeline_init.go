package main

import (
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/parcelworks/siteassess/internal/gateway"
	"github.com/parcelworks/siteassess/internal/handler"
	"github.com/parcelworks/siteassess/internal/model"
	"github.com/parcelworks/siteassess/internal/pipeline"
	"github.com/parcelworks/siteassess/pkg/baidu"
)

// initPipeline wires the map client, gateway, and handler registry into a
// ready pipeline from the loaded config.
func initPipeline() (*pipeline.Pipeline, error) {
	if cfg.Baidu.Key == "" {
		return nil, eris.New("baidu.key is required (set SITEASSESS_BAIDU_KEY or config.yaml)")
	}

	client := baidu.NewClient(cfg.Baidu.Key,
		baidu.WithBaseURL(cfg.Baidu.BaseURL),
		baidu.WithRateLimit(cfg.Baidu.QPS, cfg.Baidu.Burst),
		baidu.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.Baidu.TimeoutSecs) * time.Second}),
	)

	table := model.DefaultFieldTable()
	gw := gateway.New(client, table)
	registry := handler.NewRegistry(table)

	return pipeline.New(gw, registry, cfg.Fields, cfg.Comparisons,
		pipeline.WithWorkers(cfg.Pipeline.Workers),
	)
}
