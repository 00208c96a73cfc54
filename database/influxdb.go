package database

import (
	"context"
	"errors"
	"time"

	"sleep-tips/config"

	influxdb2 "github.com/influxdata/influxdb-client-go"
	"github.com/influxdata/influxdb-client-go/api"
)

// InfluxAPI bundles the APIs of one bucket
type InfluxAPI struct {
	WriteAPI api.WriteAPI
	QueryAPI api.QueryAPI
	Bucket   string
}

// client remains private
var influxClient influxdb2.Client

// OpenInfluxConnection connects to the analytics store
func OpenInfluxConnection(cfg config.Config) error {
	influxClient = influxdb2.NewClient(cfg.AnalyticsURL, cfg.AnalyticsToken)
	influxClient.Options().SetPrecision(time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ready, err := influxClient.Ready(ctx)
	if err != nil {
		return err
	}
	if !ready {
		return errors.New("analytics store not ready")
	}

	return nil
}

// GetInfluxAPI returns the write and query APIs of the configured bucket
func GetInfluxAPI(cfg config.Config) InfluxAPI {
	return InfluxAPI{
		WriteAPI: influxClient.WriteAPI(cfg.AnalyticsOrg, cfg.AnalyticsBucket),
		QueryAPI: influxClient.QueryAPI(cfg.AnalyticsOrg),
		Bucket:   cfg.AnalyticsBucket,
	}
}

// CloseInfluxConnection flushes pending points and closes the connection
func CloseInfluxConnection() {
	if influxClient == nil {
		return
	}
	influxClient.Close()
}
