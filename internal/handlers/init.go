package handlers

import (
	"github.com/playfulorigins333/sirens-forge-master-sub001/internal/catalog"
	"github.com/playfulorigins333/sirens-forge-master-sub001/internal/jobs"
	"github.com/playfulorigins333/sirens-forge-master-sub001/pkg/logging"
)

var (
	store   *catalog.Store
	logger  logging.Logger
	runner  *jobs.Runner
	metrics *jobs.Metrics
)

// Init initializes the handlers with the catalog store, logger, runner and
// metrics
func Init(catalogStore *catalog.Store, log logging.Logger, autopostRunner *jobs.Runner, heraldMetrics *jobs.Metrics) {
	store = catalogStore
	logger = log
	runner = autopostRunner
	metrics = heraldMetrics
}
