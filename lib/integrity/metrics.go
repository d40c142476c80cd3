package integrity

import (
	"sync"

	"github.com/Cloud-Foundations/tricorder/go/tricorder"
	"github.com/Cloud-Foundations/tricorder/go/tricorder/units"
)

var (
	metricsOnce        sync.Once
	verifyDistribution *tricorder.CumulativeDistribution
)

func setupMetrics() {
	metricsOnce.Do(func() {
		verifyDistribution = tricorder.NewGeometricBucketer(0.1, 1e6).
			NewCumulativeDistribution()
		err := tricorder.RegisterMetric("/integrity/verify-time",
			verifyDistribution, units.Millisecond, "time to verify the tree")
		if err != nil {
			panic(err)
		}
	})
}
