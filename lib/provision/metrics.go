package provision

import (
	"sync"

	"github.com/Cloud-Foundations/tricorder/go/tricorder"
	"github.com/Cloud-Foundations/tricorder/go/tricorder/units"
)

var (
	metricsOnce        sync.Once
	runDistribution    *tricorder.CumulativeDistribution
	stageDistributions = make(map[State]*tricorder.CumulativeDistribution)
)

func makeMetric(dir *tricorder.DirectorySpec, bucketer *tricorder.Bucketer,
	name string, comment string) *tricorder.CumulativeDistribution {
	distribution := bucketer.NewCumulativeDistribution()
	dir.RegisterMetric(name, distribution, units.Millisecond, comment)
	return distribution
}

func setupMetrics() {
	metricsOnce.Do(func() {
		dir, err := tricorder.RegisterDirectory("/provision")
		if err != nil {
			panic(err)
		}
		latencyBucketer := tricorder.NewGeometricBucketer(0.1, 1e6)
		runDistribution = makeMetric(dir, latencyBucketer, "run-time",
			"time to provision a device")
		for _, stage := range stages {
			stageDistributions[stage.state] = makeMetric(dir, latencyBucketer,
				"stage-time/"+stage.state.String(),
				"time to enter state "+stage.state.String())
		}
	})
}
