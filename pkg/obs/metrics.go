package obs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CyclesStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dobi_cycles_started_total",
		Help: "Washing cycles started after payment verification.",
	})
	CyclesCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dobi_cycles_completed_total",
		Help: "Cycles reported complete by a controller.",
	})
	NotifyFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dobi_notify_failures_total",
		Help: "Outbound notifications that did not get through.",
	})
	MachinesDemoted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dobi_machines_demoted_total",
		Help: "Machines marked broken by the heartbeat monitor.",
	})
)
